package client

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Mengran777/GaiaPath/internal/types"
)

// GenerationClient calls the itinerary generation endpoint.
type GenerationClient struct {
	base
}

// NewGenerationClient wires a generation client.
func NewGenerationClient(cfg Config, tokens TokenSource, logger *slog.Logger) *GenerationClient {
	return &GenerationClient{base: newBase(cfg, tokens, logger)}
}

// GenerateRoutes submits the preference payload and decodes the returned
// route option array. A 2xx body that is not a JSON array is a contract
// violation and surfaces as a types.StructuralError, not a transport failure.
func (c *GenerationClient) GenerateRoutes(ctx context.Context, req types.RouteGenerationRequest) ([]types.RouteOption, error) {
	raw, err := c.do(ctx, "POST", "/api/generate-itinerary", req)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &types.StructuralError{Message: "generation response is not a route array"}
	}

	var routes []types.RouteOption
	if err := json.Unmarshal(trimmed, &routes); err != nil {
		return nil, &types.StructuralError{Message: "decode route array", Err: err}
	}
	return routes, nil
}
