package generation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Mengran777/GaiaPath/internal/types"
)

// CleanJSONResponse strips markdown fences and any prose around the first
// complete JSON object in a model response. Brace counting finds the matching
// close, ignoring braces inside string values; when the braces never balance
// it falls back to the last brace in the text.
func CleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	firstBrace := strings.Index(response, "{")
	if firstBrace == -1 {
		return response
	}

	braceCount := 0
	lastValidBrace := -1
	inString := false
	escapeNext := false
	for i := firstBrace; i < len(response); i++ {
		char := response[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if char == '\\' {
			escapeNext = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch char {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				lastValidBrace = i
			}
		}
		if lastValidBrace != -1 {
			break
		}
	}

	if lastValidBrace == -1 {
		lastBrace := strings.LastIndex(response, "}")
		if lastBrace == -1 || lastBrace <= firstBrace {
			return response
		}
		lastValidBrace = lastBrace
	}

	return response[firstBrace : lastValidBrace+1]
}

// flexFloat decodes a JSON number, a numeric string, or anything else as 0.
// Models occasionally emit coordinates like "41.89" or "unknown"; a bad value
// collapses to the no-coordinate sentinel instead of failing the route.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// aiRoute mirrors the route JSON the model is asked to produce, with layered
// tolerance for the coordinate fields.
type aiRoute struct {
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Highlights      []types.RouteHighlight `json:"highlights"`
	Days            int                    `json:"days"`
	EstimatedBudget string                 `json:"estimatedBudget"`
	Itinerary       []aiDay                `json:"itinerary"`
}

type aiDay struct {
	Day        int          `json:"day"`
	Title      string       `json:"title"`
	Date       string       `json:"date"`
	Activities []aiActivity `json:"activities"`
}

type aiActivity struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Time        string    `json:"time"`
	Rating      flexFloat `json:"rating"`
	Price       string    `json:"price"`
	Latitude    flexFloat `json:"latitude"`
	Longitude   flexFloat `json:"longitude"`
}

// parseRouteResponse cleans and decodes one model response into a route
// option carrying the theme's presentation fields.
func parseRouteResponse(raw string, theme routeTheme) (*types.RouteOption, error) {
	clean := CleanJSONResponse(raw)

	var parsed aiRoute
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, &types.StructuralError{Message: "model response is not a route object", Err: err}
	}

	route := &types.RouteOption{
		Badge:           theme.Badge,
		BadgeColor:      theme.BadgeColor,
		Intensity:       theme.Intensity,
		Title:           parsed.Title,
		Description:     parsed.Description,
		Highlights:      types.NormalizeHighlights(parsed.Highlights),
		Days:            parsed.Days,
		EstimatedBudget: parsed.EstimatedBudget,
	}
	for _, day := range parsed.Itinerary {
		converted := types.DayItinerary{Day: day.Day, Title: day.Title, Date: day.Date}
		for _, act := range day.Activities {
			converted.Activities = append(converted.Activities, types.Activity{
				Title:       act.Title,
				Description: act.Description,
				Time:        act.Time,
				Rating:      float64(act.Rating),
				Price:       act.Price,
				Latitude:    float64(act.Latitude),
				Longitude:   float64(act.Longitude),
			})
		}
		route.Itinerary = append(route.Itinerary, converted)
	}
	if route.Days == 0 {
		route.Days = len(route.Itinerary)
	}
	return route, nil
}

// preferenceCacheKey derives a stable cache key from the generation request,
// excluding the user id so identical trips share a cache slot.
func preferenceCacheKey(req types.RouteGenerationRequest) string {
	req.UserID = ""
	raw, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return "routes:" + hex.EncodeToString(sum[:])
}
