package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Mengran777/GaiaPath/internal/types"
)

// placeholderImageURL is the fallback used whenever image search comes back
// empty or fails.
const placeholderImageURL = "https://placehold.co/600x400?text=No+Image"

// imageSearchConcurrency caps parallel image lookups per generation.
const imageSearchConcurrency = 5

// ImageFinder resolves a representative image URL for a search query.
type ImageFinder interface {
	FindImage(ctx context.Context, query string) (string, error)
}

// GoogleImageClient looks activities up on the Google Custom Search JSON API.
type GoogleImageClient struct {
	logger   *slog.Logger
	httpc    *http.Client
	apiKey   string
	engineID string
}

// NewGoogleImageClient wires an image client. Empty credentials are allowed;
// every lookup then returns the placeholder.
func NewGoogleImageClient(apiKey, engineID string, logger *slog.Logger) *GoogleImageClient {
	return &GoogleImageClient{
		logger:   logger,
		httpc:    &http.Client{Timeout: 10 * time.Second},
		apiKey:   apiKey,
		engineID: engineID,
	}
}

// FindImage returns the first image result for the query, or the placeholder
// when the search is unavailable or empty.
func (c *GoogleImageClient) FindImage(ctx context.Context, query string) (string, error) {
	if c.apiKey == "" || c.engineID == "" {
		return placeholderImageURL, nil
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("searchType", "image")
	params.Set("num", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://www.googleapis.com/customsearch/v1?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build image search request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("image search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image search returned status %d", resp.StatusCode)
	}

	var body struct {
		Items []struct {
			Link string `json:"link"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode image search response: %w", err)
	}
	if len(body.Items) == 0 || body.Items[0].Link == "" {
		return placeholderImageURL, nil
	}
	return body.Items[0].Link, nil
}

// enrichImages fills ImageURL on every activity, bounded-parallel across the
// whole route set. Lookup failures downgrade to the placeholder and never
// fail the generation.
func (s *ServiceImpl) enrichImages(ctx context.Context, destination string, routes []types.RouteOption) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(imageSearchConcurrency)

	for ri := range routes {
		for di := range routes[ri].Itinerary {
			for ai := range routes[ri].Itinerary[di].Activities {
				activity := &routes[ri].Itinerary[di].Activities[ai]
				if activity.ImageURL != "" {
					continue
				}
				g.Go(func() error {
					query := strings.TrimSpace(activity.Title + " " + destination)
					link, err := s.images.FindImage(ctx, query)
					if err != nil {
						s.logger.WarnContext(ctx, "image lookup failed, using placeholder",
							slog.String("query", query), slog.Any("error", err))
						link = placeholderImageURL
					}
					activity.ImageURL = link
					return nil
				})
			}
		}
	}
	_ = g.Wait()
}
