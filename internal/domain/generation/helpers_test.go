package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mengran777/GaiaPath/internal/types"
)

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain object passes through",
			input:    `{"title": "Rome"}`,
			expected: `{"title": "Rome"}`,
		},
		{
			name:     "json fence is stripped",
			input:    "```json\n{\"title\": \"Rome\"}\n```",
			expected: `{"title": "Rome"}`,
		},
		{
			name:     "bare fence is stripped",
			input:    "```\n{\"title\": \"Rome\"}\n```",
			expected: `{"title": "Rome"}`,
		},
		{
			name:     "prose around the object is dropped",
			input:    `Here is your route: {"title": "Rome", "days": 3} Enjoy!`,
			expected: `{"title": "Rome", "days": 3}`,
		},
		{
			name:     "nested braces balance",
			input:    `{"a": {"b": {"c": 1}}} trailing`,
			expected: `{"a": {"b": {"c": 1}}}`,
		},
		{
			name:     "unbalanced braces fall back to the last brace",
			input:    `{"a": {"b": 1}`,
			expected: `{"a": {"b": 1}`,
		},
		{
			name:     "brace inside a string value does not close the object",
			input:    `{"title": "Rome", "description": "finish at Twenty One :} bar", "days": 3}`,
			expected: `{"title": "Rome", "description": "finish at Twenty One :} bar", "days": 3}`,
		},
		{
			name:     "escaped quote inside a string keeps string context",
			input:    `{"description": "the \"old town\" {heart} of Rome"} trailing`,
			expected: `{"description": "the \"old town\" {heart} of Rome"}`,
		},
		{
			name:     "no object returns input unchanged",
			input:    "sorry, I cannot help with that",
			expected: "sorry, I cannot help with that",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONResponse(tt.input))
		})
	}
}

func TestParseRouteResponse(t *testing.T) {
	raw := "```json\n" + `{
		"title": "Classic Rome",
		"description": "The signature sights.",
		"highlights": ["Colosseum", {"label": "Vatican Museums", "icon": "🏛️"}],
		"days": 3,
		"estimatedBudget": "$1,200 - $1,500",
		"itinerary": [
			{
				"day": 1,
				"title": "Ancient City",
				"date": "2026-09-10",
				"activities": [
					{"title": "Colosseum", "time": "09:00 - 11:00", "rating": 4.8, "price": "$18", "latitude": 41.8902, "longitude": 12.4922},
					{"title": "Lunch", "latitude": "not available", "longitude": null}
				]
			}
		]
	}` + "\n```"

	route, err := parseRouteResponse(raw, routeThemes[0])
	require.NoError(t, err)

	assert.Equal(t, "Classic Rome", route.Title)
	assert.Equal(t, "Most Popular", route.Badge)
	assert.Equal(t, types.IntensityModerate, route.Intensity)
	assert.Equal(t, 3, route.Days)
	require.Len(t, route.Highlights, 2)
	assert.NotEmpty(t, route.Highlights[0].Icon, "bare string highlights get an icon assigned")

	require.Len(t, route.Itinerary, 1)
	acts := route.Itinerary[0].Activities
	require.Len(t, acts, 2)
	assert.Equal(t, 41.8902, acts[0].Latitude)
	assert.True(t, acts[0].HasCoordinate())
	assert.Zero(t, acts[1].Latitude, "non-numeric coordinates collapse to the sentinel")
	assert.False(t, acts[1].HasCoordinate())
}

func TestParseRouteResponseDaysFallback(t *testing.T) {
	raw := `{"title": "Rome", "itinerary": [{"day": 1}, {"day": 2}]}`
	route, err := parseRouteResponse(raw, routeThemes[1])
	require.NoError(t, err)
	assert.Equal(t, 2, route.Days)
}

func TestParseRouteResponseNotAnObject(t *testing.T) {
	_, err := parseRouteResponse("the model refused", routeThemes[0])
	var sErr *types.StructuralError
	require.ErrorAs(t, err, &sErr)
}

func TestPreferenceCacheKey(t *testing.T) {
	base := types.RouteGenerationRequest{
		Destination:     "Rome",
		TravelStartDate: "2026-09-10",
		TravelEndDate:   "2026-09-13",
		UserID:          "user-1",
	}

	other := base
	other.UserID = "user-2"
	assert.Equal(t, preferenceCacheKey(base), preferenceCacheKey(other), "the user id does not partition the cache")

	changed := base
	changed.Destination = "Lisbon"
	assert.NotEqual(t, preferenceCacheKey(base), preferenceCacheKey(changed))
}
