package generation

import (
	"fmt"
	"strings"

	"github.com/Mengran777/GaiaPath/internal/types"
)

// routeTheme steers one of the three generated variants.
type routeTheme struct {
	Badge      string
	BadgeColor string
	Intensity  types.RouteIntensity
	Angle      string
}

var routeThemes = []routeTheme{
	{
		Badge:      "Most Popular",
		BadgeColor: "bg-orange-500",
		Intensity:  types.IntensityModerate,
		Angle:      "the destination's signature sights and experiences, the route most first-time visitors would pick",
	},
	{
		Badge:      "Local Life",
		BadgeColor: "bg-green-500",
		Intensity:  types.IntensityEasy,
		Angle:      "neighborhood food, markets, and places locals actually go, away from the main tourist circuit",
	},
	{
		Badge:      "Packed Schedule",
		BadgeColor: "bg-blue-500",
		Intensity:  types.IntensityHigh,
		Angle:      "an ambitious early-to-late plan covering as much ground as realistically possible",
	},
}

func getRoutePrompt(req types.RouteGenerationRequest, theme routeTheme) string {
	var prefs strings.Builder
	if req.Budget > 0 {
		fmt.Fprintf(&prefs, "- Total budget: around %d\n", req.Budget)
	}
	if req.Travelers != "" {
		fmt.Fprintf(&prefs, "- Travel party: %s\n", req.Travelers)
	}
	if len(req.TravelType) > 0 {
		fmt.Fprintf(&prefs, "- Interests: %s\n", strings.Join(req.TravelType, ", "))
	}
	if req.Accommodation != "" {
		fmt.Fprintf(&prefs, "- Accommodation preference: %s\n", req.Accommodation)
	}
	if len(req.Transportation) > 0 {
		fmt.Fprintf(&prefs, "- Transportation: %s\n", strings.Join(req.Transportation, ", "))
	}
	if len(req.SpecialNeeds) > 0 {
		fmt.Fprintf(&prefs, "- Special needs: %s\n", strings.Join(req.SpecialNeeds, ", "))
	}
	if req.UserRequest != "" {
		fmt.Fprintf(&prefs, "- Additional request: %s\n", req.UserRequest)
	}

	return fmt.Sprintf(`
You are a travel planner. Build one travel route for %s, from %s to %s.
Focus of this route: %s.
Traveler preferences:
%s
Respond with JSON only, no prose, in this structure:
{
    "title": "Short route title",
    "description": "Two-sentence route summary",
    "highlights": ["3-5 short highlight labels"],
    "days": <int, number of travel days>,
    "estimatedBudget": "e.g. $1,200 - $1,500",
    "itinerary": [
        {
            "day": <int, starting at 1>,
            "title": "Day theme",
            "date": "YYYY-MM-DD",
            "activities": [
                {
                    "title": "Place or activity name",
                    "description": "One or two sentences",
                    "time": "e.g. 09:00 - 11:00",
                    "rating": <float, 0 when unknown>,
                    "price": "e.g. $25, or Free",
                    "latitude": <float, 0 when unknown>,
                    "longitude": <float, 0 when unknown>
                }
            ]
        }
    ]
}
Every day between the start and end date must appear exactly once, with real
coordinates for each concrete place. Use latitude 0 and longitude 0 only when
the activity has no fixed location.`,
		req.Destination, req.TravelStartDate, req.TravelEndDate, theme.Angle, prefs.String())
}
