package session

import (
	"slices"

	"github.com/Mengran777/GaiaPath/internal/types"
)

// Stage is the coarse UI phase gating which views are active.
type Stage string

const (
	StageInitial Stage = "initial"
	StageRoutes  Stage = "routes"
	StageDetails Stage = "details"
)

// State is the navigation state owned by one UI session. It has no persisted
// representation and is rebuilt from scratch on each session start.
//
// Invariants: SelectedRouteID is either empty or the id of an entry in
// RouteOptions; Stage == StageDetails implies SelectedRouteID is set;
// HighlightedDay 0 means "show all days".
//
// All transitions are pure: methods take the state by value and return the
// next state, so each one is independently testable and callers decide where
// the single owned copy lives.
type State struct {
	Stage               Stage
	RouteOptions        []types.RouteOption
	SelectedRouteID     string
	CurrentItinerary    []types.DayItinerary
	HighlightedDay      int
	HighlightedLocation *types.Location
}

// NewState returns the start state.
func NewState() State {
	return State{Stage: StageInitial}
}

// ApplyRoutes replaces the candidate set wholesale and moves to the route
// selection stage. An empty list leaves the state untouched: the transition
// fires only on a successful generation with at least one route.
func (s State) ApplyRoutes(routes []types.RouteOption) State {
	if len(routes) == 0 {
		return s
	}
	next := s
	next.Stage = StageRoutes
	next.RouteOptions = routes
	next.SelectedRouteID = ""
	next.CurrentItinerary = nil
	next.HighlightedDay = 0
	next.HighlightedLocation = nil
	return next
}

// SelectRoute looks up the route, adopts its itinerary, and moves to the
// detail stage. An unknown id is treated as a stale reference: the state is
// returned unchanged, no error.
func (s State) SelectRoute(routeID string) State {
	for _, route := range s.RouteOptions {
		if route.ID != routeID {
			continue
		}
		next := s
		next.Stage = StageDetails
		next.SelectedRouteID = routeID
		next.CurrentItinerary = slices.Clone(route.Itinerary)
		next.HighlightedDay = 0
		next.HighlightedLocation = nil
		return next
	}
	return s
}

// BackToRoutes leaves the detail stage but keeps the route list from the last
// generation available for re-selection.
func (s State) BackToRoutes() State {
	next := s
	next.Stage = StageRoutes
	next.SelectedRouteID = ""
	next.CurrentItinerary = nil
	next.HighlightedDay = 0
	next.HighlightedLocation = nil
	return next
}

// BackToInitial fully resets the session, discarding the route options too.
func (s State) BackToInitial() State {
	return NewState()
}

// SelectDay applies a day filter to the displayed locations. Day 0 is the
// reset sentinel meaning "show all days". Switching day context always closes
// any open location popup.
func (s State) SelectDay(day int) State {
	next := s
	next.HighlightedLocation = nil
	if day <= 0 {
		next.HighlightedDay = 0
	} else {
		next.HighlightedDay = day
	}
	return next
}

// ToggleLocation opens the detail popup on the given location, or closes it
// when the same location (by name/latitude/longitude) is toggled again.
func (s State) ToggleLocation(loc types.Location) State {
	next := s
	if s.HighlightedLocation != nil && s.HighlightedLocation.Same(loc) {
		next.HighlightedLocation = nil
		return next
	}
	picked := loc
	next.HighlightedLocation = &picked
	return next
}

// CurrentRoute returns the selected route option, or nil when none is
// selected.
func (s State) CurrentRoute() *types.RouteOption {
	if s.SelectedRouteID == "" {
		return nil
	}
	for i := range s.RouteOptions {
		if s.RouteOptions[i].ID == s.SelectedRouteID {
			return &s.RouteOptions[i]
		}
	}
	return nil
}

// DisplayedLocations projects the current itinerary into the list of map
// points, in day-then-activity order. Activities at the 0,0 coordinate
// sentinel are excluded. With a day filter set, only that day's activities
// appear; a filter naming a day that does not exist yields an empty list.
// The projection never mutates the itinerary.
func (s State) DisplayedLocations() []types.Location {
	locations := make([]types.Location, 0)
	for _, day := range s.CurrentItinerary {
		if s.HighlightedDay != 0 && day.Day != s.HighlightedDay {
			continue
		}
		for _, activity := range day.Activities {
			if !activity.HasCoordinate() {
				continue
			}
			locations = append(locations, types.LocationFromActivity(activity, day.Day))
		}
	}
	return locations
}
