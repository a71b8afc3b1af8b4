package types

// RouteIntensity grades how physically demanding a route option is.
type RouteIntensity string

const (
	IntensityEasy     RouteIntensity = "easy"
	IntensityModerate RouteIntensity = "moderate"
	IntensityHigh     RouteIntensity = "high"
)

// RouteOption is one complete candidate itinerary proposal returned by the
// generation service. Immutable once received; discarded wholesale when a new
// generation starts or on logout.
type RouteOption struct {
	ID              string           `json:"id"`
	Badge           string           `json:"badge"`
	BadgeColor      string           `json:"badgeColor,omitempty"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Highlights      []RouteHighlight `json:"highlights"`
	Days            int              `json:"days"`
	EstimatedBudget string           `json:"estimatedBudget,omitempty"`
	Intensity       RouteIntensity   `json:"intensity,omitempty"`
	Itinerary       []DayItinerary   `json:"itinerary"`
}

// DayItinerary is one calendar day within a route. Day is 1-based, unique
// within a route and defines ordering.
type DayItinerary struct {
	Day        int        `json:"day"`
	Title      string     `json:"title"`
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
}

// Activity is one bookable or visitable unit within a day. A 0,0 coordinate
// pair is the sentinel for "no coordinate" and is excluded from every map
// projection.
type Activity struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Time        string  `json:"time,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	Price       string  `json:"price,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// HasCoordinate reports whether the activity carries a real coordinate pair.
func (a Activity) HasCoordinate() bool {
	return a.Latitude != 0 || a.Longitude != 0
}

// Location is a map point derived from an Activity and its parent day. It is
// never persisted; identity for highlight matching is the
// (name, latitude, longitude) triple, not a stored id.
type Location struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Day         int     `json:"day,omitempty"`
	Time        string  `json:"time,omitempty"`
}

// Same reports whether two locations refer to the same map point. Distinct
// activities may share coordinates, so the name participates in identity.
func (l Location) Same(other Location) bool {
	return l.Name == other.Name &&
		l.Latitude == other.Latitude &&
		l.Longitude == other.Longitude
}

// LocationFromActivity projects an activity plus its parent day number into a
// displayable map point.
func LocationFromActivity(a Activity, day int) Location {
	return Location{
		Name:        a.Title,
		Latitude:    a.Latitude,
		Longitude:   a.Longitude,
		Description: a.Description,
		ImageURL:    a.ImageURL,
		Day:         day,
		Time:        a.Time,
	}
}

// RouteGenerationRequest is the preference payload accepted by the generation
// endpoint. Destination and the travel dates are required; everything else is
// optional or defaulted.
type RouteGenerationRequest struct {
	Destination       string   `json:"destination"`
	TravelStartDate   string   `json:"travelStartDate"`
	TravelEndDate     string   `json:"travelEndDate"`
	Budget            int      `json:"budget,omitempty"`
	Travelers         string   `json:"travelers,omitempty"`
	TravelType        []string `json:"travelType,omitempty"`
	Accommodation     string   `json:"accommodation,omitempty"`
	Transportation    []string `json:"transportation,omitempty"`
	ActivityIntensity string   `json:"activityIntensity,omitempty"`
	SpecialNeeds      []string `json:"specialNeeds,omitempty"`
	UserRequest       string   `json:"userRequest,omitempty"`
	UserID            string   `json:"userId"`
}

// MissingFields lists the required preference fields that are empty, in a
// stable order.
func (r RouteGenerationRequest) MissingFields() []string {
	var missing []string
	if r.Destination == "" {
		missing = append(missing, "destination")
	}
	if r.TravelStartDate == "" {
		missing = append(missing, "travelStartDate")
	}
	if r.TravelEndDate == "" {
		missing = append(missing, "travelEndDate")
	}
	return missing
}
