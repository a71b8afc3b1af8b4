package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User is an account holder. The hashed password never leaves the server.
type User struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	HashedPassword string     `json:"-"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// PublicUser is the identity-lookup projection: display data only, never used
// for authorization decisions.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Trip is a persisted itinerary owned by a user. Generation saves each
// produced route as a trip with its flattened activity list.
type Trip struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"userId"`
	Name      string         `json:"name"`
	StartDate time.Time      `json:"startDate"`
	EndDate   time.Time      `json:"endDate"`
	Locations []TripLocation `json:"locations,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// TripLocation is one stored activity within a trip. Order encodes the
// day/activity position as day*1000+index, matching the wire contract.
type TripLocation struct {
	ID          uuid.UUID `json:"id"`
	TripID      uuid.UUID `json:"tripId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Order       int       `json:"order"`
	Time        string    `json:"time,omitempty"`
	Rating      float64   `json:"rating,omitempty"`
	Price       string    `json:"price,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
}

// CreateTripParams is the POST /api/trips body. Dates arrive as YYYY-MM-DD
// strings on the wire.
type CreateTripParams struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// UpdateTripParams carries the mutable trip fields; pointers allow partial
// updates.
type UpdateTripParams struct {
	Name      *string    `json:"name,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// UpdateLocationParams carries the mutable location fields; pointers allow
// partial updates.
type UpdateLocationParams struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Order       *int     `json:"order,omitempty"`
	Time        *string  `json:"time,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Price       *string  `json:"price,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
}

// FavoriteRoute is a persisted favorite: the full route payload is stored as
// JSON so the route survives regeneration.
type FavoriteRoute struct {
	ID        uuid.UUID       `json:"favoriteId"`
	UserID    uuid.UUID       `json:"userId"`
	RouteID   string          `json:"routeId"`
	RouteData json.RawMessage `json:"routeData"`
	CreatedAt time.Time       `json:"createdAt"`
}

// FavoriteAction selects add or remove on the favorites endpoint.
type FavoriteAction string

const (
	FavoriteActionAdd    FavoriteAction = "add"
	FavoriteActionRemove FavoriteAction = "remove"
)

// FavoriteRequest is the POST /api/favorites body.
type FavoriteRequest struct {
	RouteID   string          `json:"routeId"`
	RouteData json.RawMessage `json:"routeData,omitempty"`
	Action    FavoriteAction  `json:"action"`
}
