// internal/domain/models/booking.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking is a confirmed (or pending) purchase of a destination package.
type Booking struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID        *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	DestinationID *primitive.ObjectID `bson:"destination_id,omitempty" json:"destination_id,omitempty"`
	FullName      string              `bson:"full_name" json:"full_name"`
	Email         string              `bson:"email" json:"email"`
	TravelDate    time.Time           `bson:"travel_date" json:"travel_date"`
	Travelers     int                 `bson:"travelers" json:"travelers"`
	TotalPrice    float64             `bson:"total_price" json:"total_price"`
	Status        string              `bson:"status" json:"status"` // pending | confirmed | cancelled | completed

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// TripRequest is a custom itinerary request submitted from the planner form.
type TripRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName    string             `bson:"full_name" json:"full_name"`
	Email       string             `bson:"email" json:"email"`
	Destination string             `bson:"destination" json:"destination"`
	StartDate   time.Time          `bson:"start_date" json:"start_date"`
	EndDate     time.Time          `bson:"end_date" json:"end_date"`
	Budget      string             `bson:"budget,omitempty" json:"budget,omitempty"`
	Travelers   int                `bson:"travelers" json:"travelers"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Status      string             `bson:"status" json:"status"` // pending | approved | rejected | completed

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
