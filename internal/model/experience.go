package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayDetail describes a single day of an itinerary.
type DayDetail struct {
	Day           int     `bson:"day" json:"day"`
	Description   string  `bson:"description" json:"description"`
	Cost          float64 `bson:"cost" json:"cost"`
	DriverContact string  `bson:"driverContact,omitempty" json:"driverContact,omitempty"`
}

// Experience is a shared trip report. UserID references the owning account;
// only the owner may update or delete the record.
type Experience struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID        primitive.ObjectID `bson:"userId" json:"user"`
	Destination   string             `bson:"destination" json:"destination"`
	ItineraryDays int                `bson:"itineraryDays" json:"itineraryDays"`
	PlacesCovered []string           `bson:"placesCovered" json:"placesCovered"`
	Details       []DayDetail        `bson:"details" json:"details"`
	TotalCost     float64            `bson:"totalCost" json:"totalCost"`
	DriverContact string             `bson:"driverContact,omitempty" json:"driverContact,omitempty"`
	Suggestions   []string           `bson:"suggestions" json:"suggestions"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OwnedBy reports whether the experience belongs to the given user.
func (e *Experience) OwnedBy(userID primitive.ObjectID) bool {
	return e.UserID == userID
}

// ExperienceAuthor is the slice of the owner embedded in list and detail
// responses.
type ExperienceAuthor struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

// ExperienceView is an experience with its author resolved.
type ExperienceView struct {
	Experience
	Author *ExperienceAuthor `json:"author,omitempty"`
}
