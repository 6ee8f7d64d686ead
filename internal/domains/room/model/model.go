package model

import (
	"errors"

	"lodge/shared/model"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldNumber    = "number"
	FieldBedCount  = "bed_count"
	FieldBedType   = "bed_type"
	FieldRateCents = "rate_cents"
	FieldAmenities = "amenities"
	FieldSmoking   = "smoking"
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrStorageUnavailable = errors.New("room catalog storage unavailable")
	ErrInvalidRoom        = errors.New("invalid room")
)

// Room is one catalog entry. Only Number and BedCount matter to admission; the rest is
// descriptive.
type Room struct {
	Number    int    `db:"number"     json:"number"`
	BedCount  int    `db:"bed_count"  json:"bed_count"`
	BedType   string `db:"bed_type"   json:"bed_type"`
	RateCents int64  `db:"rate_cents" json:"rate_cents"`
	Amenities string `db:"amenities"  json:"amenities"`
	Smoking   bool   `db:"smoking"    json:"smoking"`
	model.Metadata
}

// Fits reports whether a party of partySize can stay in the room.
func (r Room) Fits(partySize int) bool {
	return partySize <= r.BedCount
}

// Exists tells a loaded room apart from the zero value returned for a missing one.
func (r Room) Exists() bool {
	return r.Number != 0
}
