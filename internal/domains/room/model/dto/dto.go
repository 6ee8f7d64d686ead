package dto

import (
	"lodge/internal/domains/room/model"
	gDto "lodge/shared/dto"
	gModel "lodge/shared/model"
	"lodge/shared/timezone"
)

type RoomRequest struct {
	Number    int    `json:"number"     validate:"required,min=1"`
	BedCount  int    `json:"bed_count"  validate:"required,min=1"`
	BedType   string `json:"bed_type"   validate:"omitempty,max=50"`
	RateCents int64  `json:"rate_cents" validate:"omitempty,min=0"`
	Amenities string `json:"amenities"  validate:"omitempty,max=500"`
	Smoking   bool   `json:"smoking"`
}

func (r *RoomRequest) ToModel(user string) model.Room {
	return model.Room{
		Number:    r.Number,
		BedCount:  r.BedCount,
		BedType:   r.BedType,
		RateCents: r.RateCents,
		Amenities: r.Amenities,
		Smoking:   r.Smoking,
		Metadata:  gModel.NewMetadata(timezone.Now(), user),
	}
}

// LoadRoomsRequest is a whole catalog seed. Room numbers must be unique within it.
type LoadRoomsRequest struct {
	Rooms []RoomRequest `json:"rooms" validate:"required,min=1,unique=Number,dive"`
}

func (l *LoadRoomsRequest) ToModels(user string) []model.Room {
	rooms := make([]model.Room, len(l.Rooms))
	for i := range l.Rooms {
		rooms[i] = l.Rooms[i].ToModel(user)
	}

	return rooms
}

// FromModels builds a seed from existing rooms, used when exporting the catalog.
func (l *LoadRoomsRequest) FromModels(rooms []model.Room) {
	l.Rooms = make([]RoomRequest, len(rooms))
	for i, room := range rooms {
		l.Rooms[i] = RoomRequest{
			Number:    room.Number,
			BedCount:  room.BedCount,
			BedType:   room.BedType,
			RateCents: room.RateCents,
			Amenities: room.Amenities,
			Smoking:   room.Smoking,
		}
	}
}

type RoomResponse struct {
	Number    int    `json:"number"`
	BedCount  int    `json:"bed_count"`
	BedType   string `json:"bed_type"`
	RateCents int64  `json:"rate_cents"`
	Amenities string `json:"amenities"`
	Smoking   bool   `json:"smoking"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.Number = model.Number
	r.BedCount = model.BedCount
	r.BedType = model.BedType
	r.RateCents = model.RateCents
	r.Amenities = model.Amenities
	r.Smoking = model.Smoking
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room) {
	r.TotalData = len(models)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
