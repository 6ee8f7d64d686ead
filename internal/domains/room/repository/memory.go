package repository

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"lodge/internal/domains/room/model"
)

type memoryImpl struct {
	mu    sync.RWMutex
	rooms map[int]model.Room
}

// NewMemory returns a process local catalog, used with the memory store driver and in tests.
func NewMemory() Room {
	return &memoryImpl{rooms: map[int]model.Room{}}
}

func (m *memoryImpl) List(ctx context.Context, minBeds int) ([]model.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := []model.Room{}

	for _, room := range m.rooms {
		if room.BedCount >= minBeds {
			rooms = append(rooms, room)
		}
	}

	slices.SortFunc(rooms, func(a, b model.Room) int {
		return cmp.Compare(a.Number, b.Number)
	})

	return rooms, nil
}

func (m *memoryImpl) Get(ctx context.Context, number int) (model.Room, error) {
	if err := ctx.Err(); err != nil {
		return model.Room{}, err //nolint:wrapcheck
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.rooms[number], nil
}

func (m *memoryImpl) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err //nolint:wrapcheck
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.rooms), nil
}

func (m *memoryImpl) Upsert(ctx context.Context, rooms []model.Room) error {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := maps.Clone(m.rooms)

	for _, room := range rooms {
		if existing, ok := next[room.Number]; ok {
			room.CreatedAt = existing.CreatedAt
			room.CreatedBy = existing.CreatedBy
		}

		next[room.Number] = room
	}

	m.rooms = next

	return nil
}
