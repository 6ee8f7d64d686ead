package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"lodge/internal/domains/reservation/model"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
)

type memoryImpl struct {
	mu           sync.RWMutex
	reservations map[string]model.Reservation
}

// NewMemory returns a process local store. Like the postgres exclusion constraint it
// refuses to hold two overlapping active reservations for one room.
func NewMemory() Reservation {
	return &memoryImpl{reservations: map[string]model.Reservation{}}
}

func (m *memoryImpl) filter(keep func(model.Reservation) bool) []model.Reservation {
	reservations := []model.Reservation{}

	for _, reservation := range m.reservations {
		if keep(reservation) {
			reservations = append(reservations, reservation)
		}
	}

	return reservations
}

func (m *memoryImpl) ActiveFor(ctx context.Context, roomNumber int) ([]model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrStorage, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	reservations := m.filter(func(r model.Reservation) bool {
		return r.RoomNumber == roomNumber && r.IsActive()
	})
	slices.SortFunc(reservations, func(a, b model.Reservation) int {
		return a.StartDate.Compare(b.StartDate)
	})

	return reservations, nil
}

func (m *memoryImpl) Get(ctx context.Context, id string) (model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return model.Reservation{}, fmt.Errorf("%w: %w", model.ErrStorage, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.reservations[id], nil
}

func sortKey(r model.Reservation, field string) time.Time {
	switch field {
	case model.FieldEndDate:
		return r.EndDate
	case constant.FieldCreatedAt:
		return r.CreatedAt
	default:
		return r.StartDate
	}
}

func (m *memoryImpl) List(ctx context.Context, roomNumber int, includeCancelled bool, params gDto.QueryParams) ([]model.Reservation, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", model.ErrStorage, err)
	}

	params = params.SortedBy(SortableFields, model.FieldStartDate, gDto.SortDirAsc)

	m.mu.RLock()
	reservations := m.filter(func(r model.Reservation) bool {
		return r.RoomNumber == roomNumber && (includeCancelled || r.IsActive())
	})
	m.mu.RUnlock()

	slices.SortFunc(reservations, func(a, b model.Reservation) int {
		order := sortKey(a, params.SortBy).Compare(sortKey(b, params.SortBy))
		if order == 0 {
			order = cmp.Compare(a.ID, b.ID)
		}

		if params.SortDir == gDto.SortDirDesc {
			return -order
		}

		return order
	})

	total := len(reservations)

	if params.Limit > 0 {
		offset := min(max(params.Page-1, 0)*params.Limit, total)
		reservations = reservations[offset:min(offset+params.Limit, total)]
	}

	return reservations, total, nil
}

// conflicts reports an active reservation overlapping candidate, ignoring except.
func (m *memoryImpl) conflicts(candidate model.Reservation, except string) error {
	if !candidate.IsActive() {
		return nil
	}

	active := m.filter(func(r model.Reservation) bool {
		return r.RoomNumber == candidate.RoomNumber && r.ID != candidate.ID
	})

	if existing, found := model.FirstConflict(active, candidate.StartDate, candidate.EndDate, except); found {
		return fmt.Errorf("%w: overlaps reservation %s", model.ErrRoomUnavailable, existing.ID)
	}

	return nil
}

func (m *memoryImpl) Insert(ctx context.Context, reservation model.Reservation) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", model.ErrStorage, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.reservations[reservation.ID]; exists {
		return fmt.Errorf("%w: duplicate reservation id %s", model.ErrStorage, reservation.ID)
	}

	if err := m.conflicts(reservation, ""); err != nil {
		return err
	}

	m.reservations[reservation.ID] = reservation

	return nil
}

func (m *memoryImpl) Cancel(ctx context.Context, reservation model.Reservation) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", model.ErrStorage, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancel(reservation)

	return nil
}

func (m *memoryImpl) cancel(reservation model.Reservation) {
	stored, ok := m.reservations[reservation.ID]
	if !ok {
		return
	}

	stored.Status = reservation.Status
	stored.CancelledAt = reservation.CancelledAt
	stored.ModifiedAt = reservation.ModifiedAt
	stored.ModifiedBy = reservation.ModifiedBy
	m.reservations[reservation.ID] = stored
}

func (m *memoryImpl) Replace(ctx context.Context, previous, next model.Reservation) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", model.ErrStorage, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.reservations[next.ID]; exists {
		return fmt.Errorf("%w: duplicate reservation id %s", model.ErrStorage, next.ID)
	}

	// previous is checked as already cancelled, so nothing changes on failure.
	if err := m.conflicts(next, previous.ID); err != nil {
		return err
	}

	m.cancel(previous)
	m.reservations[next.ID] = next

	return nil
}

func (m *memoryImpl) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", model.ErrStorage, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.reservations = map[string]model.Reservation{}

	return nil
}
