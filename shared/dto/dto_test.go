package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"lodge/shared/constant"
	"lodge/shared/dto"
	"lodge/shared/model"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	modifiedAt := time.Date(2024, 1, 11, 12, 0, 0, 0, time.UTC)

	var meta dto.Metadata
	meta.FromModel(model.Metadata{
		CreatedAt:  createdAt,
		ModifiedAt: modifiedAt,
		CreatedBy:  "front-desk",
		ModifiedBy: "night-audit",
	})

	assert.Equal(t, createdAt.Format(constant.DateFormat), meta.CreatedAt)
	assert.Equal(t, modifiedAt.Format(constant.DateFormat), meta.ModifiedAt)
	assert.Equal(t, "front-desk", meta.CreatedBy)
	assert.Equal(t, "night-audit", meta.ModifiedBy)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		defaultRequest bool
		expected       dto.QueryParams
	}{
		{
			name:     "all parameters",
			query:    "page=2&limit=20&sort_by=start_date&sort_dir=asc",
			expected: dto.QueryParams{Page: 2, Limit: 20, SortBy: "start_date", SortDir: dto.SortDirAsc},
		},
		{
			name:           "defaults applied",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "no defaults leaves zero values",
			expected: dto.QueryParams{},
		},
		{
			name:           "invalid numbers fall back to defaults",
			query:          "page=abc&limit=-10",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "unknown sort direction ignored",
			query:    "sort_dir=sideways",
			expected: dto.QueryParams{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/rooms/101/reservations?"+tt.query, nil)

			var params dto.QueryParams
			params.FromRequest(req, tt.defaultRequest)

			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestQueryParams_SortedBy(t *testing.T) {
	allowed := []string{"start_date", "created_at"}

	kept := dto.QueryParams{SortBy: "created_at", SortDir: dto.SortDirDesc}.SortedBy(allowed, "start_date", dto.SortDirAsc)
	assert.Equal(t, "created_at", kept.SortBy)
	assert.Equal(t, dto.SortDirDesc, kept.SortDir)

	replaced := dto.QueryParams{SortBy: "1; DROP TABLE rooms", SortDir: dto.SortDirAsc}.SortedBy(allowed, "start_date", dto.SortDirAsc)
	assert.Equal(t, "start_date", replaced.SortBy)
	assert.Equal(t, dto.SortDirAsc, replaced.SortDir)
}

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "eq with table",
			filter:    dto.Filter{Field: "room_number", Value: 101, Operator: dto.FilterOperatorEq, Table: "reservations"},
			wantWhere: "reservations.room_number = :room_number",
			wantArgs:  map[string]any{"room_number": 101},
		},
		{
			name:      "strict less with arg name",
			filter:    dto.Filter{ArgName: "range_end", Field: "start_date", Value: "2024-01-15", Operator: dto.FilterOperatorLess},
			wantWhere: "start_date < :range_end",
			wantArgs:  map[string]any{"range_end": "2024-01-15"},
		},
		{
			name:      "greater or equal",
			filter:    dto.Filter{Field: "bed_count", Value: 2, Operator: dto.FilterOperatorGreaterEq},
			wantWhere: "bed_count >= :bed_count",
			wantArgs:  map[string]any{"bed_count": 2},
		},
		{
			name:      "in slice",
			filter:    dto.Filter{Field: "status", Value: []string{"active", "cancelled"}, Operator: dto.FilterOperatorIn},
			wantWhere: "status IN (:status_0, :status_1)",
			wantArgs:  map[string]any{"status_0": "active", "status_1": "cancelled"},
		},
		{
			name:      "like",
			filter:    dto.Filter{Field: "email", Value: "example.com", Operator: dto.FilterOperatorLike},
			wantWhere: "LOWER(email) LIKE LOWER(:email)",
			wantArgs:  map[string]any{"email": "%example.com%"},
		},
		{
			name:      "is null",
			filter:    dto.Filter{Field: "cancelled_at", Operator: dto.FilterIsNull},
			wantWhere: "cancelled_at IS NULL",
			wantArgs:  map[string]any{},
		},
		{
			name:      "unknown operator",
			filter:    dto.Filter{Field: "x", Operator: "between"},
			wantWhere: "",
			wantArgs:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	overlap := dto.And(
		dto.Filter{Field: "room_number", Value: 101, Operator: dto.FilterOperatorEq},
		dto.Filter{ArgName: "range_end", Field: "start_date", Value: "2024-01-15", Operator: dto.FilterOperatorLess},
		dto.Filter{ArgName: "range_start", Field: "end_date", Value: "2024-01-10", Operator: dto.FilterOperatorGreater},
		dto.Filter{Field: "ignored", Operator: "unknown"},
	)

	where, args := overlap.GetWhereClause()

	assert.Equal(t, "(room_number = :room_number AND start_date < :range_end AND end_date > :range_start)", where)
	assert.Len(t, args, 3)

	empty := dto.FilterGroup{}
	where, args = empty.GetWhereClause()

	assert.Empty(t, where)
	assert.Empty(t, args)
}
