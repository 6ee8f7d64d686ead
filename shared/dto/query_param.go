package dto

import (
	"net/http"
	"strconv"
	"strings"

	"lodge/shared/constant"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

type QueryParams struct {
	Page    int    `json:"page"     validate:"omitempty,min=1"`
	Limit   int    `json:"limit"    validate:"omitempty,min=1,max=100"`
	SortBy  string `json:"sort_by"  validate:"omitempty"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

// FromRequest reads page, limit, sort_by and sort_dir from the query string.
// With defaultRequest set, missing page and limit fall back to the package defaults.
func (q *QueryParams) FromRequest(r *http.Request, defaultRequest bool) {
	query := r.URL.Query()

	q.Page = positiveInt(query.Get(constant.RequestParamPage))
	q.Limit = positiveInt(query.Get(constant.RequestParamLimit))
	q.SortBy = query.Get(constant.RequestParamSortBy)

	if dir := strings.ToUpper(query.Get(constant.RequestParamSortDir)); dir == SortDirAsc || dir == SortDirDesc {
		q.SortDir = dir
	}

	if !defaultRequest {
		return
	}

	if q.Page == 0 {
		q.Page = constant.DefaultValuePage
	}

	if q.Limit == 0 {
		q.Limit = constant.DefaultValueLimit
	}
}

// SortedBy returns q ordered by column when the caller asked for no ordering, or for an
// ordering outside allowed.
func (q QueryParams) SortedBy(allowed []string, column, dir string) QueryParams {
	for _, name := range allowed {
		if q.SortBy == name && q.SortDir != "" {
			return q
		}
	}

	q.SortBy = column
	q.SortDir = dir

	return q
}

func positiveInt(value string) int {
	if value == "" {
		return 0
	}

	number, err := strconv.Atoi(value)
	if err != nil || number <= 0 {
		return 0
	}

	return number
}
