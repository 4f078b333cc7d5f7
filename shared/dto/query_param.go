package dto

import (
	"net/http"
	"strconv"
	"strings"

	"busline/shared/constant"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

// QueryParams carries the optional paging and ordering of list endpoints. SortBy is
// checked against the table columns by the repository, never interpolated blindly.
type QueryParams struct {
	Page    int    `json:"page"     validate:"omitempty"`
	Limit   int    `json:"limit"    validate:"omitempty"`
	SortBy  string `json:"sort_by"  validate:"omitempty"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

// FromRequest reads page, limit, sort_by and sort_dir. A requested limit is capped at
// MaxValueLimit. With paginate set, a missing page or limit falls back to the defaults.
func (q *QueryParams) FromRequest(r *http.Request, paginate bool) {
	values := r.URL.Query()

	q.Page = positiveInt(values.Get(constant.RequestParamPage))
	q.Limit = positiveInt(values.Get(constant.RequestParamLimit))
	q.SortBy = strings.TrimSpace(values.Get(constant.RequestParamSortBy))

	switch dir := strings.ToUpper(values.Get(constant.RequestParamSortDir)); dir {
	case SortDirAsc, SortDirDesc:
		q.SortDir = dir
	default:
		if q.SortBy != "" {
			q.SortDir = SortDirAsc
		}
	}

	q.Limit = min(q.Limit, constant.MaxValueLimit)

	if !paginate {
		return
	}

	if q.Page == 0 {
		q.Page = constant.DefaultValuePage
	}

	if q.Limit == 0 {
		q.Limit = constant.DefaultValueLimit
	}
}

func positiveInt(raw string) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}

	return value
}
