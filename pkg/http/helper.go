package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"petsitter/pkg/calendar"
	"petsitter/pkg/config"
	apperrors "petsitter/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractPage reads the 1-indexed "page" query parameter, defaulting to 1.
func ExtractPage(r *http.Request) (int, error) {
	s := r.URL.Query().Get("page")
	if s == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(s)
	if err != nil || page < 1 {
		return 0, apperrors.InvalidInput("invalid page parameter: " + s)
	}
	return page, nil
}

// ExtractWindow reads optional from/to query parameters as an inclusive
// day range. Both or neither must be present.
func ExtractWindow(r *http.Request) (*calendar.DayRange, error) {
	query := r.URL.Query()
	from, to := query.Get("from"), query.Get("to")
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, apperrors.InvalidInput("from and to must be given together")
	}

	start, err := calendar.ParseDay(from)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	end, err := calendar.ParseDay(to)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	window, err := calendar.NewRange(start, end)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid window %s..%s: %v", from, to, err))
	}
	return &window, nil
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return apperrors.InvalidInput(fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}
