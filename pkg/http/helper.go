package http

import (
	"net/http"
	"strconv"

	"hallbook/pkg/config"
	apperrors "hallbook/pkg/errors"
)

// ExtractLimitOffset reads the limit and offset query parameters and
// clamps them to the configured pagination bounds. Listing endpoints for
// halls, bookings, requests and slots all page the same way.
func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	limit, err := intParam(r, "limit")
	if err != nil {
		return 0, 0, err
	}

	offset, err := intParam(r, "offset")
	if err != nil {
		return 0, 0, err
	}

	return config.NormalizePaginationLimit(limit), config.NormalizeOffset(int64(offset)), nil
}

func intParam(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid " + name + " parameter: " + s)
	}
	return v, nil
}
