package handlers

import (
	"errors"
	"strconv"
)

const maxPageLimit = 100

var errInvalidPagination = errors.New("invalid pagination params")

func parsePaginationParams(pageStr, limitStr string) (int64, int64, error) {
	page := int64(1)
	limit := int64(20)

	if pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return 0, 0, errInvalidPagination
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 {
			return 0, 0, errInvalidPagination
		}
		limit = min(l, maxPageLimit)
	}

	return page, limit, nil
}

// pageBounds returns the slice bounds of page within total items.
func pageBounds(total int, page, limit int64) (int, int) {
	start := (page - 1) * limit
	if start >= int64(total) {
		return total, total
	}
	end := start + limit
	if end > int64(total) {
		end = int64(total)
	}
	return int(start), int(end)
}
