package utils

// DefaultPageLimit applies when a listing request names no limit
const DefaultPageLimit = 50

// MaxPageLimit caps any single listing request
const MaxPageLimit = 500

// PaginationParams holds offset based request parameters
type PaginationParams struct {
	Offset int64 `form:"offset"`
	Limit  int64 `form:"limit"`
}

// PaginationMeta holds pagination response metadata
type PaginationMeta struct {
	Offset     int64 `json:"offset"`
	Limit      int64 `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	HasMore    bool  `json:"hasMore"`
}

// GetPaginationParams applies defaults: negative offset becomes 0,
// a non-positive limit becomes DefaultPageLimit, and limit is capped at MaxPageLimit
func GetPaginationParams(offset, limit int64) PaginationParams {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return PaginationParams{Offset: offset, Limit: limit}
}

// ClampWindow returns the half-open range [start, end) of a window over n items.
// An offset at or past n yields an empty window; limit is capped to the remaining count.
func ClampWindow(n, offset, limit int64) (start, end int64) {
	if n < 0 {
		n = 0
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset >= n {
		return n, n
	}
	remaining := n - offset
	if limit > remaining {
		limit = remaining
	}
	return offset, offset + limit
}

// CalculateMeta generates pagination metadata
func CalculateMeta(totalCount, offset, limit int64, returned int) PaginationMeta {
	return PaginationMeta{
		Offset:     offset,
		Limit:      limit,
		TotalCount: totalCount,
		HasMore:    offset+int64(returned) < totalCount,
	}
}
