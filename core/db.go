package core

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Pagination is a limit/offset window over an ordered list.
type Pagination struct {
	Limit  int
	Offset int
}

// NewPagination normalizes a client provided window:
// a non-positive limit falls back to the default, the limit is capped and a negative offset becomes 0.
func NewPagination(limit, offset int) Pagination {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Pagination{Limit: limit, Offset: offset}
}

// Bounds returns the [start:end) slice indexes of the window over n items.
func (p Pagination) Bounds(n int) (start, end int) {
	p = NewPagination(p.Limit, p.Offset)
	start = p.Offset
	if start > n {
		start = n
	}
	end = start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}
