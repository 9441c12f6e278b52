package domain

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is a 1-based page position.
type PageRequest struct {
	PageNumber int
	PageSize   int
}

// Normalize replaces out-of-range values: page numbers below 1 become 1 and
// page sizes outside [1, MaxPageSize] become DefaultPageSize.
func (p PageRequest) Normalize() PageRequest {
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Offset is the number of records skipped before this page.
func (p PageRequest) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}

// TotalPages is ceil(totalRecords / pageSize).
func TotalPages(totalRecords int64, pageSize int) int {
	if pageSize <= 0 || totalRecords <= 0 {
		return 0
	}
	size := int64(pageSize)
	return int((totalRecords + size - 1) / size)
}
