package domain

// SortDirection orders engagement-based sorts.
type SortDirection string

const (
	SortDescending SortDirection = "desc"
	SortAscending  SortDirection = "asc"
)
