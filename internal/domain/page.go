package domain

// Page is the single normalized list shape used everywhere inside the
// gateway. The upstream backend answers list requests in three different
// shapes (bare array, {results,count,next}, {data:{results}}); the arsip
// client collapses all of them into a Page at the boundary so no screen
// logic ever re-implements that branch.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// ListParams are the pagination/search parameters forwarded upstream.
// Status only applies to collections with a workflow state (proposals).
type ListParams struct {
	Page     int
	PageSize int
	Search   string
	Status   string
}
