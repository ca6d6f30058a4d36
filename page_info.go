package paging

// PageInfo contains metadata about a page of a connection.
// The JSON field names are part of the Relay wire contract and must not change.
//
// StartCursor and EndCursor are the cursors of the first and last returned
// edge, or nil when the page is empty. HasNextPage and HasPreviousPage report
// whether any document exists beyond the last and before the first edge
// under the same filter and sort.
type PageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
}

// NewEmptyPageInfo returns an empty instance of PageInfo. Useful for when a
// resolver must fulfil PageInfo requirements without running a query.
func NewEmptyPageInfo() *PageInfo {
	return &PageInfo{}
}
