package paging

import (
	"context"
)

// PageInfoResolver resolves the fields of a PageInfo for GraphQL servers
// that bind one resolver method per field (e.g. gqlgen).
type PageInfoResolver interface {
	HasPreviousPage(ctx context.Context, pageInfo *PageInfo) (bool, error)
	HasNextPage(ctx context.Context, pageInfo *PageInfo) (bool, error)
	StartCursor(ctx context.Context, pageInfo *PageInfo) (*string, error)
	EndCursor(ctx context.Context, pageInfo *PageInfo) (*string, error)
}

type pageInfoResolver struct{}

// NewPageInfoResolver returns the resolver for PageInfo
func NewPageInfoResolver() PageInfoResolver {
	return &pageInfoResolver{}
}

func (r *pageInfoResolver) HasPreviousPage(ctx context.Context, pageInfo *PageInfo) (bool, error) {
	if pageInfo == nil {
		return false, nil
	}
	return pageInfo.HasPreviousPage, nil
}

func (r *pageInfoResolver) HasNextPage(ctx context.Context, pageInfo *PageInfo) (bool, error) {
	if pageInfo == nil {
		return false, nil
	}
	return pageInfo.HasNextPage, nil
}

func (r *pageInfoResolver) StartCursor(ctx context.Context, pageInfo *PageInfo) (*string, error) {
	if pageInfo == nil {
		return nil, nil
	}
	return pageInfo.StartCursor, nil
}

func (r *pageInfoResolver) EndCursor(ctx context.Context, pageInfo *PageInfo) (*string, error) {
	if pageInfo == nil {
		return nil, nil
	}
	return pageInfo.EndCursor, nil
}
