package paging

import "fmt"

// Connection represents a Relay-compliant GraphQL connection.
// It provides both edges (with cursors) and nodes (direct access) to support
// different query patterns.
//
// Type parameter T is the node type (e.g., *content.Post).
//
// Example GraphQL schema:
//
//	type PostConnection {
//	  edges: [PostEdge!]!
//	  nodes: [Post!]!
//	  pageInfo: PageInfo!
//	}
type Connection[T any] struct {
	// Edges contains the page in the connection's forward order.
	Edges []Edge[T] `json:"edges"`

	// Nodes provides direct access to the items without cursor overhead.
	Nodes []T `json:"nodes"`

	// PageInfo contains pagination metadata (hasNextPage, cursors, etc.)
	PageInfo PageInfo `json:"pageInfo"`

	// Metadata describes how the page was produced. It is not serialized.
	Metadata Metadata `json:"-"`
}

// Edge represents a Relay-compliant edge in a connection.
// Each edge contains a cursor (for pagination) and the node (actual data).
//
// Example GraphQL schema:
//
//	type PostEdge {
//	  cursor: String!
//	  node: Post!
//	}
type Edge[T any] struct {
	// Cursor is an opaque string that marks this item's position in the list.
	// Clients can use this cursor to resume pagination from this point.
	Cursor string `json:"cursor"`

	// Node is the actual data item.
	Node T `json:"node"`
}

// Metadata provides observability information about a pagination call.
type Metadata struct {
	// Strategy identifies the pagination strategy ("cursor").
	Strategy string

	// QueriesIssued is the number of store round trips (at most 2).
	QueriesIssued int

	// ItemsExamined is the number of documents returned by the store.
	ItemsExamined int

	// QueryTimeMs is the time spent inside the store.
	QueryTimeMs int64
}

// BuildConnection converts a connection of source nodes into a connection of
// target nodes, keeping cursors and page info.
//
// Type parameters:
//   - From: Source type (e.g., a storage model)
//   - To: Target type (e.g., a GraphQL model)
//
// Example usage:
//
//	conn, err := paging.BuildConnection(page, func(p *content.Post) (*gql.Post, error) {
//	    return toGraphQLPost(p)
//	})
func BuildConnection[From any, To any](
	src *Connection[From],
	transform func(From) (To, error),
) (*Connection[To], error) {
	conn := &Connection[To]{
		Nodes:    make([]To, 0, len(src.Edges)),
		Edges:    make([]Edge[To], 0, len(src.Edges)),
		PageInfo: src.PageInfo,
		Metadata: src.Metadata,
	}

	for i, edge := range src.Edges {
		transformed, err := transform(edge.Node)
		if err != nil {
			return nil, fmt.Errorf("transform item at index %d: %w", i, err)
		}

		conn.Nodes = append(conn.Nodes, transformed)
		conn.Edges = append(conn.Edges, Edge[To]{
			Cursor: edge.Cursor,
			Node:   transformed,
		})
	}

	return conn, nil
}

// NewConnection assembles a connection from edges and page info.
func NewConnection[T any](edges []Edge[T], pageInfo PageInfo) *Connection[T] {
	if edges == nil {
		edges = []Edge[T]{}
	}

	nodes := make([]T, len(edges))
	for i, edge := range edges {
		nodes[i] = edge.Node
	}

	return &Connection[T]{
		Edges:    edges,
		Nodes:    nodes,
		PageInfo: pageInfo,
		Metadata: Metadata{Strategy: "cursor"},
	}
}
