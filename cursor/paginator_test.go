package cursor_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/nrfta/keyset-paging"
	"github.com/nrfta/keyset-paging/cursor"
)

var _ = Describe("Paginator", func() {
	var (
		ctx       context.Context
		schema    *cursor.Schema[*doc]
		docs      []*doc
		fetcher   *countingFetcher
		paginator *cursor.Paginator[*doc]
		newest    = paging.Sort{Field: "createdAt", Desc: true}
	)

	// cursorOf encodes the cursor of docs[id-1] under sort.
	cursorOf := func(sort paging.Sort, id int) string {
		spec, err := schema.EncoderFor(sort)
		Expect(err).ToNot(HaveOccurred())
		c, err := spec.Encode(docs[id-1])
		Expect(err).ToNot(HaveOccurred())
		return c
	}

	BeforeEach(func() {
		ctx = context.Background()
		schema = newSchema()
		docs = []*doc{
			{ID: 1, CreatedAt: "D", Score: 1},
			{ID: 2, CreatedAt: "C", Score: 2},
			{ID: 3, CreatedAt: "C", Score: 3},
			{ID: 4, CreatedAt: "B", Score: 4},
		}
		fetcher = &countingFetcher{base: newStore(docs...)}
		paginator = cursor.New[*doc](fetcher, schema, newest)
	})

	Describe("forward paging", func() {
		It("should break ties on the id and resume after the end cursor", func() {
			conn, err := paginator.Paginate(ctx, nil, paging.Forward(2, ""))
			Expect(err).ToNot(HaveOccurred())
			Expect(ids(conn.Edges)).To(Equal([]int{1, 2}))
			Expect(conn.PageInfo.HasNextPage).To(BeTrue())
			Expect(conn.PageInfo.HasPreviousPage).To(BeFalse())
			Expect(*conn.PageInfo.StartCursor).To(Equal(conn.Edges[0].Cursor))

			spec, err := schema.EncoderFor(newest)
			Expect(err).ToNot(HaveOccurred())
			pos, err := spec.Decode(*conn.PageInfo.EndCursor)
			Expect(err).ToNot(HaveOccurred())
			Expect(*pos).To(Equal(paging.CursorPosition{SortValue: "C", ID: int64(2)}))

			next, err := paginator.Paginate(ctx, nil, paging.Forward(2, *conn.PageInfo.EndCursor))
			Expect(err).ToNot(HaveOccurred())
			Expect(ids(next.Edges)).To(Equal([]int{3, 4}))
			Expect(next.PageInfo.HasNextPage).To(BeFalse())
			Expect(next.PageInfo.HasPreviousPage).To(BeTrue())
		})

		It("should mirror edges into nodes", func() {
			conn, err := paginator.Paginate(ctx, nil, paging.Forward(2, ""))
			Expect(err).ToNot(HaveOccurred())
			Expect(conn.Nodes).To(Equal([]*doc{docs[0], docs[1]}))
		})

		It("should sort by a requested field and direction", func() {
			conn, err := paginator.Paginate(ctx, nil, paging.WithSort(paging.Forward(3, ""), "createdAt", false))
			Expect(err).ToNot(HaveOccurred())
			Expect(ids(conn.Edges)).To(Equal([]int{4, 2, 3}))
			Expect(conn.PageInfo.HasNextPage).To(BeTrue())
		})

		It("should return an empty page after the last document", func() {
			conn, err := paginator.Paginate(ctx, nil, paging.Forward(2, cursorOf(newest, 4)))
			Expect(err).ToNot(HaveOccurred())
			Expect(conn.Edges).To(BeEmpty())
			Expect(conn.PageInfo.StartCursor).To(BeNil())
			Expect(conn.PageInfo.EndCursor).To(BeNil())
			Expect(conn.PageInfo.HasNextPage).To(BeFalse())
			Expect(conn.PageInfo.HasPreviousPage).To(BeTrue())
		})

		It("should report more documents for a zero size page", func() {
			conn, err := paginator.Paginate(ctx, nil, paging.Forward(0, ""))
			Expect(err).ToNot(HaveOccurred())
			Expect(conn.Edges).To(BeEmpty())
			Expect(conn.PageInfo.HasNextPage).To(BeTrue())
			Expect(conn.PageInfo.HasPreviousPage).To(BeFalse())
		})
	})

	Describe("backward paging", func() {
		It("should return the last edges in forward order", func() {
			conn, err := paginator.Paginate(ctx, nil, paging.Backward(2, ""))
			Expect(err).ToNot(HaveOccurred())
			Expect(ids(conn.Edges)).To(Equal([]int{3, 4}))
			Expect(conn.PageInfo.HasPreviousPage).To(BeTrue())
			Expect(conn.PageInfo.HasNextPage).To(BeFalse())

			prev, err := paginator.Paginate(ctx, nil, paging.Backward(2, *conn.PageInfo.StartCursor))
			Expect(err).ToNot(HaveOccurred())
			Expect(ids(prev.Edges)).To(Equal([]int{1, 2}))
			Expect(prev.PageInfo.HasPreviousPage).To(BeFalse())
			Expect(prev.PageInfo.HasNextPage).To(BeTrue())
		})

		It("should return the same edges as forward paging over the same window", func() {
			forward, err := paginator.Paginate(ctx, nil, paging.Forward(2, cursorOf(newest, 1)))
			Expect(err).ToNot(HaveOccurred())

			backward, err := paginator.Paginate(ctx, nil, paging.Backward(2, cursorOf(newest, 4)))
			Expect(err).ToNot(HaveOccurred())

			Expect(ids(backward.Edges)).To(Equal(ids(forward.Edges)))
			Expect(backward.Edges).To(Equal(forward.Edges))
		})
	})

	Describe("windows", func() {
		It("should trim the far bound in memory", func() {
			args := &paging.QueryArgs{First: ptr(10), After: ptr(cursorOf(newest, 1)), Before: ptr(cursorOf(newest, 4))}
			conn, err := paginator.Paginate(ctx, nil, args)
			Expect(err).ToNot(HaveOccurred())
			Expect(ids(conn.Edges)).To(Equal([]int{2, 3}))
			Expect(conn.PageInfo.HasPreviousPage).To(BeTrue())

			// Only the near side reaches the store.
			Expect(fetcher.last[0].Boundary).To(Equal(cursor.Boundary(
				paging.Order{Sort: newest, IDField: "id"},
				&paging.CursorPosition{SortValue: "D", ID: int64(1)},
				cursor.After,
			)))
		})

		It("should take the last edges of a window", func() {
			args := &paging.QueryArgs{Last: ptr(1), After: ptr(cursorOf(newest, 1)), Before: ptr(cursorOf(newest, 4))}
			conn, err := paginator.Paginate(ctx, nil, args)
			Expect(err).ToNot(HaveOccurred())
			Expect(ids(conn.Edges)).To(Equal([]int{3}))
			Expect(conn.PageInfo.HasPreviousPage).To(BeTrue())
		})

		It("should reject empty and inverted windows", func() {
			for _, args := range []*paging.QueryArgs{
				{First: ptr(2), After: ptr(cursorOf(newest, 4)), Before: ptr(cursorOf(newest, 1))},
				{First: ptr(2), After: ptr(cursorOf(newest, 2)), Before: ptr(cursorOf(newest, 2))},
			} {
				_, err := paginator.Paginate(ctx, nil, args)
				Expect(err).To(MatchError(paging.ErrInvalidArgument))
			}
			Expect(fetcher.queries()).To(BeZero())
		})
	})

	Describe("filters", func() {
		afterB := paging.Cmp{Field: "createdAt", Op: paging.Gt, Value: "B"}

		It("should combine the filter with the boundary", func() {
			conn, err := paginator.Paginate(ctx, afterB, paging.Forward(10, ""))
			Expect(err).ToNot(HaveOccurred())
			Expect(ids(conn.Edges)).To(Equal([]int{1, 2, 3}))
			Expect(conn.PageInfo.HasNextPage).To(BeFalse())

			conn, err = paginator.Paginate(ctx, afterB, paging.Forward(10, cursorOf(newest, 2)))
			Expect(err).ToNot(HaveOccurred())
			Expect(ids(conn.Edges)).To(Equal([]int{3}))
			Expect(conn.PageInfo.HasPreviousPage).To(BeTrue())
		})

		It("should apply the filter to the existence probe", func() {
			onlyTwo := paging.Eq{Field: "id", Value: 2}
			conn, err := paginator.Paginate(ctx, onlyTwo, paging.Forward(1, cursorOf(newest, 1)))
			Expect(err).ToNot(HaveOccurred())
			Expect(ids(conn.Edges)).To(Equal([]int{2}))
			Expect(conn.PageInfo.HasPreviousPage).To(BeFalse())
			Expect(conn.PageInfo.HasNextPage).To(BeFalse())
		})
	})

	Describe("stability", func() {
		var all []*doc

		BeforeEach(func() {
			store := newStore()
			for i := 1; i <= 30; i++ {
				store.Insert(&doc{ID: i, CreatedAt: string(rune('A' + i%5)), Score: float64(i % 7)})
			}
			fetcher = &countingFetcher{base: store}
			paginator = cursor.New[*doc](fetcher, schema, newest)

			all, _ = store.Fetch(ctx, paging.FetchParams{Order: paging.Order{Sort: newest, IDField: "id"}, Limit: -1})
		})

		expected := func() []int {
			out := make([]int, len(all))
			for i, d := range all {
				out[i] = d.ID
			}
			return out
		}

		It("should visit every document exactly once forwards", func() {
			var seen []int
			after := ""
			for {
				conn, err := paginator.Paginate(ctx, nil, paging.Forward(4, after))
				Expect(err).ToNot(HaveOccurred())
				Expect(conn.Metadata.QueriesIssued).To(BeNumerically("<=", 2))
				seen = append(seen, ids(conn.Edges)...)
				if !conn.PageInfo.HasNextPage {
					break
				}
				after = *conn.PageInfo.EndCursor
			}
			Expect(seen).To(Equal(expected()))
		})

		It("should visit every document exactly once backwards", func() {
			var seen []int
			before := ""
			for {
				conn, err := paginator.Paginate(ctx, nil, paging.Backward(4, before))
				Expect(err).ToNot(HaveOccurred())
				seen = append(ids(conn.Edges), seen...)
				if !conn.PageInfo.HasPreviousPage {
					break
				}
				before = *conn.PageInfo.StartCursor
			}
			Expect(seen).To(Equal(expected()))
		})

		It("should keep the order of a sort with many ties", func() {
			byScore := paging.Sort{Field: "score"}
			var seen []*doc
			after := ""
			for {
				conn, err := paginator.Paginate(ctx, nil, paging.WithSort(paging.Forward(7, after), "score", false))
				Expect(err).ToNot(HaveOccurred())
				seen = append(seen, conn.Nodes...)
				if !conn.PageInfo.HasNextPage {
					break
				}
				after = *conn.PageInfo.EndCursor
			}

			Expect(seen).To(HaveLen(30))
			Expect(slices.IsSortedFunc(seen, func(a, b *doc) int {
				c, _ := paging.CompareValues(a.Score, b.Score)
				if c == 0 {
					return a.ID - b.ID
				}
				return c
			})).To(BeTrue(), fmt.Sprintf("not ordered by %s", byScore.Field))
		})
	})

	It("should not shift the next page when documents are inserted before it", func() {
		store := newStore(docs...)
		paginator = cursor.New[*doc](store, schema, newest)

		conn, err := paginator.Paginate(ctx, nil, paging.Forward(2, ""))
		Expect(err).ToNot(HaveOccurred())

		store.Insert(&doc{ID: 5, CreatedAt: "E"})

		next, err := paginator.Paginate(ctx, nil, paging.Forward(2, *conn.PageInfo.EndCursor))
		Expect(err).ToNot(HaveOccurred())
		Expect(ids(next.Edges)).To(Equal([]int{3, 4}))
	})

	Describe("queries", func() {
		It("should over-fetch by one and skip the probe on the first page", func() {
			conn, err := paginator.Paginate(ctx, nil, paging.Forward(2, ""))
			Expect(err).ToNot(HaveOccurred())
			Expect(fetcher.queries()).To(Equal(1))
			Expect(fetcher.last[0].Limit).To(Equal(3))
			Expect(fetcher.last[0].Scan).To(Equal(paging.ScanForward))
			Expect(conn.Metadata.QueriesIssued).To(Equal(1))
			Expect(conn.Metadata.ItemsExamined).To(Equal(3))
			Expect(conn.Metadata.Strategy).To(Equal("cursor"))
		})

		It("should issue at most one probe", func() {
			conn, err := paginator.Paginate(ctx, nil, paging.Backward(1, cursorOf(newest, 3)))
			Expect(err).ToNot(HaveOccurred())
			Expect(ids(conn.Edges)).To(Equal([]int{2}))
			Expect(fetcher.fetches.Load()).To(BeEquivalentTo(1))
			Expect(fetcher.probes.Load()).To(BeEquivalentTo(1))
			Expect(fetcher.last[0].Scan).To(Equal(paging.ScanReverse))
			Expect(conn.Metadata.QueriesIssued).To(Equal(2))
		})

		It("should be safe for concurrent use", func() {
			paginator = cursor.New[*doc](newStore(docs...), schema, newest)

			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					conn, err := paginator.Paginate(ctx, nil, paging.Forward(2, ""))
					Expect(err).ToNot(HaveOccurred())
					Expect(ids(conn.Edges)).To(Equal([]int{1, 2}))
				}()
			}
			wg.Wait()
		})
	})

	Describe("GetEdges and GetPageInfo", func() {
		It("should split a page into edges and page info", func() {
			edges, err := paginator.GetEdges(ctx, nil, paging.Forward(2, ""))
			Expect(err).ToNot(HaveOccurred())
			Expect(edges.Len()).To(Equal(2))
			Expect(edges.Page()).To(Equal(paging.ForwardPage{First: 2}))
			Expect(ids(edges.All())).To(Equal([]int{1, 2}))

			pageInfo, err := paginator.GetPageInfo(ctx, edges)
			Expect(err).ToNot(HaveOccurred())
			Expect(pageInfo.HasNextPage).To(BeTrue())
			Expect(*pageInfo.EndCursor).To(Equal(edges.All()[1].Cursor))
		})

		It("should reject missing edges", func() {
			_, err := paginator.GetPageInfo(ctx, nil)
			Expect(err).To(MatchError(paging.ErrInvalidArgument))
		})
	})

	Describe("page sizes", func() {
		It("should use the configured default size", func() {
			paginator = cursor.New[*doc](fetcher, schema, newest,
				cursor.WithPaginateOptions(paging.WithDefaultSize(3)))

			conn, err := paginator.Paginate(ctx, nil, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(conn.Edges).To(HaveLen(3))
		})

		It("should reject pages above the maximum before querying", func() {
			paginator = cursor.New[*doc](fetcher, schema, newest,
				cursor.WithPageConfig(paging.NewPageConfig().WithMaxSize(3)))

			_, err := paginator.Paginate(ctx, nil, paging.Forward(4, ""))
			var sizeErr *paging.PageSizeError
			Expect(errors.As(err, &sizeErr)).To(BeTrue())
			Expect(fetcher.queries()).To(BeZero())
		})
	})

	Describe("errors", func() {
		It("should reject malformed cursors", func() {
			_, err := paginator.Paginate(ctx, nil, paging.Forward(2, "not a cursor"))
			Expect(err).To(MatchError(paging.ErrInvalidCursor))
			Expect(fetcher.queries()).To(BeZero())
		})

		It("should reject cursors issued for another sort field", func() {
			_, err := paginator.Paginate(ctx, nil, paging.Forward(2, cursorOf(paging.Sort{Field: "score"}, 2)))
			Expect(err).To(MatchError(paging.ErrInvalidCursor))
		})

		It("should reject a well-formed cursor carrying a value of the wrong kind", func() {
			forged, err := cursor.Codec{}.Encode("c", paging.CursorPosition{SortValue: 5, ID: 1})
			Expect(err).ToNot(HaveOccurred())

			_, err = paginator.Paginate(ctx, nil, paging.Forward(2, forged))
			Expect(err).To(MatchError(paging.ErrInvalidCursor))
			Expect(errors.Is(err, paging.ErrStoreUnavailable)).To(BeFalse())
			Expect(paging.IsClientError(err)).To(BeTrue())
			Expect(fetcher.queries()).To(BeZero())
		})

		It("should reject unknown sort fields", func() {
			_, err := paginator.Paginate(ctx, nil, paging.WithSort(paging.Forward(2, ""), "password", false))
			Expect(err).To(MatchError(paging.ErrInvalidArgument))
		})

		It("should reject contradictory args", func() {
			_, err := paginator.Paginate(ctx, nil, &paging.QueryArgs{First: ptr(1), Last: ptr(1)})
			Expect(err).To(MatchError(paging.ErrInvalidArgument))
		})

		It("should report store failures", func() {
			cause := errors.New("connection reset")
			fetcher.err = cause

			_, err := paginator.Paginate(ctx, nil, paging.Forward(2, ""))
			Expect(err).To(MatchError(paging.ErrStoreUnavailable))
			Expect(errors.Is(err, cause)).To(BeTrue())
		})

		It("should report probe failures without a partial page", func() {
			fetcher.probeErr = errors.New("timeout")

			conn, err := paginator.Paginate(ctx, nil, paging.Forward(2, cursorOf(newest, 1)))
			Expect(err).To(MatchError(paging.ErrStoreUnavailable))
			Expect(conn).To(BeNil())
		})

		It("should pass client errors from the store through", func() {
			fetcher.err = &paging.InvalidArgumentError{Field: "authorProfileId", Reason: "not a valid object id"}

			_, err := paginator.Paginate(ctx, nil, paging.Forward(2, ""))
			Expect(err).To(MatchError(paging.ErrInvalidArgument))
			Expect(errors.Is(err, paging.ErrStoreUnavailable)).To(BeFalse())
		})

		It("should stop on a canceled context", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := paginator.Paginate(canceled, nil, paging.Forward(2, ""))
			Expect(err).To(MatchError(paging.ErrCanceled))
			Expect(fetcher.queries()).To(BeZero())
		})

		It("should report a store deadline as a cancellation", func() {
			fetcher.err = context.DeadlineExceeded

			_, err := paginator.Paginate(ctx, nil, paging.Forward(2, ""))
			Expect(err).To(MatchError(paging.ErrCanceled))
			Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		})
	})

	It("should log each connection at debug level", func() {
		logger, hook := test.NewNullLogger()
		logger.SetLevel(logrus.DebugLevel)
		paginator = cursor.New[*doc](fetcher, schema, newest,
			cursor.WithLogger(logger),
			cursor.WithName("docs"),
		)

		_, err := paginator.Paginate(ctx, nil, paging.Backward(2, ""))
		Expect(err).ToNot(HaveOccurred())

		entry := hook.LastEntry()
		Expect(entry).ToNot(BeNil())
		Expect(entry.Level).To(Equal(logrus.DebugLevel))
		Expect(entry.Message).To(Equal("paginated connection"))
		Expect(entry.Data).To(HaveKeyWithValue("collection", "docs"))
		Expect(entry.Data).To(HaveKeyWithValue("direction", "reverse"))
	})
})

func ptr[T any](v T) *T { return &v }
