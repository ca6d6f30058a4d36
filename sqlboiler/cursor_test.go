package sqlboiler_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/keyset-paging"
	"github.com/nrfta/keyset-paging/cursor"
	"github.com/nrfta/keyset-paging/sqlboiler"
)

var _ = Describe("CursorToQueryMods", func() {
	var (
		order = paging.Order{
			Sort:    paging.Sort{Field: "created_at", Desc: true},
			IDField: "id",
		}
		at = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	)

	Describe("Basic Functionality", func() {
		It("should return empty mods for empty params", func() {
			mods, err := sqlboiler.CursorToQueryMods(paging.FetchParams{})

			Expect(err).ToNot(HaveOccurred())
			Expect(mods).To(BeEmpty())
		})

		It("should add LIMIT mod", func() {
			mods, err := sqlboiler.CursorToQueryMods(paging.FetchParams{Limit: 10})

			Expect(err).ToNot(HaveOccurred())
			Expect(mods).To(HaveLen(1))
			Expect(modTypeName(mods[0])).To(Equal("qm.limitQueryMod"))
		})

		It("should order by the sort field then the id", func() {
			mods, err := sqlboiler.CursorToQueryMods(paging.FetchParams{Order: order, Limit: 3})
			Expect(err).ToNot(HaveOccurred())

			sql, args := buildSQL(mods...)
			Expect(sql).To(ContainSubstring(`ORDER BY "created_at" DESC, "id"`))
			Expect(sql).To(ContainSubstring("LIMIT 3"))
			Expect(args).To(BeEmpty())
		})

		It("should reverse the whole order for a reverse scan", func() {
			mods, err := sqlboiler.CursorToQueryMods(paging.FetchParams{Order: order, Scan: paging.ScanReverse})
			Expect(err).ToNot(HaveOccurred())

			sql, _ := buildSQL(mods...)
			Expect(sql).To(ContainSubstring(`ORDER BY "created_at", "id" DESC`))
		})
	})

	Describe("WHERE clause", func() {
		It("should expand the keyset boundary with placeholders", func() {
			pos := &paging.CursorPosition{SortValue: at, ID: "post-3"}
			mods, err := sqlboiler.CursorToQueryMods(paging.FetchParams{
				Boundary: cursor.Boundary(order, pos, cursor.After),
				Order:    order,
				Limit:    3,
			})
			Expect(err).ToNot(HaveOccurred())

			sql, args := buildSQL(mods...)
			Expect(sql).To(ContainSubstring(`("created_at" < $1 OR ("created_at" = $2 AND "id" > $3))`))
			Expect(args).To(Equal([]interface{}{at, at, "post-3"}))
		})

		It("should AND the filter with the boundary", func() {
			pos := &paging.CursorPosition{SortValue: at, ID: "post-3"}
			mods, err := sqlboiler.CursorToQueryMods(paging.FetchParams{
				Filter:   paging.And{paging.Eq{Field: "author_id", Value: "a-1"}, paging.NotTrue{Field: "blocked"}},
				Boundary: cursor.Boundary(order, pos, cursor.After),
				Order:    order,
			})
			Expect(err).ToNot(HaveOccurred())

			sql, args := buildSQL(mods...)
			Expect(sql).To(ContainSubstring(`"author_id" = $1`))
			Expect(sql).To(ContainSubstring(`"blocked" IS NOT TRUE`))
			Expect(sql).To(ContainSubstring(`"created_at" < $2`))
			Expect(args).To(HaveLen(4))
			Expect(args[0]).To(Equal("a-1"))
		})

		It("should never interpolate values into the SQL text", func() {
			hostile := "x'); DROP TABLE posts; --"
			mods, err := sqlboiler.CursorToQueryMods(paging.FetchParams{
				Filter: paging.In{Field: "author_id", Values: []any{hostile, "a-2"}},
			})
			Expect(err).ToNot(HaveOccurred())

			sql, args := buildSQL(mods...)
			Expect(sql).ToNot(ContainSubstring("DROP TABLE"))
			Expect(sql).To(ContainSubstring(`"author_id" IN ($1, $2)`))
			Expect(args).To(ConsistOf(hostile, "a-2"))
		})

		It("should render empty Or and In as FALSE", func() {
			b := sqlboiler.QueryBuilder{LQ: '"', RQ: '"'}

			clause, args, err := b.Where(paging.Or{})
			Expect(err).ToNot(HaveOccurred())
			Expect(clause).To(Equal("FALSE"))
			Expect(args).To(BeEmpty())

			clause, _, err = b.Where(paging.In{Field: "id"})
			Expect(err).ToNot(HaveOccurred())
			Expect(clause).To(Equal("FALSE"))
		})

		It("should quote identifiers for the configured dialect", func() {
			b := sqlboiler.QueryBuilder{LQ: '`', RQ: '`'}

			clause, args, err := b.Where(paging.Cmp{Field: "posts.created_at", Op: paging.Gt, Value: at})
			Expect(err).ToNot(HaveOccurred())
			Expect(clause).To(Equal("`posts`.`created_at` > ?"))
			Expect(args).To(Equal([]interface{}{at}))
		})
	})
})
