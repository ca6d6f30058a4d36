package mongostore_test

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/samber/lo"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nrfta/keyset-paging"
	"github.com/nrfta/keyset-paging/cursor"
	"github.com/nrfta/keyset-paging/mongostore"
)

type note struct {
	ID        primitive.ObjectID `bson:"_id"`
	Author    string             `bson:"author"`
	Hidden    bool               `bson:"hidden,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

var _ = Describe("MongoDB integration", Ordered, Label("integration"), func() {
	var (
		ctx       context.Context
		coll      *mongo.Collection
		paginator *cursor.Paginator[*note]
		seeded    []*note
	)

	BeforeAll(func() {
		ctx = context.Background()

		container, err := mongodb.Run(ctx, "mongo:7")
		if err != nil {
			Skip("container runtime unavailable: " + err.Error())
		}
		DeferCleanup(func(ctx SpecContext) {
			Expect(container.Terminate(ctx)).To(Succeed())
		})

		uri, err := container.ConnectionString(ctx)
		Expect(err).ToNot(HaveOccurred())

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		Expect(err).ToNot(HaveOccurred())
		DeferCleanup(func(ctx SpecContext) {
			Expect(client.Disconnect(ctx)).To(Succeed())
		})

		coll = client.Database("paging").Collection("notes")

		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		docs := make([]interface{}, 0, 20)
		for i := 0; i < 20; i++ {
			n := &note{
				ID:        primitive.NewObjectID(),
				Author:    fmt.Sprintf("author-%d", i%3),
				Hidden:    i%4 == 0,
				CreatedAt: base.Add(time.Duration(i/2) * time.Hour),
			}
			seeded = append(seeded, n)
			docs = append(docs, n)
		}
		_, err = coll.InsertMany(ctx, docs)
		Expect(err).ToNot(HaveOccurred())

		schema := cursor.NewSchema[*note]().
			Field("createdAt", "c", cursor.KindTime, func(n *note) any { return n.CreatedAt }).
			ID("_id", cursor.ASC, "i", cursor.KindString, func(n *note) any { return n.ID.Hex() })

		fetcher := mongostore.NewFetcher[*note](coll, mongostore.WithObjectIDFields("_id"))
		paginator = cursor.New[*note](fetcher, schema, paging.Sort{Field: "createdAt", Desc: true})
	})

	visible := paging.NotTrue{Field: "hidden"}

	It("should walk the collection forward in createdAt DESC, _id ASC order", func() {
		expected := lo.Filter(seeded, func(n *note, _ int) bool { return !n.Hidden })
		sortNotes(expected)

		var got []string
		after := ""
		for pages := 0; ; pages++ {
			Expect(pages).To(BeNumerically("<", 10))

			conn, err := paginator.Paginate(ctx, visible, paging.Forward(3, after))
			Expect(err).ToNot(HaveOccurred())
			Expect(conn.Metadata.QueriesIssued).To(BeNumerically("<=", 2))

			got = append(got, lo.Map(conn.Nodes, func(n *note, _ int) string { return n.ID.Hex() })...)
			if !conn.PageInfo.HasNextPage {
				break
			}
			after = *conn.PageInfo.EndCursor
		}

		Expect(got).To(Equal(lo.Map(expected, func(n *note, _ int) string { return n.ID.Hex() })))
	})

	It("should report both neighbours from the middle of the collection", func() {
		first, err := paginator.Paginate(ctx, visible, paging.Forward(4, ""))
		Expect(err).ToNot(HaveOccurred())

		middle, err := paginator.Paginate(ctx, visible, paging.Forward(4, *first.PageInfo.EndCursor))
		Expect(err).ToNot(HaveOccurred())
		Expect(middle.PageInfo.HasPreviousPage).To(BeTrue())
		Expect(middle.PageInfo.HasNextPage).To(BeTrue())

		back, err := paginator.Paginate(ctx, visible, paging.Backward(4, *middle.PageInfo.StartCursor))
		Expect(err).ToNot(HaveOccurred())
		Expect(back.Nodes).To(Equal(first.Nodes))
		Expect(back.PageInfo.HasPreviousPage).To(BeFalse())
		Expect(back.PageInfo.HasNextPage).To(BeTrue())
	})

	It("should keep every edge within the author filter", func() {
		filter := paging.Eq{Field: "author", Value: "author-1"}

		conn, err := paginator.Paginate(ctx, filter, paging.Forward(10, ""))
		Expect(err).ToNot(HaveOccurred())
		for _, n := range conn.Nodes {
			Expect(n.Author).To(Equal("author-1"))
		}
	})
})

// sortNotes orders notes by createdAt DESC, _id ASC.
func sortNotes(notes []*note) {
	slices.SortFunc(notes, func(a, b *note) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.Hex(), b.ID.Hex())
	})
}
