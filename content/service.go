package content

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nrfta/keyset-paging"
	"github.com/nrfta/keyset-paging/cursor"
	"github.com/nrfta/keyset-paging/mongostore"
	"github.com/nrfta/keyset-paging/quotafill"
)

// ContentArgs are the connection arguments of post and reply fields.
type ContentArgs struct {
	paging.QueryArgs
	OrderBy ContentOrderBy `json:"orderBy,omitempty"`
}

// PostsArgs filter the public posts feed.
type PostsArgs struct {
	ContentArgs

	// FollowedBy limits the feed to posts by the profiles this username
	// follows, plus the user's own posts.
	FollowedBy string `json:"followedBy,omitempty"`

	// IncludeBlocked set to false drops blocked posts. Nil includes them.
	IncludeBlocked *bool `json:"includeBlocked,omitempty"`
}

// RepliesArgs select replies written by (From) or addressed to (To) a
// username. Exactly one must be set.
type RepliesArgs struct {
	ContentArgs
	To   string `json:"to,omitempty"`
	From string `json:"from,omitempty"`
}

// ProfileArgs are the connection arguments of profile fields.
type ProfileArgs struct {
	paging.QueryArgs
	OrderBy ProfileOrderBy `json:"orderBy,omitempty"`
}

// Stores are the collection fetchers a Service reads from.
type Stores struct {
	Posts    paging.Fetcher[*Post]
	Replies  paging.Fetcher[*Reply]
	Profiles paging.Fetcher[*Profile]

	// Directory resolves usernames. Defaults to NewDirectory(Profiles).
	Directory ProfileDirectory
}

// Service pages the content collections. It is safe for concurrent use.
type Service struct {
	posts     *cursor.Paginator[*Post]
	replies   *cursor.Paginator[*Reply]
	profiles  *cursor.Paginator[*Profile]
	directory ProfileDirectory
}

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	config            *paging.PageConfig
	logger            logrus.FieldLogger
	postVisibility    paging.FilterFunc[*Post]
	replyVisibility   paging.FilterFunc[*Reply]
	quotaFillSettings []quotafill.Option
}

// WithPageConfig sets the default and maximum page sizes of every collection.
func WithPageConfig(config *paging.PageConfig) Option {
	return func(o *serviceOptions) {
		o.config = config
	}
}

// WithLogger sets the logger passed to the paginators.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// WithPostVisibility filters posts in process, e.g. by the viewer's block
// list. Pages stay full through quota-fill fetching.
func WithPostVisibility(filter paging.FilterFunc[*Post]) Option {
	return func(o *serviceOptions) {
		o.postVisibility = filter
	}
}

// WithReplyVisibility filters replies in process.
func WithReplyVisibility(filter paging.FilterFunc[*Reply]) Option {
	return func(o *serviceOptions) {
		o.replyVisibility = filter
	}
}

// WithQuotaFillOptions configures the safeguards of visibility filtering.
func WithQuotaFillOptions(opts ...quotafill.Option) Option {
	return func(o *serviceOptions) {
		o.quotaFillSettings = append(o.quotaFillSettings, opts...)
	}
}

// NewService creates a Service over stores.
func NewService(stores Stores, opts ...Option) *Service {
	o := &serviceOptions{config: paging.NewPageConfig()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.logger = l
	}

	posts := stores.Posts
	if o.postVisibility != nil {
		posts = quotafill.Wrap(posts, o.postVisibility, postSchema,
			append([]quotafill.Option{quotafill.WithLogger(o.logger)}, o.quotaFillSettings...)...)
	}

	replies := stores.Replies
	if o.replyVisibility != nil {
		replies = quotafill.Wrap(replies, o.replyVisibility, replySchema,
			append([]quotafill.Option{quotafill.WithLogger(o.logger)}, o.quotaFillSettings...)...)
	}

	directory := stores.Directory
	if directory == nil {
		directory = NewDirectory(stores.Profiles)
	}

	common := func(name string) []cursor.Option {
		return []cursor.Option{
			cursor.WithName(name),
			cursor.WithLogger(o.logger),
			cursor.WithPageConfig(o.config),
		}
	}

	return &Service{
		posts:     cursor.New(posts, postSchema, defaultContentSort, common("posts")...),
		replies:   cursor.New(replies, replySchema, defaultContentSort, common("replies")...),
		profiles:  cursor.New(stores.Profiles, profileSchema, defaultProfileSort, common("profiles")...),
		directory: directory,
	}
}

// NewMongoService creates a Service over the posts, replies and profiles
// collections of db.
func NewMongoService(db *mongo.Database, opts ...Option) *Service {
	// fullName is optional in stored profiles; it pages as "" like it decodes.
	profiles := mongostore.NewFetcher[*Profile](db.Collection("profiles"),
		mongostore.WithObjectIDFields(FieldID),
		mongostore.WithFieldDefault(FieldFullName, ""),
	)

	return NewService(Stores{
		Posts: mongostore.NewFetcher[*Post](db.Collection("posts"),
			mongostore.WithObjectIDFields(FieldID, FieldAuthorProfileID),
		),
		Replies: mongostore.NewFetcher[*Reply](db.Collection("replies"),
			mongostore.WithObjectIDFields(FieldID, FieldAuthorProfileID, FieldPostAuthorProfileID, FieldPostID),
		),
		Profiles:  profiles,
		Directory: NewDirectory(profiles),
	}, opts...)
}

// Posts pages the posts feed.
//
// Errors:
//   - paging.ErrInvalidArgument: unknown orderBy or followedBy username
//   - anything Paginate returns
func (s *Service) Posts(ctx context.Context, args PostsArgs) (*paging.Connection[*Post], error) {
	var filters []paging.Predicate

	if args.FollowedBy != "" {
		profile, err := s.directory.ProfileByUsername(ctx, args.FollowedBy)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			return nil, &paging.InvalidArgumentError{Field: "followedBy", Reason: "user with that username cannot be found"}
		}
		authors := append(hexIDs(profile.Following), profile.ID.Hex())
		filters = append(filters, PostsByAuthors(authors...))
	}

	if args.IncludeBlocked != nil && !*args.IncludeBlocked {
		filters = append(filters, PostsNotBlocked())
	}

	return paginate(ctx, s.posts, paging.Conjoin(filters...), args.ContentArgs)
}

// OwnPosts pages the posts written by a profile.
func (s *Service) OwnPosts(ctx context.Context, authorProfileID string, args ContentArgs) (*paging.Connection[*Post], error) {
	if err := checkID("authorProfileId", authorProfileID); err != nil {
		return nil, err
	}
	return paginate(ctx, s.posts, PostsByAuthor(authorProfileID), args)
}

// Replies pages the replies written by or addressed to a username.
//
// Errors:
//   - paging.ErrInvalidArgument: neither or both of To and From, unknown
//     username, unknown orderBy
func (s *Service) Replies(ctx context.Context, args RepliesArgs) (*paging.Connection[*Reply], error) {
	switch {
	case args.To == "" && args.From == "":
		return nil, &paging.InvalidArgumentError{Field: "filter", Reason: "provide a username to get replies to or from"}
	case args.To != "" && args.From != "":
		return nil, &paging.InvalidArgumentError{Field: "filter", Reason: "provide only one of to or from"}
	}

	username := args.From
	if username == "" {
		username = args.To
	}

	profile, err := s.directory.ProfileByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, &paging.InvalidArgumentError{Field: "filter", Reason: "user with that username cannot be found"}
	}

	filter := RepliesToAuthor(profile.ID.Hex())
	if args.From != "" {
		filter = RepliesByAuthor(profile.ID.Hex())
	}

	return paginate(ctx, s.replies, filter, args.ContentArgs)
}

// OwnReplies pages the replies written by a profile.
func (s *Service) OwnReplies(ctx context.Context, authorProfileID string, args ContentArgs) (*paging.Connection[*Reply], error) {
	if err := checkID("authorProfileId", authorProfileID); err != nil {
		return nil, err
	}
	return paginate(ctx, s.replies, RepliesByAuthor(authorProfileID), args)
}

// PostReplies pages the replies to a post.
func (s *Service) PostReplies(ctx context.Context, postID string, args ContentArgs) (*paging.Connection[*Reply], error) {
	if err := checkID("postId", postID); err != nil {
		return nil, err
	}
	return paginate(ctx, s.replies, RepliesInPost(postID), args)
}

// FollowedProfiles pages the profiles a profile follows.
func (s *Service) FollowedProfiles(ctx context.Context, profileID string, args ProfileArgs) (*paging.Connection[*Profile], error) {
	profile, err := s.directory.ProfileByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, &paging.InvalidArgumentError{Field: "id", Reason: "profile cannot be found"}
	}

	sort, err := args.OrderBy.Sort()
	if err != nil {
		return nil, err
	}

	qa := args.QueryArgs
	qa.Sort = &sort
	return s.profiles.Paginate(ctx, ProfilesIn(hexIDs(profile.Following)...), &qa)
}

func paginate[T any](ctx context.Context, p *cursor.Paginator[T], filter paging.Predicate, args ContentArgs) (*paging.Connection[T], error) {
	sort, err := args.OrderBy.Sort()
	if err != nil {
		return nil, err
	}

	qa := args.QueryArgs
	qa.Sort = &sort
	return p.Paginate(ctx, filter, &qa)
}
