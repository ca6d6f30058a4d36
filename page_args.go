package paging

const (
	// DefaultPageSize is the default number of items per page when neither
	// first nor last is specified.
	DefaultPageSize = 50

	// DefaultMaxPageSize is the default maximum page size allowed.
	// This protects against resource exhaustion from unreasonably large page requests.
	DefaultMaxPageSize = 1000
)

// PageConfig holds pagination configuration options.
// Use NewPageConfig() to create a config with sensible defaults,
// then customize using the With* methods.
//
// Example:
//
//	config := paging.NewPageConfig().WithMaxSize(500)
//	page, err := args.PageWith(config)
type PageConfig struct {
	// DefaultSize is the page size used when neither First nor Last is set.
	DefaultSize int

	// MaxSize is the maximum allowed page size. Requests exceeding this
	// are rejected with a *PageSizeError.
	MaxSize int
}

// NewPageConfig creates a PageConfig with sensible defaults:
// - DefaultSize: 50
// - MaxSize: 1000
func NewPageConfig() *PageConfig {
	return &PageConfig{
		DefaultSize: DefaultPageSize,
		MaxSize:     DefaultMaxPageSize,
	}
}

// WithDefaultSize sets the default page size and returns the config for chaining.
func (c *PageConfig) WithDefaultSize(size int) *PageConfig {
	if size > 0 {
		c.DefaultSize = size
	}
	return c
}

// WithMaxSize sets the maximum page size and returns the config for chaining.
func (c *PageConfig) WithMaxSize(size int) *PageConfig {
	if size > 0 {
		c.MaxSize = size
	}
	return c
}

func (c *PageConfig) sizes() (defaultSize, maxSize int) {
	defaultSize, maxSize = DefaultPageSize, DefaultMaxPageSize
	if c == nil {
		return
	}
	if c.DefaultSize > 0 {
		defaultSize = c.DefaultSize
	}
	if c.MaxSize > 0 {
		maxSize = c.MaxSize
	}
	if defaultSize > maxSize {
		defaultSize = maxSize
	}
	return
}

// QueryArgs represents connection-style paging arguments as received from a
// client. It follows the Relay cursor pagination specification.
//
// QueryArgs is loosely typed on purpose; call Page to validate it and obtain
// the ForwardPage or BackwardPage it describes.
type QueryArgs struct {
	First  *int    `json:"first,omitempty"`
	Last   *int    `json:"last,omitempty"`
	After  *string `json:"after,omitempty"`
	Before *string `json:"before,omitempty"`

	// Sort overrides the collection's default sort. Nil uses the default.
	Sort *Sort `json:"sort,omitempty"`
}

// WithSort configures the sort field and direction for pagination.
// It modifies the QueryArgs and returns it for method chaining.
// If qa is nil, a new QueryArgs is created.
//
// Example:
//
//	args := paging.WithSort(nil, "createdAt", true)
//	// Sorts by createdAt DESC, ties broken by the collection's id field
func WithSort(qa *QueryArgs, field string, desc bool) *QueryArgs {
	if qa == nil {
		qa = &QueryArgs{}
	}

	qa.Sort = &Sort{Field: field, Desc: desc}
	return qa
}

// Forward returns QueryArgs for the first n items after cursor.
// An empty cursor starts from the beginning of the connection.
func Forward(n int, after string) *QueryArgs {
	qa := &QueryArgs{First: &n}
	if after != "" {
		qa.After = &after
	}
	return qa
}

// Backward returns QueryArgs for the last n items before cursor.
// An empty cursor starts from the end of the connection.
func Backward(n int, before string) *QueryArgs {
	qa := &QueryArgs{Last: &n}
	if before != "" {
		qa.Before = &before
	}
	return qa
}

// Page is the validated form of QueryArgs: exactly one of ForwardPage or
// BackwardPage. It is constructed once at the paginator boundary so that no
// downstream component has to re-derive the paging direction.
type Page interface {
	// Size is the requested number of edges.
	Size() int

	// Scan is the direction the store is walked in.
	Scan() ScanDirection

	// Near is the cursor the scan starts beyond, or nil.
	Near() *string

	// Far is the cursor bounding the other end of the window, or nil.
	Far() *string

	page()
}

// ForwardPage selects the first First edges strictly after After
// (and strictly before Before, when set).
type ForwardPage struct {
	After  *string
	Before *string
	First  int
}

// BackwardPage selects the last Last edges strictly before Before
// (and strictly after After, when set).
type BackwardPage struct {
	Before *string
	After  *string
	Last   int
}

func (p ForwardPage) Size() int           { return p.First }
func (p ForwardPage) Scan() ScanDirection { return ScanForward }
func (p ForwardPage) Near() *string       { return p.After }
func (p ForwardPage) Far() *string        { return p.Before }
func (ForwardPage) page()                 {}

func (p BackwardPage) Size() int           { return p.Last }
func (p BackwardPage) Scan() ScanDirection { return ScanReverse }
func (p BackwardPage) Near() *string       { return p.Before }
func (p BackwardPage) Far() *string        { return p.After }
func (BackwardPage) page()                 {}

// Page validates the QueryArgs using the default PageConfig.
func (qa *QueryArgs) Page() (Page, error) {
	return qa.PageWith(nil)
}

// PageWith validates the QueryArgs against config and returns the page it
// describes. It rejects:
//   - first and last supplied together
//   - negative first or last
//   - sizes above config.MaxSize (*PageSizeError)
//   - first with only a before cursor, or last with only an after cursor
//
// Empty cursor strings are treated as absent.
func (qa *QueryArgs) PageWith(config *PageConfig) (Page, error) {
	defaultSize, maxSize := config.sizes()

	if qa == nil {
		return ForwardPage{First: defaultSize}, nil
	}

	after, before := nonEmpty(qa.After), nonEmpty(qa.Before)

	if qa.First != nil && qa.Last != nil {
		return nil, &InvalidArgumentError{Field: "first", Reason: "first and last are mutually exclusive"}
	}

	if err := checkSize("first", qa.First, maxSize); err != nil {
		return nil, err
	}
	if err := checkSize("last", qa.Last, maxSize); err != nil {
		return nil, err
	}

	switch {
	case qa.Last != nil:
		if after != nil && before == nil {
			return nil, &InvalidArgumentError{Field: "after", Reason: "after requires first, or a before cursor when paging with last"}
		}
		return BackwardPage{Before: before, After: after, Last: *qa.Last}, nil

	case qa.First != nil:
		if before != nil && after == nil {
			return nil, &InvalidArgumentError{Field: "before", Reason: "before requires last, or an after cursor when paging with first"}
		}
		return ForwardPage{After: after, Before: before, First: *qa.First}, nil

	case before != nil && after == nil:
		return BackwardPage{Before: before, Last: defaultSize}, nil
	}

	return ForwardPage{After: after, Before: before, First: defaultSize}, nil
}

// Validate validates the QueryArgs using DefaultMaxPageSize (1000).
func (qa *QueryArgs) Validate() error {
	_, err := qa.PageWith(nil)
	return err
}

// ValidateWith validates the QueryArgs using a custom PageConfig.
//
// Example:
//
//	config := paging.NewPageConfig().WithMaxSize(100)
//	if err := args.ValidateWith(config); err != nil {
//	    return nil, err // Page size too large, or contradictory arguments
//	}
func (qa *QueryArgs) ValidateWith(config *PageConfig) error {
	_, err := qa.PageWith(config)
	return err
}

func checkSize(field string, size *int, maxSize int) error {
	if size == nil {
		return nil
	}
	if *size < 0 {
		return &InvalidArgumentError{Field: field, Reason: "must not be negative"}
	}
	if *size > maxSize {
		return &PageSizeError{Requested: *size, Maximum: maxSize}
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// PaginateOption configures page size limits for a paginator.
//
// Example:
//
//	paginator := cursor.New(fetcher, schema, defaultSort,
//	    cursor.WithPaginateOptions(paging.WithMaxSize(100), paging.WithDefaultSize(25)),
//	)
type PaginateOption func(*paginateConfig)

// paginateConfig holds page size configuration.
type paginateConfig struct {
	maxSize     int
	defaultSize int
}

// WithMaxSize sets the maximum page size.
// Requests above it fail with a *PageSizeError.
func WithMaxSize(size int) PaginateOption {
	return func(c *paginateConfig) {
		if size > 0 {
			c.maxSize = size
		}
	}
}

// WithDefaultSize sets the default page size.
// Used when neither first nor last is supplied.
func WithDefaultSize(size int) PaginateOption {
	return func(c *paginateConfig) {
		if size > 0 {
			c.defaultSize = size
		}
	}
}

// ApplyPaginateOptions applies functional options and returns a PageConfig.
func ApplyPaginateOptions(opts ...PaginateOption) *PageConfig {
	cfg := &paginateConfig{
		maxSize:     DefaultMaxPageSize,
		defaultSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &PageConfig{
		MaxSize:     cfg.maxSize,
		DefaultSize: cfg.defaultSize,
	}
}
