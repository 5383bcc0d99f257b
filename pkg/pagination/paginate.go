package pagination

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultPageSizeParam is the query parameter carrying the page size hint.
	DefaultPageSizeParam = "maxResults"

	// DefaultMaxPageSize is the documented page cap of most listing endpoints.
	DefaultMaxPageSize = 50
)

// Option configures Paginate and Chunked.
type Option func(*settings)

type settings struct {
	limit       int
	hasLimit    bool
	sizeParam   string
	maxPageSize int
}

// WithLimit caps the number of elements the sequence yields. Zero yields an
// empty sequence without any request; a negative limit is rejected with
// ErrLimitViolation.
func WithLimit(n int) Option {
	return func(s *settings) {
		s.limit = n
		s.hasLimit = true
	}
}

// WithOptionalLimit applies WithLimit when n is non-nil.
func WithOptionalLimit(n *int) Option {
	return func(s *settings) {
		if n != nil {
			s.limit = *n
			s.hasLimit = true
		}
	}
}

// WithoutLimit removes a limit set by an earlier option.
func WithoutLimit() Option {
	return func(s *settings) {
		s.limit = 0
		s.hasLimit = false
	}
}

// WithPageSize sends param on every page request with a value of at most max.
// When a limit is set the value shrinks to the number of elements still
// wanted, so the last page is not over-fetched.
func WithPageSize(param string, max int) Option {
	return func(s *settings) {
		s.sizeParam = param
		s.maxPageSize = max
	}
}

func buildSettings(opts []Option) (settings, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.hasLimit && s.limit < 0 {
		return s, fmt.Errorf("%w: limit must be >= 0 (got %d)", ErrLimitViolation, s.limit)
	}
	if s.sizeParam != "" && s.maxPageSize <= 0 {
		return s, fmt.Errorf("%w: page size must be > 0 (got %d)", ErrLimitViolation, s.maxPageSize)
	}
	return s, nil
}

// Paginate returns a lazy sequence over every item of a listing endpoint.
// No request is made until the first element is asked for.
func Paginate(fetcher PageFetcher, endpoint string, params Params, opts ...Option) (*Sequence[RawItem], error) {
	if fetcher == nil {
		return nil, fmt.Errorf("page fetcher is required")
	}
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	s, err := buildSettings(opts)
	if err != nil {
		return nil, err
	}

	c := newCursor(fetcher, endpoint, params, s)
	return newSequence(c.next), nil
}

// cursor is the page-crossing state behind a paginated sequence.
// Invariant: index <= len(page.Items); once exhausted no fetch happens.
type cursor struct {
	fetcher  PageFetcher
	endpoint string
	params   Params
	settings

	page      *Page
	index     int
	nextToken string
	started   bool
	exhausted bool
	yielded   int
}

func newCursor(fetcher PageFetcher, endpoint string, params Params, s settings) *cursor {
	return &cursor{
		fetcher:  fetcher,
		endpoint: endpoint,
		params:   params,
		settings: s,
	}
}

func (c *cursor) next(ctx context.Context) (RawItem, error) {
	for {
		if c.exhausted {
			return nil, Done
		}
		if c.hasLimit && c.yielded >= c.limit {
			c.finish("limit")
			return nil, Done
		}

		if c.page != nil && c.index < len(c.page.Items) {
			item := c.page.Items[c.index]
			c.index++
			c.yielded++
			itemsYielded.WithLabelValues(c.endpoint).Inc()
			if c.hasLimit && c.yielded >= c.limit {
				// Unread items of the current page are dropped here.
				c.finish("limit")
			}
			return item, nil
		}

		if c.started && c.nextToken == "" {
			c.finish("last_page")
			return nil, Done
		}

		if err := c.fetch(ctx); err != nil {
			c.exhausted = true
			return nil, err
		}
	}
}

func (c *cursor) fetch(ctx context.Context) error {
	params := c.params
	if c.sizeParam != "" {
		size := c.maxPageSize
		if c.hasLimit && c.limit-c.yielded < size {
			size = c.limit - c.yielded
		}
		params = params.With(c.sizeParam, size)
	}

	token := c.nextToken
	page, err := c.fetcher.FetchPage(ctx, c.endpoint, params, token)
	if err != nil {
		log.Debug().
			Err(err).
			Str("endpoint", c.endpoint).
			Int("yielded", c.yielded).
			Msg("Page fetch failed")
		return err
	}
	if page == nil {
		page = &Page{}
	}
	if token != "" && page.NextPageToken == token {
		return fmt.Errorf("%w: %s returned token %q again", ErrRepeatedPageToken, c.endpoint, token)
	}

	pagesFetched.WithLabelValues(c.endpoint).Inc()
	log.Debug().
		Str("endpoint", c.endpoint).
		Bool("first_page", token == "").
		Int("items", len(page.Items)).
		Bool("has_next", page.HasNext()).
		Msg("Fetched page")

	c.started = true
	c.page = page
	c.index = 0
	c.nextToken = page.NextPageToken
	return nil
}

func (c *cursor) finish(reason string) {
	if c.exhausted {
		return
	}
	c.exhausted = true
	sequencesFinished.WithLabelValues(c.endpoint, reason).Inc()
	log.Debug().
		Str("endpoint", c.endpoint).
		Str("reason", reason).
		Int("yielded", c.yielded).
		Msg("Sequence finished")
}
