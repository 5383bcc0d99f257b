package youtube

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/ytdata-client/pkg/logging"
	"github.com/Sternrassler/ytdata-client/pkg/pagination"
)

const (
	channelsEndpoint       = "/channels"
	videosEndpoint         = "/videos"
	playlistItemsEndpoint  = "/playlistItems"
	searchEndpoint         = "/search"
	commentThreadsEndpoint = "/commentThreads"

	// MaxCommentsPageSize is the page cap of commentThreads.list.
	MaxCommentsPageSize = 100

	// DefaultSearchLimit bounds SearchVideos unless the caller sets a limit.
	DefaultSearchLimit = 50
)

// Parts accepted by each endpoint. Requested parts outside the set are
// dropped before the request is sent.
const (
	channelParts  = PartID | PartContentDetails | PartSnippet | PartStatus | PartStatistics | PartLocalizations | PartTopicDetails
	videoParts    = PartID | AllPublicParts | PartFileDetails | PartProcessingDetails
	playlistParts = PartID | PartSnippet | PartStatus | PartContentDetails
	commentParts  = PartID | PartSnippet | PartReplies
)

var (
	// ErrNotFound is returned by single-resource lookups that matched nothing.
	ErrNotFound = errors.New("resource not found")

	// ErrNoParts is returned when none of the requested parts is supported
	// by the endpoint.
	ErrNoParts = errors.New("no supported part requested")
)

// Service is the YouTube Data API resource layer over a page fetcher.
type Service struct {
	fetcher pagination.PageFetcher
	logger  zerolog.Logger
}

// New creates a Service. fetcher is usually a *client.Client.
func New(fetcher pagination.PageFetcher) *Service {
	return &Service{
		fetcher: fetcher,
		logger:  logging.NewLogger("youtube"),
	}
}

// encodeRequest serializes a request struct with go-querystring.
func encodeRequest(req any) (pagination.Params, error) {
	values, err := query.Values(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return pagination.ParamsFromValues(values), nil
}

func restrictParts(endpoint string, requested, allowed Part) (Part, error) {
	parts := requested.Intersect(allowed)
	if parts == 0 {
		return 0, fmt.Errorf("%w: %s accepts %s (requested %s)", ErrNoParts, endpoint, allowed, requested)
	}
	return parts, nil
}

// list paginates endpoint and decodes each item. Caller options come after
// the endpoint's page size so they can override it.
func list[T any](s *Service, endpoint string, params pagination.Params, maxPageSize int, decode func(string, pagination.RawItem) (T, error), opts []pagination.Option) (*pagination.Sequence[T], error) {
	all := append([]pagination.Option{pagination.WithPageSize(pagination.DefaultPageSizeParam, maxPageSize)}, opts...)
	seq, err := pagination.Paginate(s.fetcher, endpoint, params, all...)
	if err != nil {
		return nil, err
	}
	return pagination.Map(seq, decoder(endpoint, decode)), nil
}

// batch looks up many ids in chunks of pagination.DefaultChunkSize.
func batch[T any](s *Service, endpoint string, params pagination.Params, ids []string, decode func(string, pagination.RawItem) (T, error), opts []pagination.Option) (*pagination.Sequence[T], error) {
	all := append([]pagination.Option{pagination.WithPageSize(pagination.DefaultPageSizeParam, pagination.DefaultMaxPageSize)}, opts...)
	seq, err := pagination.Chunked(s.fetcher, endpoint, params, "id", ids, pagination.DefaultChunkSize, all...)
	if err != nil {
		return nil, err
	}
	return pagination.Map(seq, decoder(endpoint, decode)), nil
}

// first takes one element, mapping an empty result to ErrNotFound.
func first[T any](ctx context.Context, seq *pagination.Sequence[T], err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	v, err := seq.First(ctx)
	if errors.Is(err, pagination.Done) {
		return zero, ErrNotFound
	}
	return v, err
}

// channels

type channelsRequest struct {
	Part        Part   `url:"part,omitempty"`
	Mine        bool   `url:"mine,omitempty"`
	ManagedByMe bool   `url:"managedByMe,omitempty"`
	ForHandle   string `url:"forHandle,omitempty"`
	ForUsername string `url:"forUsername,omitempty"`
}

func (s *Service) channelList(req channelsRequest, opts []pagination.Option) (*pagination.Sequence[*Channel], error) {
	parts, err := restrictParts(channelsEndpoint, req.Part, channelParts)
	if err != nil {
		return nil, err
	}
	req.Part = parts

	params, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}
	return list(s, channelsEndpoint, params, pagination.DefaultMaxPageSize, DecodeChannel, opts)
}

// MyChannel returns the channel of the authorized user.
func (s *Service) MyChannel(ctx context.Context, parts Part) (*Channel, error) {
	seq, err := s.channelList(channelsRequest{Part: parts, Mine: true}, []pagination.Option{pagination.WithLimit(1)})
	return first(ctx, seq, err)
}

// ManagedChannels lists the channels managed by the authorized content owner.
func (s *Service) ManagedChannels(parts Part, opts ...pagination.Option) (*pagination.Sequence[*Channel], error) {
	return s.channelList(channelsRequest{Part: parts, ManagedByMe: true}, opts)
}

// Channels looks up channels by id. Duplicate ids are requested once and
// ids are sent in batches of 50.
func (s *Service) Channels(ids []string, parts Part, opts ...pagination.Option) (*pagination.Sequence[*Channel], error) {
	parts, err := restrictParts(channelsEndpoint, parts, channelParts)
	if err != nil {
		return nil, err
	}
	params, err := encodeRequest(channelsRequest{Part: parts})
	if err != nil {
		return nil, err
	}
	return batch(s, channelsEndpoint, params, ids, DecodeChannel, opts)
}

// Channel looks up one channel by id.
func (s *Service) Channel(ctx context.Context, id string, parts Part) (*Channel, error) {
	seq, err := s.Channels([]string{id}, parts, pagination.WithLimit(1))
	return first(ctx, seq, err)
}

// ChannelByHandle looks up a channel by its @handle (with or without the @).
func (s *Service) ChannelByHandle(ctx context.Context, handle string, parts Part) (*Channel, error) {
	seq, err := s.channelList(channelsRequest{Part: parts, ForHandle: handle}, []pagination.Option{pagination.WithLimit(1)})
	return first(ctx, seq, err)
}

// ChannelByUsername looks up a channel by its legacy username.
func (s *Service) ChannelByUsername(ctx context.Context, username string, parts Part) (*Channel, error) {
	seq, err := s.channelList(channelsRequest{Part: parts, ForUsername: username}, []pagination.Option{pagination.WithLimit(1)})
	return first(ctx, seq, err)
}

var channelURL = regexp.MustCompile(`^(?:https?:)?//?(?:www\.|m\.)?youtube\.com/(?:c/(?P<username>[a-zA-Z0-9\-_]+)|@(?P<handle>[a-zA-Z0-9\-_.]+)|channel/(?P<id>UC[a-zA-Z0-9\-_]+))`)

// ChannelByURL resolves a channel page URL of the form /c/<name>,
// /@<handle> or /channel/<id>.
func (s *Service) ChannelByURL(ctx context.Context, rawURL string, parts Part) (*Channel, error) {
	m := channelURL.FindStringSubmatch(rawURL)
	if m == nil {
		return nil, fmt.Errorf("unrecognized channel URL format: %s", rawURL)
	}

	switch {
	case m[channelURL.SubexpIndex("username")] != "":
		return s.ChannelByUsername(ctx, m[channelURL.SubexpIndex("username")], parts)
	case m[channelURL.SubexpIndex("handle")] != "":
		return s.ChannelByHandle(ctx, m[channelURL.SubexpIndex("handle")], parts)
	default:
		return s.Channel(ctx, m[channelURL.SubexpIndex("id")], parts)
	}
}

// videos

// Videos looks up videos by id in batches of 50, preserving request order
// across batches.
func (s *Service) Videos(ids []string, parts Part, opts ...pagination.Option) (*pagination.Sequence[*Video], error) {
	parts, err := restrictParts(videosEndpoint, parts, videoParts)
	if err != nil {
		return nil, err
	}
	params, err := encodeRequest(struct {
		Part Part `url:"part"`
	}{parts})
	if err != nil {
		return nil, err
	}
	return batch(s, videosEndpoint, params, ids, DecodeVideo, opts)
}

// Video looks up one video by id.
func (s *Service) Video(ctx context.Context, id string, parts Part) (*Video, error) {
	seq, err := s.Videos([]string{id}, parts, pagination.WithLimit(1))
	return first(ctx, seq, err)
}

type playlistItemsRequest struct {
	Part       Part   `url:"part,omitempty"`
	PlaylistID string `url:"playlistId"`
}

// PlaylistVideos lists the videos of a playlist in playlist order.
func (s *Service) PlaylistVideos(playlistID string, parts Part, opts ...pagination.Option) (*pagination.Sequence[*Video], error) {
	if playlistID == "" {
		return nil, fmt.Errorf("playlist id is required")
	}
	parts, err := restrictParts(playlistItemsEndpoint, parts, playlistParts)
	if err != nil {
		return nil, err
	}
	params, err := encodeRequest(playlistItemsRequest{Part: parts, PlaylistID: playlistID})
	if err != nil {
		return nil, err
	}
	return list(s, playlistItemsEndpoint, params, pagination.DefaultMaxPageSize, DecodeVideo, opts)
}

// SearchQuery selects the videos returned by SearchVideos.
type SearchQuery struct {
	Query     string
	ChannelID string
	// After is inclusive; add a small offset to get strictly newer videos.
	After  time.Time
	Before time.Time
	// Mine searches the authorized user's own videos instead of ChannelID.
	Mine       bool
	Order      Order
	SafeSearch SafeSearch
}

type searchRequest struct {
	Part            Part       `url:"part"`
	Type            string     `url:"type"`
	Order           Order      `url:"order,omitempty"`
	SafeSearch      SafeSearch `url:"safeSearch,omitempty"`
	Q               string     `url:"q,omitempty"`
	ChannelID       string     `url:"channelId,omitempty"`
	ForMine         bool       `url:"forMine,omitempty"`
	PublishedAfter  string     `url:"publishedAfter,omitempty"`
	PublishedBefore string     `url:"publishedBefore,omitempty"`
}

// SearchVideos searches for videos. Without a caller limit at most
// DefaultSearchLimit results are returned; pass pagination.WithoutLimit to
// page through everything.
func (s *Service) SearchVideos(q SearchQuery, opts ...pagination.Option) (*pagination.Sequence[*Video], error) {
	req := searchRequest{
		Part:       PartSnippet,
		Type:       "video",
		Order:      q.Order,
		SafeSearch: q.SafeSearch,
		Q:          q.Query,
		ChannelID:  q.ChannelID,
		ForMine:    q.Mine,
	}
	if req.Order == "" {
		req.Order = OrderRelevance
	}
	if req.SafeSearch == "" {
		req.SafeSearch = SafeSearchModerate
	}
	if !q.After.IsZero() {
		req.PublishedAfter = pagination.FormatTime(q.After)
	}
	if !q.Before.IsZero() {
		req.PublishedBefore = pagination.FormatTime(q.Before)
	}

	params, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}
	all := append([]pagination.Option{pagination.WithLimit(DefaultSearchLimit)}, opts...)
	return list(s, searchEndpoint, params, pagination.DefaultMaxPageSize, DecodeVideo, all)
}

// CommentQuery selects the comment threads returned by Comments.
type CommentQuery struct {
	// Parts defaults to snippet and replies.
	Parts Part
	// Search keeps threads containing these terms.
	Search string
	// Order defaults to CommentOrderTime.
	Order CommentOrder
}

type commentThreadsRequest struct {
	Part        Part         `url:"part,omitempty"`
	VideoID     string       `url:"videoId"`
	Order       CommentOrder `url:"order,omitempty"`
	SearchTerms string       `url:"searchTerms,omitempty"`
}

// Comments lists the comment threads of a video.
func (s *Service) Comments(videoID string, q CommentQuery, opts ...pagination.Option) (*pagination.Sequence[*Comment], error) {
	if videoID == "" {
		return nil, fmt.Errorf("video id is required")
	}
	if q.Parts == 0 {
		q.Parts = PartSnippet | PartReplies
	}
	if q.Order == "" {
		q.Order = CommentOrderTime
	}
	parts, err := restrictParts(commentThreadsEndpoint, q.Parts, commentParts)
	if err != nil {
		return nil, err
	}
	params, err := encodeRequest(commentThreadsRequest{
		Part:        parts,
		VideoID:     videoID,
		Order:       q.Order,
		SearchTerms: q.Search,
	})
	if err != nil {
		return nil, err
	}
	return list(s, commentThreadsEndpoint, params, MaxCommentsPageSize, DecodeComment, opts)
}
