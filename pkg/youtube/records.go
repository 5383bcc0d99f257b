package youtube

import (
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/Sternrassler/ytdata-client/pkg/pagination"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Playlist is a reference to a playlist.
type Playlist struct {
	ID string `json:"id"`
}

// Link returns the playlist's watch page.
func (p Playlist) Link() string {
	return "https://www.youtube.com/playlist?list=" + p.ID
}

// Channel is a channel resource. Fields of parts that were not requested
// keep their zero value.
type Channel struct {
	ID string `json:"id"`

	// part: snippet
	DisplayName     string    `json:"displayName,omitempty"`
	Description     string    `json:"description,omitempty"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
	Handle          string    `json:"handle,omitempty"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`

	// part: contentDetails
	UploadsPlaylist *Playlist `json:"uploadsPlaylist,omitempty"`

	// part: statistics
	Statistics *ChannelStatistics `json:"statistics,omitempty"`

	// part: status
	Privacy PrivacyStatus `json:"privacy,omitempty"`

	// part: topicDetails
	TopicCategories []string `json:"topicCategories,omitempty"`
}

// ChannelStatistics are the public counters of a channel.
type ChannelStatistics struct {
	ViewCount int64 `json:"viewCount"`
	// SubscriberCount is nil when the owner hides it.
	SubscriberCount *int64 `json:"subscriberCount,omitempty"`
	VideoCount      int64  `json:"videoCount"`
}

// Link returns the channel page, preferring the handle URL.
func (c *Channel) Link() string {
	switch {
	case c.Handle == "":
		return "https://www.youtube.com/channel/" + c.ID
	case c.Handle[0] == '@':
		return "https://www.youtube.com/" + c.Handle
	default:
		return "https://www.youtube.com/c/" + c.Handle
	}
}

// Video is a video resource, or the video referenced by a search result or
// playlist item.
type Video struct {
	ID string `json:"id"`

	// part: snippet
	Title                string    `json:"title,omitempty"`
	Description          string    `json:"description,omitempty"`
	PublishedAt          time.Time `json:"publishedAt,omitempty"`
	ChannelID            string    `json:"channelId,omitempty"`
	ChannelName          string    `json:"channelName,omitempty"`
	Tags                 []string  `json:"tags,omitempty"`
	IsLivestream         bool      `json:"isLivestream,omitempty"`
	DefaultAudioLanguage string    `json:"defaultAudioLanguage,omitempty"`
	Thumbnails           []string  `json:"thumbnails,omitempty"`
	LocalizedTitle       string    `json:"localizedTitle,omitempty"`
	LocalizedDescription string    `json:"localizedDescription,omitempty"`

	// part: contentDetails
	Duration       time.Duration   `json:"duration,omitempty"`
	ContentDetails *ContentDetails `json:"contentDetails,omitempty"`

	// part: status
	Privacy PrivacyStatus  `json:"privacy,omitempty"`
	Status  *StatusDetails `json:"status,omitempty"`

	// part: statistics
	Statistics *VideoStatistics `json:"statistics,omitempty"`

	// part: player
	Player *Player `json:"player,omitempty"`

	// part: liveStreamingDetails
	Livestream *LivestreamDetails `json:"livestream,omitempty"`

	// part: topicDetails
	TopicCategories []string `json:"topicCategories,omitempty"`

	// part: localizations
	Localizations map[string]Localization `json:"localizations,omitempty"`

	// part: recordingDetails
	RecordedAt *time.Time `json:"recordedAt,omitempty"`

	// part: fileDetails
	File *FileDetails `json:"file,omitempty"`

	// part: processingDetails
	Processing *ProcessingDetails `json:"processing,omitempty"`
}

// ContentDetails describes the encoding and availability of a video.
type ContentDetails struct {
	Duration   time.Duration     `json:"duration"`
	IsLicensed bool              `json:"isLicensed"`
	BlockedIn  []string          `json:"blockedIn,omitempty"`
	AllowedIn  []string          `json:"allowedIn,omitempty"`
	Rating     map[string]string `json:"rating,omitempty"`
	Dimension  string            `json:"dimension,omitempty"`
	Definition string            `json:"definition,omitempty"`
	Caption    string            `json:"caption,omitempty"`
	Projection string            `json:"projection,omitempty"`
}

// StatusDetails is the upload and visibility state of a video.
type StatusDetails struct {
	Privacy          PrivacyStatus `json:"privacy"`
	UploadStatus     string        `json:"uploadStatus,omitempty"`
	FailureReason    string        `json:"failureReason,omitempty"`
	RejectionReason  string        `json:"rejectionReason,omitempty"`
	License          string        `json:"license,omitempty"`
	IsEmbeddable     bool          `json:"isEmbeddable"`
	HasViewableStats bool          `json:"hasViewableStats"`
	IsMadeForKids    bool          `json:"isMadeForKids"`
	// Only set when authorized by the channel owner.
	SelfDeclaredMadeForKids *bool `json:"selfDeclaredMadeForKids,omitempty"`
}

// VideoStatistics are the public counters of a video.
type VideoStatistics struct {
	ViewCount int64 `json:"viewCount"`
	// LikeCount is nil when likes are hidden.
	LikeCount *int64 `json:"likeCount,omitempty"`
	// CommentCount is nil when comments are disabled.
	CommentCount *int64 `json:"commentCount,omitempty"`
}

// Player is the embeddable player of a video.
type Player struct {
	EmbedHTML   string `json:"embedHtml"`
	EmbedHeight int    `json:"embedHeight,omitempty"`
	EmbedWidth  int    `json:"embedWidth,omitempty"`
}

// LivestreamDetails of a live or scheduled broadcast.
type LivestreamDetails struct {
	// Only available after the stream starts.
	Viewers   *int64     `json:"viewers,omitempty"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	// Only available after the stream ends.
	EndedAt *time.Time `json:"endedAt,omitempty"`

	ScheduledStart *time.Time `json:"scheduledStart,omitempty"`
	ScheduledEnd   *time.Time `json:"scheduledEnd,omitempty"`
	ChatID         string     `json:"chatId,omitempty"`
}

// Localization is a translated title and description.
type Localization struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// FileDetails describe the uploaded file. Owner only.
type FileDetails struct {
	Name         string        `json:"name"`
	Bytes        int64         `json:"bytes"`
	Type         string        `json:"type"`
	Container    string        `json:"container"`
	DurationMs   int64         `json:"durationMs"`
	BitrateBps   int64         `json:"bitrateBps"`
	CreatedAt    *time.Time    `json:"createdAt,omitempty"`
	VideoStreams []VideoStream `json:"videoStreams,omitempty"`
	AudioStreams []AudioStream `json:"audioStreams,omitempty"`
}

// VideoStream is one video track of an uploaded file.
type VideoStream struct {
	Width       int     `json:"widthPixels"`
	Height      int     `json:"heightPixels"`
	FrameRate   float64 `json:"frameRateFps"`
	AspectRatio float64 `json:"aspectRatio"`
	Codec       string  `json:"codec"`
	BitrateBps  int64   `json:"bitrateBps"`
	Rotation    string  `json:"rotation"`
	Vendor      string  `json:"vendor"`
}

// AudioStream is one audio track of an uploaded file.
type AudioStream struct {
	Channels   int    `json:"channelCount"`
	Codec      string `json:"codec"`
	BitrateBps int64  `json:"bitrateBps"`
	Vendor     string `json:"vendor"`
}

// ProcessingDetails report upload processing progress. Owner only.
type ProcessingDetails struct {
	Status         ProcessingStatus `json:"status"`
	PartsTotal     *int64           `json:"partsTotal,omitempty"`
	PartsProcessed *int64           `json:"partsProcessed,omitempty"`
	TimeLeftMs     *int64           `json:"timeLeftMs,omitempty"`
	FailureReason  string           `json:"failureReason,omitempty"`
}

// Link returns the watch page of the video, or the youtu.be form when short.
func (v *Video) Link(short bool) string {
	if short {
		return "https://youtu.be/" + v.ID
	}
	return "https://www.youtube.com/watch?v=" + v.ID
}

// Comment is a comment, or the top-level comment of a thread together with
// its replies.
type Comment struct {
	ID                string    `json:"id"`
	AuthorDisplayName string    `json:"authorDisplayName,omitempty"`
	AuthorChannelID   string    `json:"authorChannelId,omitempty"`
	Body              string    `json:"body,omitempty"`
	CreatedAt         time.Time `json:"createdAt,omitempty"`
	LikeCount         int64     `json:"likeCount,omitempty"`

	// part: replies. Nil for a plain comment.
	Replies []*Comment `json:"replies,omitempty"`
	// TotalReplyCount may exceed len(Replies); the API embeds only a few.
	TotalReplyCount int `json:"totalReplyCount,omitempty"`
}

// thumbnailOrder is the size order of the API's thumbnail keys.
var thumbnailOrder = []string{"default", "medium", "high", "standard", "maxres"}

type thumbnails map[string]struct {
	URL string `json:"url"`
}

func (t thumbnails) urls() []string {
	if len(t) == 0 {
		return nil
	}
	out := make([]string, 0, len(t))
	for _, size := range thumbnailOrder {
		if th, ok := t[size]; ok && th.URL != "" {
			out = append(out, th.URL)
		}
	}
	return out
}

// parseCount parses a counter the API sends as a decimal string.
func parseCount(field, s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return n, nil
}

func parseOptionalCount(field, s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	n, err := parseCount(field, s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// DecodeChannel decodes a channels.list item.
func DecodeChannel(endpoint string, item pagination.RawItem) (*Channel, error) {
	return matchShape(endpoint, "channel", item, channelShape)
}

// DecodeVideo decodes a video, search result or playlist item.
func DecodeVideo(endpoint string, item pagination.RawItem) (*Video, error) {
	return matchShape(endpoint, "video", item, videoShapes...)
}

// DecodeComment decodes a comment thread or a single comment.
func DecodeComment(endpoint string, item pagination.RawItem) (*Comment, error) {
	return matchShape(endpoint, "comment", item, commentShapes...)
}

// decoder adapts a Decode function to pagination.Map.
func decoder[T any](endpoint string, decode func(string, pagination.RawItem) (T, error)) func(pagination.RawItem) (T, error) {
	return func(item pagination.RawItem) (T, error) {
		return decode(endpoint, item)
	}
}
