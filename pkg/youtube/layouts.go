package youtube

import (
	"errors"
	"fmt"
	"time"
)

// fieldParser converts the API's string-encoded counters and timestamps,
// keeping the first failure so conversions read as plain assignments.
type fieldParser struct {
	err error
}

func (p *fieldParser) count(field, s string) int64 {
	if s == "" || p.err != nil {
		return 0
	}
	n, err := parseCount(field, s)
	if err != nil {
		p.err = err
	}
	return n
}

func (p *fieldParser) optionalCount(field, s string) *int64 {
	if s == "" || p.err != nil {
		return nil
	}
	n, err := parseOptionalCount(field, s)
	if err != nil {
		p.err = err
	}
	return n
}

func (p *fieldParser) timestamp(field, s string) time.Time {
	if s == "" || p.err != nil {
		return time.Time{}
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", field, err)
	}
	return t
}

func (p *fieldParser) optionalTimestamp(field, s string) *time.Time {
	if s == "" || p.err != nil {
		return nil
	}
	t, err := parseOptionalTimestamp(s)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", field, err)
	}
	return t
}

func (p *fieldParser) duration(field, s string) time.Duration {
	if s == "" || p.err != nil {
		return 0
	}
	d, err := ParseDuration(s)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", field, err)
	}
	return d
}

// channel

type channelLayout struct {
	ID      string `json:"id" validate:"required"`
	Snippet *struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		PublishedAt string     `json:"publishedAt"`
		CustomURL   string     `json:"customUrl"`
		Thumbnails  thumbnails `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails *struct {
		RelatedPlaylists struct {
			Uploads string `json:"uploads"`
		} `json:"relatedPlaylists"`
	} `json:"contentDetails"`
	Statistics *struct {
		ViewCount             string `json:"viewCount"`
		SubscriberCount       string `json:"subscriberCount"`
		HiddenSubscriberCount bool   `json:"hiddenSubscriberCount"`
		VideoCount            string `json:"videoCount"`
	} `json:"statistics"`
	Status *struct {
		PrivacyStatus string `json:"privacyStatus"`
	} `json:"status"`
	TopicDetails *struct {
		TopicCategories []string `json:"topicCategories"`
	} `json:"topicDetails"`
}

var channelShape = newShape("channel resource", channelFromLayout)

func channelFromLayout(l *channelLayout) (*Channel, error) {
	var p fieldParser
	c := &Channel{ID: l.ID}

	if s := l.Snippet; s != nil {
		c.DisplayName = s.Title
		c.Description = s.Description
		c.CreatedAt = p.timestamp("snippet.publishedAt", s.PublishedAt)
		c.Handle = s.CustomURL
		if th, ok := s.Thumbnails["default"]; ok {
			c.ProfileImageURL = th.URL
		}
	}
	if d := l.ContentDetails; d != nil && d.RelatedPlaylists.Uploads != "" {
		c.UploadsPlaylist = &Playlist{ID: d.RelatedPlaylists.Uploads}
	}
	if s := l.Statistics; s != nil {
		c.Statistics = &ChannelStatistics{
			ViewCount:  p.count("statistics.viewCount", s.ViewCount),
			VideoCount: p.count("statistics.videoCount", s.VideoCount),
		}
		if !s.HiddenSubscriberCount {
			c.Statistics.SubscriberCount = p.optionalCount("statistics.subscriberCount", s.SubscriberCount)
		}
	}
	if l.Status != nil {
		c.Privacy = PrivacyStatus(l.Status.PrivacyStatus)
	}
	if l.TopicDetails != nil {
		c.TopicCategories = l.TopicDetails.TopicCategories
	}

	if p.err != nil {
		return nil, p.err
	}
	return c, nil
}

// video

type videoSnippetLayout struct {
	Title                  string        `json:"title"`
	Description            string        `json:"description"`
	PublishedAt            string        `json:"publishedAt"`
	ChannelID              string        `json:"channelId"`
	ChannelTitle           string        `json:"channelTitle"`
	VideoOwnerChannelID    string        `json:"videoOwnerChannelId"`
	VideoOwnerChannelTitle string        `json:"videoOwnerChannelTitle"`
	Tags                   []string      `json:"tags"`
	LiveBroadcastContent   string        `json:"liveBroadcastContent"`
	DefaultAudioLanguage   string        `json:"defaultAudioLanguage"`
	Thumbnails             thumbnails    `json:"thumbnails"`
	Localized              *Localization `json:"localized"`
	ResourceID             *struct {
		VideoID string `json:"videoId"`
	} `json:"resourceId"`
}

func (s *videoSnippetLayout) apply(v *Video, p *fieldParser) {
	if s == nil {
		return
	}
	v.Title = s.Title
	v.Description = s.Description
	v.PublishedAt = p.timestamp("snippet.publishedAt", s.PublishedAt)
	v.ChannelID = s.ChannelID
	v.ChannelName = s.ChannelTitle
	// Playlist items name the playlist owner in channelId.
	if s.VideoOwnerChannelID != "" {
		v.ChannelID = s.VideoOwnerChannelID
		v.ChannelName = s.VideoOwnerChannelTitle
	}
	v.Tags = s.Tags
	v.IsLivestream = s.LiveBroadcastContent == "live"
	v.DefaultAudioLanguage = s.DefaultAudioLanguage
	v.Thumbnails = s.Thumbnails.urls()
	if s.Localized != nil {
		v.LocalizedTitle = s.Localized.Title
		v.LocalizedDescription = s.Localized.Description
	}
}

type playlistItemLayout struct {
	Kind           string              `json:"kind" validate:"eq=youtube#playlistItem"`
	Snippet        *videoSnippetLayout `json:"snippet"`
	ContentDetails *struct {
		VideoID          string `json:"videoId"`
		VideoPublishedAt string `json:"videoPublishedAt"`
	} `json:"contentDetails"`
	Status *struct {
		PrivacyStatus string `json:"privacyStatus"`
	} `json:"status"`
}

func videoFromPlaylistItem(l *playlistItemLayout) (*Video, error) {
	var p fieldParser
	v := &Video{}
	l.Snippet.apply(v, &p)

	switch {
	case l.ContentDetails != nil && l.ContentDetails.VideoID != "":
		v.ID = l.ContentDetails.VideoID
		if l.ContentDetails.VideoPublishedAt != "" {
			v.PublishedAt = p.timestamp("contentDetails.videoPublishedAt", l.ContentDetails.VideoPublishedAt)
		}
	case l.Snippet != nil && l.Snippet.ResourceID != nil && l.Snippet.ResourceID.VideoID != "":
		v.ID = l.Snippet.ResourceID.VideoID
	default:
		return nil, errors.New("playlist item carries no video id")
	}
	if l.Status != nil {
		v.Privacy = PrivacyStatus(l.Status.PrivacyStatus)
	}

	if p.err != nil {
		return nil, p.err
	}
	return v, nil
}

type searchResultLayout struct {
	ID *struct {
		Kind    string `json:"kind"`
		VideoID string `json:"videoId" validate:"required"`
	} `json:"id" validate:"required"`
	Snippet *videoSnippetLayout `json:"snippet"`
}

func videoFromSearchResult(l *searchResultLayout) (*Video, error) {
	var p fieldParser
	v := &Video{ID: l.ID.VideoID}
	l.Snippet.apply(v, &p)
	if p.err != nil {
		return nil, p.err
	}
	return v, nil
}

type videoLayout struct {
	ID             string              `json:"id" validate:"required"`
	Snippet        *videoSnippetLayout `json:"snippet"`
	ContentDetails *struct {
		Duration          string `json:"duration"`
		LicensedContent   bool   `json:"licensedContent"`
		RegionRestriction *struct {
			Blocked []string `json:"blocked"`
			Allowed []string `json:"allowed"`
		} `json:"regionRestriction"`
		ContentRating map[string]any `json:"contentRating"`
		Dimension     string         `json:"dimension"`
		Definition    string         `json:"definition"`
		Caption       string         `json:"caption"`
		Projection    string         `json:"projection"`
	} `json:"contentDetails"`
	Status *struct {
		PrivacyStatus           string `json:"privacyStatus"`
		UploadStatus            string `json:"uploadStatus"`
		FailureReason           string `json:"failureReason"`
		RejectionReason         string `json:"rejectionReason"`
		License                 string `json:"license"`
		Embeddable              bool   `json:"embeddable"`
		PublicStatsViewable     bool   `json:"publicStatsViewable"`
		MadeForKids             bool   `json:"madeForKids"`
		SelfDeclaredMadeForKids *bool  `json:"selfDeclaredMadeForKids"`
	} `json:"status"`
	Statistics *struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
	Player               *Player `json:"player"`
	LiveStreamingDetails *struct {
		ActualStartTime    string `json:"actualStartTime"`
		ActualEndTime      string `json:"actualEndTime"`
		ScheduledStartTime string `json:"scheduledStartTime"`
		ScheduledEndTime   string `json:"scheduledEndTime"`
		ConcurrentViewers  string `json:"concurrentViewers"`
		ActiveLiveChatID   string `json:"activeLiveChatId"`
	} `json:"liveStreamingDetails"`
	TopicDetails *struct {
		TopicCategories []string `json:"topicCategories"`
	} `json:"topicDetails"`
	RecordingDetails *struct {
		RecordingDate string `json:"recordingDate"`
	} `json:"recordingDetails"`
	Localizations     map[string]Localization `json:"localizations"`
	FileDetails       *fileDetailsLayout      `json:"fileDetails"`
	ProcessingDetails *struct {
		ProcessingStatus   string `json:"processingStatus"`
		ProcessingProgress *struct {
			PartsTotal     string `json:"partsTotal"`
			PartsProcessed string `json:"partsProcessed"`
			TimeLeftMs     string `json:"timeLeftMs"`
		} `json:"processingProgress"`
		ProcessingFailureReason string `json:"processingFailureReason"`
	} `json:"processingDetails"`
}

type fileDetailsLayout struct {
	FileName     string `json:"fileName"`
	FileSize     string `json:"fileSize"`
	FileType     string `json:"fileType"`
	Container    string `json:"container"`
	DurationMs   string `json:"durationMs"`
	BitrateBps   string `json:"bitrateBps"`
	CreationTime string `json:"creationTime"`
	VideoStreams []struct {
		WidthPixels  int     `json:"widthPixels"`
		HeightPixels int     `json:"heightPixels"`
		FrameRateFps float64 `json:"frameRateFps"`
		AspectRatio  float64 `json:"aspectRatio"`
		Codec        string  `json:"codec"`
		BitrateBps   string  `json:"bitrateBps"`
		Rotation     string  `json:"rotation"`
		Vendor       string  `json:"vendor"`
	} `json:"videoStreams"`
	AudioStreams []struct {
		ChannelCount int    `json:"channelCount"`
		Codec        string `json:"codec"`
		BitrateBps   string `json:"bitrateBps"`
		Vendor       string `json:"vendor"`
	} `json:"audioStreams"`
}

func (f *fileDetailsLayout) convert(p *fieldParser) *FileDetails {
	out := &FileDetails{
		Name:       f.FileName,
		Bytes:      p.count("fileDetails.fileSize", f.FileSize),
		Type:       f.FileType,
		Container:  f.Container,
		DurationMs: p.count("fileDetails.durationMs", f.DurationMs),
		BitrateBps: p.count("fileDetails.bitrateBps", f.BitrateBps),
		CreatedAt:  p.optionalTimestamp("fileDetails.creationTime", f.CreationTime),
	}
	for _, vs := range f.VideoStreams {
		out.VideoStreams = append(out.VideoStreams, VideoStream{
			Width:       vs.WidthPixels,
			Height:      vs.HeightPixels,
			FrameRate:   vs.FrameRateFps,
			AspectRatio: vs.AspectRatio,
			Codec:       vs.Codec,
			BitrateBps:  p.count("fileDetails.videoStreams.bitrateBps", vs.BitrateBps),
			Rotation:    vs.Rotation,
			Vendor:      vs.Vendor,
		})
	}
	for _, as := range f.AudioStreams {
		out.AudioStreams = append(out.AudioStreams, AudioStream{
			Channels:   as.ChannelCount,
			Codec:      as.Codec,
			BitrateBps: p.count("fileDetails.audioStreams.bitrateBps", as.BitrateBps),
			Vendor:     as.Vendor,
		})
	}
	return out
}

func videoFromResource(l *videoLayout) (*Video, error) {
	var p fieldParser
	v := &Video{ID: l.ID}
	l.Snippet.apply(v, &p)

	if d := l.ContentDetails; d != nil {
		v.Duration = p.duration("contentDetails.duration", d.Duration)
		v.ContentDetails = &ContentDetails{
			Duration:   v.Duration,
			IsLicensed: d.LicensedContent,
			Dimension:  d.Dimension,
			Definition: d.Definition,
			Caption:    d.Caption,
			Projection: d.Projection,
		}
		if r := d.RegionRestriction; r != nil {
			v.ContentDetails.BlockedIn = r.Blocked
			v.ContentDetails.AllowedIn = r.Allowed
		}
		for system, rating := range d.ContentRating {
			// Rating reasons arrive as lists; only the rating codes are kept.
			if code, ok := rating.(string); ok {
				if v.ContentDetails.Rating == nil {
					v.ContentDetails.Rating = make(map[string]string)
				}
				v.ContentDetails.Rating[system] = code
			}
		}
	}

	if s := l.Status; s != nil {
		v.Privacy = PrivacyStatus(s.PrivacyStatus)
		v.Status = &StatusDetails{
			Privacy:                 v.Privacy,
			UploadStatus:            s.UploadStatus,
			FailureReason:           s.FailureReason,
			RejectionReason:         s.RejectionReason,
			License:                 s.License,
			IsEmbeddable:            s.Embeddable,
			HasViewableStats:        s.PublicStatsViewable,
			IsMadeForKids:           s.MadeForKids,
			SelfDeclaredMadeForKids: s.SelfDeclaredMadeForKids,
		}
	}

	if s := l.Statistics; s != nil {
		v.Statistics = &VideoStatistics{
			ViewCount:    p.count("statistics.viewCount", s.ViewCount),
			LikeCount:    p.optionalCount("statistics.likeCount", s.LikeCount),
			CommentCount: p.optionalCount("statistics.commentCount", s.CommentCount),
		}
	}

	v.Player = l.Player

	if s := l.LiveStreamingDetails; s != nil {
		v.Livestream = &LivestreamDetails{
			Viewers:        p.optionalCount("liveStreamingDetails.concurrentViewers", s.ConcurrentViewers),
			StartedAt:      p.optionalTimestamp("liveStreamingDetails.actualStartTime", s.ActualStartTime),
			EndedAt:        p.optionalTimestamp("liveStreamingDetails.actualEndTime", s.ActualEndTime),
			ScheduledStart: p.optionalTimestamp("liveStreamingDetails.scheduledStartTime", s.ScheduledStartTime),
			ScheduledEnd:   p.optionalTimestamp("liveStreamingDetails.scheduledEndTime", s.ScheduledEndTime),
			ChatID:         s.ActiveLiveChatID,
		}
	}

	if l.TopicDetails != nil {
		v.TopicCategories = l.TopicDetails.TopicCategories
	}
	if l.RecordingDetails != nil {
		v.RecordedAt = p.optionalTimestamp("recordingDetails.recordingDate", l.RecordingDetails.RecordingDate)
	}
	v.Localizations = l.Localizations

	if l.FileDetails != nil {
		v.File = l.FileDetails.convert(&p)
	}
	if d := l.ProcessingDetails; d != nil {
		v.Processing = &ProcessingDetails{
			Status:        ProcessingStatus(d.ProcessingStatus),
			FailureReason: d.ProcessingFailureReason,
		}
		if pr := d.ProcessingProgress; pr != nil {
			v.Processing.PartsTotal = p.optionalCount("processingDetails.partsTotal", pr.PartsTotal)
			v.Processing.PartsProcessed = p.optionalCount("processingDetails.partsProcessed", pr.PartsProcessed)
			v.Processing.TimeLeftMs = p.optionalCount("processingDetails.timeLeftMs", pr.TimeLeftMs)
		}
	}

	if p.err != nil {
		return nil, p.err
	}
	return v, nil
}

// videoShapes are tried in order. Playlist items also carry a string id,
// so they must be recognized before plain video resources.
var videoShapes = []shape[*Video]{
	newShape("playlist item", videoFromPlaylistItem),
	newShape("search result", videoFromSearchResult),
	newShape("video resource", videoFromResource),
}

// comment

type commentLayout struct {
	ID      string `json:"id" validate:"required"`
	Snippet *struct {
		AuthorDisplayName string `json:"authorDisplayName"`
		AuthorChannelID   *struct {
			Value string `json:"value"`
		} `json:"authorChannelId"`
		TextDisplay string `json:"textDisplay"`
		PublishedAt string `json:"publishedAt"`
		LikeCount   int64  `json:"likeCount"`
	} `json:"snippet"`
}

func (l *commentLayout) convert(p *fieldParser) *Comment {
	c := &Comment{ID: l.ID}
	if s := l.Snippet; s != nil {
		c.AuthorDisplayName = s.AuthorDisplayName
		if s.AuthorChannelID != nil {
			c.AuthorChannelID = s.AuthorChannelID.Value
		}
		c.Body = s.TextDisplay
		c.CreatedAt = p.timestamp("snippet.publishedAt", s.PublishedAt)
		c.LikeCount = s.LikeCount
	}
	return c
}

type commentThreadLayout struct {
	ID      string `json:"id"`
	Snippet *struct {
		TopLevelComment *commentLayout `json:"topLevelComment" validate:"required"`
		TotalReplyCount int            `json:"totalReplyCount"`
	} `json:"snippet" validate:"required"`
	Replies *struct {
		Comments []commentLayout `json:"comments"`
	} `json:"replies"`
}

func commentFromThread(l *commentThreadLayout) (*Comment, error) {
	var p fieldParser
	c := l.Snippet.TopLevelComment.convert(&p)
	c.TotalReplyCount = l.Snippet.TotalReplyCount
	c.Replies = []*Comment{}
	if l.Replies != nil {
		for i := range l.Replies.Comments {
			c.Replies = append(c.Replies, l.Replies.Comments[i].convert(&p))
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return c, nil
}

func commentFromLayout(l *commentLayout) (*Comment, error) {
	var p fieldParser
	c := l.convert(&p)
	if p.err != nil {
		return nil, p.err
	}
	return c, nil
}

var commentShapes = []shape[*Comment]{
	newShape("comment thread", commentFromThread),
	newShape("comment", commentFromLayout),
}
