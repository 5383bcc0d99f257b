package youtube

// Order sorts search results.
type Order string

const (
	OrderDate      Order = "date"
	OrderRating    Order = "rating"
	OrderRelevance Order = "relevance"
	OrderTitle     Order = "title"
	OrderViewCount Order = "viewCount"
)

// EncodeParam implements pagination.ParamEncoder.
func (o Order) EncodeParam() string { return string(o) }

// SafeSearch filters restricted content from search results.
type SafeSearch string

const (
	SafeSearchStrict   SafeSearch = "strict"
	SafeSearchModerate SafeSearch = "moderate"
	SafeSearchNone     SafeSearch = "none"
)

// EncodeParam implements pagination.ParamEncoder.
func (s SafeSearch) EncodeParam() string { return string(s) }

// CommentOrder sorts comment threads.
type CommentOrder string

const (
	CommentOrderRelevance CommentOrder = "relevance"
	CommentOrderTime      CommentOrder = "time"
)

// EncodeParam implements pagination.ParamEncoder.
func (o CommentOrder) EncodeParam() string { return string(o) }

// PrivacyStatus of a video or playlist.
type PrivacyStatus string

const (
	PrivacyPrivate  PrivacyStatus = "private"
	PrivacyUnlisted PrivacyStatus = "unlisted"
	PrivacyPublic   PrivacyStatus = "public"
)

// ProcessingStatus of an uploaded video.
type ProcessingStatus string

const (
	ProcessingFailed     ProcessingStatus = "failed"
	ProcessingProcessing ProcessingStatus = "processing"
	ProcessingSucceeded  ProcessingStatus = "succeeded"
	ProcessingTerminated ProcessingStatus = "terminated"
)

// MembersMode selects between the full member list and incremental updates.
type MembersMode string

const (
	MembersAllCurrent MembersMode = "all_current"
	MembersUpdates    MembersMode = "updates"
)

// EncodeParam implements pagination.ParamEncoder.
func (m MembersMode) EncodeParam() string { return string(m) }
