package pagination

import (
	"context"
	"encoding/json"
)

// RawItem is a single undecoded item record of a page.
type RawItem = json.RawMessage

// PageInfo is the advisory result count block of a page envelope.
type PageInfo struct {
	TotalResults   int `json:"totalResults"`
	ResultsPerPage int `json:"resultsPerPage"`
}

// Page is one decoded response envelope. It is not modified after fetching.
type Page struct {
	// Items are the raw item records in API order (never nil after decoding).
	Items []RawItem `json:"items"`

	// NextPageToken is empty on the terminal page.
	NextPageToken string `json:"nextPageToken,omitempty"`

	// PageInfo may be absent or stale.
	PageInfo *PageInfo `json:"pageInfo,omitempty"`
}

// HasNext reports whether another page follows this one.
func (p *Page) HasNext() bool {
	return p.NextPageToken != ""
}

// TotalResults returns the advisory total, if the page carried one.
func (p *Page) TotalResults() (int, bool) {
	if p.PageInfo == nil {
		return 0, false
	}
	return p.PageInfo.TotalResults, true
}

// PageFetcher performs a single page request.
//
// An empty pageToken requests the first page. Implementations merge a
// non-empty token into the request parameters and issue exactly one call.
type PageFetcher interface {
	FetchPage(ctx context.Context, endpoint string, params Params, pageToken string) (*Page, error)
}

// PageFetcherFunc adapts a function to the PageFetcher interface.
type PageFetcherFunc func(ctx context.Context, endpoint string, params Params, pageToken string) (*Page, error)

// FetchPage calls f.
func (f PageFetcherFunc) FetchPage(ctx context.Context, endpoint string, params Params, pageToken string) (*Page, error) {
	return f(ctx, endpoint, params, pageToken)
}
