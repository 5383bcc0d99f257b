// Package pagination turns page-token driven listing endpoints into lazy,
// element-level sequences.
//
// A listing endpoint returns items in pages. Each page carries an opaque
// nextPageToken that is echoed back to fetch the following page; the last
// page has none. This package hides that loop behind Sequence, which fetches
// a page only when the consumer asks for an element that is not buffered yet.
//
// Example usage:
//
//	seq, err := pagination.Paginate(apiClient, "/playlistItems", params,
//		pagination.WithLimit(30),
//		pagination.WithPageSize(pagination.DefaultPageSizeParam, 50))
//	if err != nil {
//		return err
//	}
//	videos := pagination.Map(seq, decodeVideo)
//	for v, err := range videos.All(ctx) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(v.Title)
//	}
//
// The engine:
//   - Performs no request at construction time
//   - Fetches pages one at a time, in order, never ahead of the consumer
//   - Stops issuing requests once the limit is reached, even mid-page
//   - Applies Map transformations per element without buffering pages
//   - Splits large id sets into chunks for batch lookup endpoints (Chunked)
//
// A Sequence has a single consumer and no internal locking. Independent
// sequences share nothing and may run in parallel.
package pagination
