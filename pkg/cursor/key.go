package cursor

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies one poll stream.
type Key struct {
	// Endpoint is the polled endpoint path (e.g., "/members").
	Endpoint string

	// Params are the request parameters that select the stream
	// (e.g., {"mode": "updates"}).
	Params url.Values

	// Owner distinguishes streams of different authorized accounts
	// (e.g., a channel id). Empty for a single-account setup.
	Owner string
}

// String generates a deterministic key string.
// Format: ytdata:cursor:endpoint:param1=val1:param2=val2:owner=UC123
//
// Example:
//
//	ytdata:cursor:members:mode=updates:part=snippet
func (k Key) String() string {
	parts := []string{"ytdata", "cursor"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(k.Params) > 0 {
		keys := make([]string, 0, len(k.Params))
		for key := range k.Params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, strings.Join(k.Params[key], ",")))
		}
	}

	if k.Owner != "" {
		parts = append(parts, "owner="+k.Owner)
	}

	return strings.Join(parts, ":")
}
