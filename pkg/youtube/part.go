package youtube

import (
	"fmt"
	"net/url"
	"strings"
)

// Part is a set of resource field groups. Requesting a part changes both the
// response shape and the quota cost of a call. Parts combine with |.
type Part uint16

const (
	PartID Part = 1 << iota
	PartContentDetails
	PartSnippet
	PartStatus
	PartStatistics
	PartReplies
	PartLocalizations
	PartPlayer
	PartLiveStreamingDetails
	PartTopicDetails
	PartRecordingDetails

	// Only returned when authorized by the channel owner.
	PartFileDetails
	PartProcessingDetails
)

// partCodes lists the wire codes in declaration order. Serialization follows
// this order so equal sets always encode identically.
var partCodes = []struct {
	part Part
	code string
}{
	{PartID, "id"},
	{PartContentDetails, "contentDetails"},
	{PartSnippet, "snippet"},
	{PartStatus, "status"},
	{PartStatistics, "statistics"},
	{PartReplies, "replies"},
	{PartLocalizations, "localizations"},
	{PartPlayer, "player"},
	{PartLiveStreamingDetails, "liveStreamingDetails"},
	{PartTopicDetails, "topicDetails"},
	{PartRecordingDetails, "recordingDetails"},
	{PartFileDetails, "fileDetails"},
	{PartProcessingDetails, "processingDetails"},
}

// AllPublicParts is every part readable without owner authorization,
// excluding id which is always returned.
const AllPublicParts = PartContentDetails | PartSnippet | PartStatus | PartStatistics |
	PartLocalizations | PartPlayer | PartLiveStreamingDetails | PartTopicDetails |
	PartRecordingDetails

// Has reports whether every part in q is in p.
func (p Part) Has(q Part) bool {
	return p&q == q
}

// Intersect keeps only the parts also present in allowed.
func (p Part) Intersect(allowed Part) Part {
	return p & allowed
}

// Codes returns the wire codes of the set in declaration order.
func (p Part) Codes() []string {
	var codes []string
	for _, pc := range partCodes {
		if p&pc.part != 0 {
			codes = append(codes, pc.code)
		}
	}
	return codes
}

// EncodeParam renders the set as a comma-separated list. An empty set
// renders as "" and is omitted from requests.
func (p Part) EncodeParam() string {
	return strings.Join(p.Codes(), ",")
}

// EncodeValues implements query.Encoder.
func (p Part) EncodeValues(key string, v *url.Values) error {
	if encoded := p.EncodeParam(); encoded != "" {
		v.Set(key, encoded)
	}
	return nil
}

func (p Part) String() string {
	if p == 0 {
		return "none"
	}
	return p.EncodeParam()
}

// ParsePart parses a comma-separated list of part codes.
func ParsePart(s string) (Part, error) {
	var p Part
	for _, raw := range strings.Split(s, ",") {
		code := strings.TrimSpace(raw)
		if code == "" {
			continue
		}
		found := false
		for _, pc := range partCodes {
			if pc.code == code {
				p |= pc.part
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown part %q", code)
		}
	}
	return p, nil
}
