package pagination

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOrder string

func (o testOrder) EncodeParam() string { return string(o) }

type testFlags []string

func (f *testFlags) EncodeParam() string {
	if f == nil {
		return ""
	}
	out := ""
	for i, v := range *f {
		if i > 0 {
			out += ","
		}
		out += v
	}
	return out
}

func TestParams_Values(t *testing.T) {
	var nilString *string
	channel := "UC123"
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("CET", 3600))

	params := Params{
		"part":           []string{"snippet", "id"},
		"order":          testOrder("date"),
		"empty":          testOrder(""),
		"channelId":      &channel,
		"pageToken":      nilString,
		"q":              nil,
		"maxResults":     25,
		"mine":           true,
		"publishedAfter": ts,
		"flags":          &testFlags{"a", "b"},
	}

	values, err := params.Values()
	require.NoError(t, err)

	assert.Equal(t, url.Values{
		"part":           {"snippet,id"},
		"order":          {"date"},
		"channelId":      {"UC123"},
		"maxResults":     {"25"},
		"mine":           {"true"},
		"publishedAfter": {"2024-03-01T11:30:00Z"},
		"flags":          {"a,b"},
	}, values)
}

func TestParams_EncodeDeterministic(t *testing.T) {
	a := Params{"b": "2", "a": "1", "c": []string{"x", "y"}}
	b := Params{"c": []string{"x", "y"}, "a": "1", "b": "2"}

	ea, err := a.Encode()
	require.NoError(t, err)
	eb, err := b.Encode()
	require.NoError(t, err)

	assert.Equal(t, ea, eb)
	assert.Equal(t, "a=1&b=2&c=x%2Cy", ea)
}

func TestParams_Unsupported(t *testing.T) {
	_, err := Params{"bad": struct{}{}}.Values()
	assert.Error(t, err)
}

func TestParams_WithCopies(t *testing.T) {
	base := Params{"part": "id"}
	next := base.With("pageToken", "abc")

	assert.NotContains(t, base, "pageToken")
	assert.Equal(t, "abc", next["pageToken"])

	merged := base.Merge(Params{"part": "snippet", "q": "go"})
	assert.Equal(t, "id", base["part"])
	assert.Equal(t, Params{"part": "snippet", "q": "go"}, merged)
}

func TestParamsFromValues(t *testing.T) {
	p := ParamsFromValues(url.Values{"part": {"id", "snippet"}, "q": {"go"}, "none": {}})

	assert.Equal(t, Params{"part": "id,snippet", "q": "go"}, p)
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2023, 12, 31, 23, 0, 0, 0, time.FixedZone("X", -2*3600))
	assert.Equal(t, "2024-01-01T01:00:00Z", FormatTime(ts))
}
