package client

import (
	"bytes"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/Sternrassler/ytdata-client/pkg/pagination"
)

// json is a drop-in replacement for encoding/json with better performance.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DecodePage parses a page envelope {items, nextPageToken, pageInfo}.
// Missing items decode to an empty slice; a missing token marks the last page.
func DecodePage(endpoint string, body []byte) (*pagination.Page, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, &DecodeError{Endpoint: endpoint, Detail: "empty response body"}
	}
	if trimmed[0] != '{' {
		return nil, &DecodeError{Endpoint: endpoint, Detail: "response body is not a JSON object"}
	}

	var page pagination.Page
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Detail: "malformed page envelope", Err: err}
	}

	if page.Items == nil {
		page.Items = []pagination.RawItem{}
	}
	for i, item := range page.Items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return nil, &DecodeError{Endpoint: endpoint, Detail: "item " + strconv.Itoa(i) + " is not a JSON object"}
		}
	}

	return &page, nil
}

// DecodeItem unmarshals one raw item into v, reporting failures as *DecodeError.
func DecodeItem(endpoint string, item pagination.RawItem, v any) error {
	if err := json.Unmarshal(item, v); err != nil {
		return &DecodeError{Endpoint: endpoint, Detail: "malformed item", Err: err}
	}
	return nil
}

// errorEnvelope is the Google API error body.
type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason  string `json:"reason"`
			Domain  string `json:"domain"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

func parseErrorBody(body []byte) (message, reason string, ok bool) {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil {
		return "", "", false
	}
	message = env.Error.Message
	if len(env.Error.Errors) > 0 {
		reason = env.Error.Errors[0].Reason
	}
	return message, reason, message != "" || reason != ""
}
