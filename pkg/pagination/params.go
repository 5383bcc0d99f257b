package pagination

import (
	"fmt"
	"maps"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ParamEncoder is implemented by enum and flag-set parameter types that
// declare their own wire code. An empty code omits the parameter.
type ParamEncoder interface {
	EncodeParam() string
}

// Params is the logical parameter set of a listing request.
//
// Values may be strings, booleans, integers, string slices, time.Time,
// ParamEncoder or fmt.Stringer implementations, or pointers to any of those.
// Nil values and nil pointers are omitted from the request.
type Params map[string]any

// With returns a copy of p with key set to value.
func (p Params) With(key string, value any) Params {
	out := make(Params, len(p)+1)
	maps.Copy(out, p)
	out[key] = value
	return out
}

// Merge returns a copy of p overlaid with other.
func (p Params) Merge(other Params) Params {
	out := make(Params, len(p)+len(other))
	maps.Copy(out, p)
	maps.Copy(out, other)
	return out
}

// Values normalizes p into query values. Keys are emitted in sorted order
// by url.Values.Encode, so equal logical parameters yield equal queries.
func (p Params) Values() (url.Values, error) {
	values := make(url.Values, len(p))
	for key, raw := range p {
		encoded, ok, err := encodeParam(raw)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", key, err)
		}
		if ok {
			values.Set(key, encoded)
		}
	}
	return values, nil
}

// Encode returns the normalized query string.
func (p Params) Encode() (string, error) {
	values, err := p.Values()
	if err != nil {
		return "", err
	}
	return values.Encode(), nil
}

// ParamsFromValues converts already serialized query values. Multi-valued
// keys are comma-joined.
func ParamsFromValues(values url.Values) Params {
	out := make(Params, len(values))
	for key, vs := range values {
		if len(vs) == 0 {
			continue
		}
		out[key] = strings.Join(vs, ",")
	}
	return out
}

// FormatTime renders t as an ISO-8601 UTC timestamp with a Z suffix.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func encodeParam(raw any) (string, bool, error) {
	if raw == nil {
		return "", false, nil
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false, nil
		}
		// Pointer receivers may implement the encoder themselves.
		if enc, ok := raw.(ParamEncoder); ok {
			return nonEmpty(enc.EncodeParam())
		}
		raw = rv.Elem().Interface()
	}

	switch v := raw.(type) {
	case ParamEncoder:
		return nonEmpty(v.EncodeParam())
	case string:
		return v, true, nil
	case []string:
		if len(v) == 0 {
			return "", false, nil
		}
		return strings.Join(v, ","), true, nil
	case bool:
		return strconv.FormatBool(v), true, nil
	case int:
		return strconv.Itoa(v), true, nil
	case int64:
		return strconv.FormatInt(v, 10), true, nil
	case time.Time:
		if v.IsZero() {
			return "", false, nil
		}
		return FormatTime(v), true, nil
	case fmt.Stringer:
		return nonEmpty(v.String())
	}

	switch rv := reflect.ValueOf(raw); rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint, reflect.Uint8,
		reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Float32, reflect.Float64:
		return fmt.Sprint(raw), true, nil
	case reflect.String:
		return rv.String(), true, nil
	}
	return "", false, fmt.Errorf("unsupported value type %T", raw)
}

func nonEmpty(s string) (string, bool, error) {
	return s, s != "", nil
}
