package youtube

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Sternrassler/ytdata-client/pkg/client"
	"github.com/Sternrassler/ytdata-client/pkg/pagination"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report layout fields by their JSON names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// ShapeError reports an item that matched none of the known shapes.
type ShapeError struct {
	Record string
	// Mismatches holds one entry per shape tried, in order.
	Mismatches []ShapeMismatch
}

// ShapeMismatch explains why one candidate shape was rejected.
type ShapeMismatch struct {
	Shape  string
	Fields []string
	Err    error
}

func (e *ShapeError) Error() string {
	parts := make([]string, 0, len(e.Mismatches))
	for _, m := range e.Mismatches {
		if len(m.Fields) > 0 {
			parts = append(parts, fmt.Sprintf("%s (missing %s)", m.Shape, strings.Join(m.Fields, ", ")))
		} else {
			parts = append(parts, fmt.Sprintf("%s (%v)", m.Shape, m.Err))
		}
	}
	return fmt.Sprintf("%s matches no known shape: %s", e.Record, strings.Join(parts, "; "))
}

// shape is one candidate layout of a record. decode fills a fresh value of
// the layout type; convert turns a validated layout into the record.
type shape[T any] struct {
	name    string
	decode  func(item pagination.RawItem) (any, error)
	convert func(layout any) (T, error)
}

func newShape[L any, T any](name string, convert func(*L) (T, error)) shape[T] {
	return shape[T]{
		name: name,
		decode: func(item pagination.RawItem) (any, error) {
			var layout L
			if err := json.Unmarshal(item, &layout); err != nil {
				return nil, err
			}
			return &layout, nil
		},
		convert: func(layout any) (T, error) {
			return convert(layout.(*L))
		},
	}
}

// matchShape tries each shape in order and converts the first one whose
// layout decodes and validates. The result is either the record or a
// *client.DecodeError wrapping a *ShapeError.
func matchShape[T any](endpoint, record string, item pagination.RawItem, shapes ...shape[T]) (T, error) {
	var zero T
	shapeErr := &ShapeError{Record: record}

	for _, s := range shapes {
		layout, err := s.decode(item)
		if err != nil {
			shapeErr.Mismatches = append(shapeErr.Mismatches, ShapeMismatch{Shape: s.name, Err: err})
			continue
		}
		if err := validate.Struct(layout); err != nil {
			shapeErr.Mismatches = append(shapeErr.Mismatches, ShapeMismatch{Shape: s.name, Fields: failedFields(err), Err: err})
			continue
		}
		out, err := s.convert(layout)
		if err != nil {
			return zero, &client.DecodeError{Endpoint: endpoint, Detail: record + " as " + s.name, Err: err}
		}
		return out, nil
	}

	return zero, &client.DecodeError{Endpoint: endpoint, Detail: "unexpected " + record, Err: shapeErr}
}

func failedFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Namespace is "layoutType.Outer.Inner"; drop the type name.
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		fields = append(fields, ns)
	}
	return fields
}
