// Package serialize encodes domain objects into envelope payloads.
//
// JSON uses protojson for proto.Message values and go-json for everything else.
// Binary uses proto.Marshal for proto.Message values and MarshalBinary for
// encoding.BinaryMarshaler values; other values have no binary form. Auto encodes
// both ways and keeps the smaller result.
package serialize

import (
	"encoding"
	"fmt"
	"reflect"

	json "github.com/goccy/go-json"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/fzstream/fzstream/errs"
	"github.com/fzstream/fzstream/format"
)

// Marshal encodes v in the requested format and returns the format actually used.
//
// For format.SerializationAuto the returned format is JSON or Binary, whichever
// is smaller; ties go to Binary, and values without a binary form fall back to JSON.
func Marshal(v any, f format.SerializationFormat) ([]byte, format.SerializationFormat, error) {
	switch f {
	case format.SerializationJSON:
		data, err := marshalJSON(v)
		return data, format.SerializationJSON, err
	case format.SerializationBinary:
		data, err := marshalBinary(v)
		return data, format.SerializationBinary, err
	case format.SerializationAuto:
		return marshalAuto(v)
	default:
		return nil, f, fmt.Errorf("%w: %d", errs.ErrUnknownSerialization, f)
	}
}

// Unmarshal decodes data produced by Marshal into v.
func Unmarshal(data []byte, f format.SerializationFormat, v any) error {
	switch f {
	case format.SerializationJSON:
		if m, ok := v.(proto.Message); ok {
			return protojson.Unmarshal(data, m)
		}

		return json.Unmarshal(data, v)
	case format.SerializationBinary:
		switch t := v.(type) {
		case proto.Message:
			return proto.Unmarshal(data, t)
		case encoding.BinaryUnmarshaler:
			return t.UnmarshalBinary(data)
		default:
			return fmt.Errorf("%w: %T", errs.ErrUnsupportedBinary, v)
		}
	default:
		return fmt.Errorf("%w: cannot decode %s", errs.ErrUnknownSerialization, f)
	}
}

// Sizes describes the footprint of a value in memory and in each encoding.
type Sizes struct {
	// Struct is the shallow in-memory size of the value, pointers dereferenced once.
	Struct int
	// Binary is the binary encoding size, 0 when HasBinary is false.
	Binary    int
	HasBinary bool
	JSON      int
}

// Measure encodes v both ways and reports the sizes.
func Measure(v any) (Sizes, error) {
	s := Sizes{Struct: structSize(v)}

	js, err := marshalJSON(v)
	if err != nil {
		return s, err
	}
	s.JSON = len(js)

	bin, err := marshalBinary(v)
	switch {
	case err == nil:
		s.Binary, s.HasBinary = len(bin), true
	case !isUnsupported(v):
		return s, err
	}

	return s, nil
}

func marshalJSON(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}

	return json.Marshal(v)
}

func marshalBinary(v any) ([]byte, error) {
	switch t := v.(type) {
	case proto.Message:
		return proto.Marshal(t)
	case encoding.BinaryMarshaler:
		return t.MarshalBinary()
	default:
		return nil, fmt.Errorf("%w: %T", errs.ErrUnsupportedBinary, v)
	}
}

func isUnsupported(v any) bool {
	switch v.(type) {
	case proto.Message, encoding.BinaryMarshaler:
		return false
	default:
		return true
	}
}

func marshalAuto(v any) ([]byte, format.SerializationFormat, error) {
	js, err := marshalJSON(v)
	if err != nil {
		return nil, format.SerializationAuto, err
	}

	if isUnsupported(v) {
		return js, format.SerializationJSON, nil
	}

	bin, err := marshalBinary(v)
	if err != nil {
		return nil, format.SerializationAuto, err
	}
	if len(bin) <= len(js) {
		return bin, format.SerializationBinary, nil
	}

	return js, format.SerializationJSON, nil
}

func structSize(v any) int {
	if v == nil {
		return 0
	}

	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return int(t.Size())
}
