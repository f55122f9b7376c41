package normalize

import (
	"reflect"
	"sort"
)

// Kind is the closed set of input shapes the normalizer distinguishes.
// Classification is exhaustive: every input maps to exactly one Kind.
type Kind int

const (
	// KindWrappedEvent is an event wrapper exposing an inner error.
	KindWrappedEvent Kind = iota
	// KindLegacyError is a name/message-only error shape with no stack
	// capability.
	KindLegacyError
	// KindStandardError is a value implementing the builtin error
	// interface.
	KindStandardError
	// KindPlainRecord is a structured key/value record with no error-like
	// shape.
	KindPlainRecord
	// KindOther covers primitives, strings, and unrecognized shapes.
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindWrappedEvent:
		return "wrapped_event"
	case KindLegacyError:
		return "legacy_error"
	case KindStandardError:
		return "standard_error"
	case KindPlainRecord:
		return "plain_record"
	default:
		return "other"
	}
}

// ErrorEvent is an event wrapper carrying the error it was raised for.
type ErrorEvent interface {
	Err() error
}

// LegacyError is a name/message-only error shape. Such values carry no
// usable stack, so they are reported through the message path.
type LegacyError interface {
	Name() string
	Message() string
}

// Classify maps an arbitrary thrown value to its Kind. First match wins,
// in the order the Kind constants are declared.
func Classify(v any) Kind {
	if v == nil {
		return KindOther
	}
	if we, ok := v.(ErrorEvent); ok && we.Err() != nil {
		return KindWrappedEvent
	}
	if _, ok := v.(LegacyError); ok {
		return KindLegacyError
	}
	if _, ok := v.(error); ok {
		return KindStandardError
	}
	if m, ok := v.(map[string]any); ok {
		if isLegacyShape(m) {
			return KindLegacyError
		}
		return KindPlainRecord
	}

	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Map:
		return KindPlainRecord
	case reflect.Struct:
		return KindPlainRecord
	case reflect.Ptr:
		if !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
			return KindPlainRecord
		}
	}
	return KindOther
}

// isLegacyShape reports whether a decoded map is a name/message-only error
// shape (e.g. a DOM-style error that crossed a serialization boundary).
func isLegacyShape(m map[string]any) bool {
	name, ok := m["name"].(string)
	if !ok || name == "" {
		return false
	}
	for k := range m {
		if k != "name" && k != "message" {
			return false
		}
	}
	return true
}

// recordKeys lists the top-level keys of a plain record in sorted order.
func recordKeys(v any) []string {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}

	var keys []string
	switch rv.Kind() {
	case reflect.Map:
		for _, k := range rv.MapKeys() {
			keys = append(keys, toString(k.Interface()))
		}
	case reflect.Struct:
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			if rt.Field(i).IsExported() {
				keys = append(keys, rt.Field(i).Name)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
