package patch

import (
	"fmt"
	"reflect"

	"github.com/albert-labs/albert-go/resources"
)

// MetadataAttribute is the reserved attribute name that routes through the
// metadata differ instead of the scalar differ.
const MetadataAttribute = "metadata"

// Attribute declares one updatable attribute of a resource type: its local
// name, the serialization alias used on the wire, and an accessor reading the
// value from a snapshot. Collections declare their attributes as ordered
// slices so payload generation is deterministic and attribute sets are never
// shared mutable state.
type Attribute[T any] struct {
	Name  string
	Alias string
	Get   func(*T) any
}

func (a Attribute[T]) wireName() string {
	if a.Alias != "" {
		return a.Alias
	}
	return a.Name
}

// Options control payload generation. The zero value diffs metadata and
// sends values unmodified.
type Options struct {
	SkipMetadataDiff bool
	StringifyValues  bool
}

// BuildPayload diffs two snapshots of the same resource over the declared
// attribute set and assembles the minimal patch payload. Neither snapshot is
// mutated; the result is independent of both.
func BuildPayload[T any](existing, updated *T, attributes []Attribute[T], opts Options) Payload {
	data := make([]Datum, 0)
	for _, attribute := range attributes {
		oldValue := normalizeValue(attribute.Get(existing))
		newValue := normalizeValue(attribute.Get(updated))

		// nil and an empty container serialize identically, so neither
		// direction is a change.
		if oldValue == nil && isEmptyContainer(newValue) {
			newValue = nil
		} else if isEmptyContainer(oldValue) && newValue == nil {
			oldValue = nil
		}

		if attribute.Name == MetadataAttribute && !opts.SkipMetadataDiff {
			data = append(data, DiffMetadata(asMetadata(oldValue), asMetadata(newValue))...)
			continue
		}

		if datum, changed := DiffAttribute(attribute.wireName(), oldValue, newValue, opts.StringifyValues); changed {
			data = append(data, datum)
		}
	}
	return Payload{Data: data}
}

// DiffAttribute compares a single attribute value pair and produces at most
// one datum. A nil old value with a non-nil new value is an add; a non-nil
// old value with a differing new value is an update; equal values produce
// nothing.
func DiffAttribute(alias string, oldValue, newValue any, stringify bool) (Datum, bool) {
	if oldValue == nil && newValue != nil {
		return Datum{
			Attribute: alias,
			Operation: OperationAdd,
			NewValue:  stringifyValue(newValue, stringify),
		}, true
	}
	if oldValue != nil && !reflect.DeepEqual(oldValue, newValue) {
		return Datum{
			Attribute: alias,
			Operation: OperationUpdate,
			OldValue:  stringifyValue(oldValue, stringify),
			NewValue:  stringifyValue(newValue, stringify),
		}, true
	}
	return Datum{}, false
}

func stringifyValue(value any, stringify bool) any {
	if !stringify || value == nil {
		return value
	}
	return fmt.Sprintf("%v", value)
}

// normalizeValue collapses typed nils (nil pointers, nil maps, nil slices
// boxed in a non-nil interface) to a plain nil so the differ sees absence
// uniformly.
func normalizeValue(value any) any {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
	}
	return value
}

func isEmptyContainer(value any) bool {
	if value == nil {
		return false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return rv.Len() == 0
	}
	return false
}

func asMetadata(value any) resources.Metadata {
	if value == nil {
		return nil
	}
	metadata, _ := value.(resources.Metadata)
	return metadata
}
