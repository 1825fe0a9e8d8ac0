package resources

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// MetadataValueKind discriminates the three shapes a metadata entry can take.
type MetadataValueKind int

const (
	MetadataKindNone MetadataValueKind = iota
	MetadataKindScalar
	MetadataKindLink
	MetadataKindLinkList
)

// MetadataValue is one entry of a resource metadata map: a scalar
// (string/number), a single entity link, or a list of entity links.
type MetadataValue struct {
	scalar any
	link   *EntityLink
	links  []EntityLink
	isList bool
}

type Metadata map[string]MetadataValue

func MetadataScalar(value any) MetadataValue {
	return MetadataValue{scalar: value}
}

func MetadataString(value string) MetadataValue {
	return MetadataValue{scalar: value}
}

func MetadataNumber(value float64) MetadataValue {
	return MetadataValue{scalar: value}
}

func MetadataLink(link EntityLink) MetadataValue {
	return MetadataValue{link: &link}
}

func MetadataLinks(links ...EntityLink) MetadataValue {
	if links == nil {
		links = []EntityLink{}
	}
	return MetadataValue{links: links, isList: true}
}

func (v MetadataValue) Kind() MetadataValueKind {
	switch {
	case v.isList:
		return MetadataKindLinkList
	case v.link != nil:
		return MetadataKindLink
	case v.scalar != nil:
		return MetadataKindScalar
	default:
		return MetadataKindNone
	}
}

func (v MetadataValue) Scalar() any {
	return v.scalar
}

func (v MetadataValue) Link() *EntityLink {
	return v.link
}

func (v MetadataValue) Links() []EntityLink {
	return v.links
}

// LinkIDs returns the ids referenced by this value: all list member ids for a
// list, the single id for a link, nothing for a scalar.
func (v MetadataValue) LinkIDs() []string {
	switch v.Kind() {
	case MetadataKindLink:
		return []string{v.link.ID}
	case MetadataKindLinkList:
		ids := make([]string, 0, len(v.links))
		for _, link := range v.links {
			ids = append(ids, link.ID)
		}
		return ids
	default:
		return nil
	}
}

func (v MetadataValue) Equal(other MetadataValue) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case MetadataKindScalar:
		return reflect.DeepEqual(v.scalar, other.scalar)
	case MetadataKindLink:
		return v.link.ID == other.link.ID
	case MetadataKindLinkList:
		return reflect.DeepEqual(v.LinkIDs(), other.LinkIDs())
	default:
		return true
	}
}

// Interface returns the raw wire-shaped value: the scalar itself, the link
// object, or the slice of link objects.
func (v MetadataValue) Interface() any {
	switch v.Kind() {
	case MetadataKindScalar:
		return v.scalar
	case MetadataKindLink:
		return *v.link
	case MetadataKindLinkList:
		return v.links
	default:
		return nil
	}
}

func (v MetadataValue) MarshalJSON() ([]byte, error) {
	switch v.Kind() {
	case MetadataKindScalar:
		return json.Marshal(v.scalar)
	case MetadataKindLink:
		return json.Marshal(v.link)
	case MetadataKindLinkList:
		return json.Marshal(v.links)
	default:
		return []byte("null"), nil
	}
}

func (v *MetadataValue) UnmarshalJSON(data []byte) error {
	*v = MetadataValue{}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	switch data[0] {
	case '[':
		var links []EntityLink
		if err := json.Unmarshal(data, &links); err != nil {
			return fmt.Errorf("metadata entry is not a list of entity links: %w", err)
		}
		v.links = links
		v.isList = true
	case '{':
		var link EntityLink
		if err := json.Unmarshal(data, &link); err != nil {
			return fmt.Errorf("metadata entry is not an entity link: %w", err)
		}
		v.link = &link
	default:
		scalar, err := rawValue(data)
		if err != nil {
			return fmt.Errorf("metadata entry is not a scalar: %w", err)
		}
		v.scalar = scalar
	}
	return nil
}
