package patch

import (
	"sort"

	"github.com/albert-labs/albert-go/resources"
)

// DiffMetadata compares two metadata maps and emits one or more data per
// changed key, namespaced as "Metadata.<key>". A nil map is treated as empty.
//
// The dispatch is deliberately asymmetric: the delete pass shapes the old
// value from the existing entry, while the update and add passes shape values
// from the updated entry. Linked-entity lists diff as id sets; a mixed
// add+remove emits a single update carrying both full id sets, never the
// deltas. Keys are visited in sorted order so payloads are reproducible.
func DiffMetadata(existing, updated resources.Metadata) []Datum {
	data := make([]Datum, 0)

	for _, key := range sortedKeys(existing) {
		attribute := "Metadata." + key
		value := existing[key]
		updatedValue, present := updated[key]

		if !present || updatedValue.Kind() == resources.MetadataKindNone {
			if datum, ok := metadataDeleteDatum(attribute, value); ok {
				data = append(data, datum)
			}
			continue
		}
		if value.Equal(updatedValue) {
			continue
		}
		if datum, ok := metadataUpdateDatum(attribute, value, updatedValue); ok {
			data = append(data, datum)
		}
	}

	for _, key := range sortedKeys(updated) {
		if _, present := existing[key]; present {
			continue
		}
		if datum, ok := metadataAddDatum("Metadata."+key, updated[key]); ok {
			data = append(data, datum)
		}
	}

	return data
}

func metadataDeleteDatum(attribute string, value resources.MetadataValue) (Datum, bool) {
	switch value.Kind() {
	case resources.MetadataKindScalar:
		return Datum{Attribute: attribute, Operation: OperationDelete, OldValue: value.Scalar()}, true
	case resources.MetadataKindLinkList:
		ids := value.LinkIDs()
		if len(ids) == 0 {
			return Datum{}, false
		}
		return Datum{Attribute: attribute, Operation: OperationDelete, OldValue: shapeIDs(ids)}, true
	case resources.MetadataKindLink:
		return Datum{Attribute: attribute, Operation: OperationDelete, OldValue: value.Link().ID}, true
	default:
		return Datum{}, false
	}
}

func metadataUpdateDatum(attribute string, value, updatedValue resources.MetadataValue) (Datum, bool) {
	switch updatedValue.Kind() {
	case resources.MetadataKindScalar:
		return Datum{
			Attribute: attribute,
			Operation: OperationUpdate,
			OldValue:  value.Interface(),
			NewValue:  updatedValue.Scalar(),
		}, true
	case resources.MetadataKindLinkList:
		existingIDs := idSet(value.LinkIDs())
		updatedIDs := idSet(updatedValue.LinkIDs())
		toAdd := setDifference(updatedIDs, existingIDs)
		toRemove := setDifference(existingIDs, updatedIDs)
		switch {
		case len(toAdd) == 0 && len(toRemove) == 0:
			return Datum{}, false
		case len(toAdd) > 0 && len(toRemove) > 0:
			return Datum{
				Attribute: attribute,
				Operation: OperationUpdate,
				OldValue:  sortedSet(existingIDs),
				NewValue:  sortedSet(updatedIDs),
			}, true
		case len(toAdd) > 0:
			return Datum{Attribute: attribute, Operation: OperationAdd, NewValue: toAdd}, true
		default:
			return Datum{Attribute: attribute, Operation: OperationDelete, OldValue: toRemove}, true
		}
	case resources.MetadataKindLink:
		// An existing non-link shape has no single id to report; emit nothing
		// rather than inventing one.
		if value.Kind() != resources.MetadataKindLink && value.Kind() != resources.MetadataKindLinkList {
			return Datum{}, false
		}
		ids := value.LinkIDs()
		if len(ids) == 0 {
			return Datum{}, false
		}
		return Datum{
			Attribute: attribute,
			Operation: OperationUpdate,
			OldValue:  ids[0],
			NewValue:  updatedValue.Link().ID,
		}, true
	default:
		return Datum{}, false
	}
}

func metadataAddDatum(attribute string, value resources.MetadataValue) (Datum, bool) {
	switch value.Kind() {
	case resources.MetadataKindScalar:
		return Datum{Attribute: attribute, Operation: OperationAdd, NewValue: value.Scalar()}, true
	case resources.MetadataKindLinkList:
		ids := value.LinkIDs()
		if len(ids) == 0 {
			return Datum{}, false
		}
		return Datum{Attribute: attribute, Operation: OperationAdd, NewValue: shapeIDs(ids)}, true
	case resources.MetadataKindLink:
		return Datum{Attribute: attribute, Operation: OperationAdd, NewValue: value.Link().ID}, true
	default:
		return Datum{}, false
	}
}

// shapeIDs keeps the wire cardinality rule: one id travels bare, several
// travel as a list.
func shapeIDs(ids []string) any {
	if len(ids) == 1 {
		return ids[0]
	}
	return ids
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func setDifference(from, subtract map[string]struct{}) []string {
	result := make([]string, 0)
	for id := range from {
		if _, found := subtract[id]; !found {
			result = append(result, id)
		}
	}
	sort.Strings(result)
	if len(result) == 0 {
		return nil
	}
	return result
}

func sortedSet(set map[string]struct{}) []string {
	result := make([]string, 0, len(set))
	for id := range set {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

func sortedKeys(metadata resources.Metadata) []string {
	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
