package patch

import (
	"reflect"
	"testing"

	"github.com/albert-labs/albert-go/resources"
)

func entity(id string) resources.EntityLink {
	return resources.EntityLink{ID: id}
}

func TestDiffMetadataDeleteScalar(t *testing.T) {
	t.Parallel()

	existing := resources.Metadata{"a": resources.MetadataString("x")}
	data := DiffMetadata(existing, resources.Metadata{})

	if len(data) != 1 {
		t.Fatalf("expected one datum, got %#v", data)
	}
	datum := data[0]
	if datum.Attribute != "Metadata.a" || datum.Operation != OperationDelete {
		t.Fatalf("unexpected datum: %#v", datum)
	}
	if datum.OldValue != "x" || datum.NewValue != nil {
		t.Fatalf("delete must carry only the old value: %#v", datum)
	}
}

func TestDiffMetadataAddScalar(t *testing.T) {
	t.Parallel()

	updated := resources.Metadata{"a": resources.MetadataString("x")}
	data := DiffMetadata(resources.Metadata{}, updated)

	if len(data) != 1 {
		t.Fatalf("expected one datum, got %#v", data)
	}
	datum := data[0]
	if datum.Attribute != "Metadata.a" || datum.Operation != OperationAdd {
		t.Fatalf("unexpected datum: %#v", datum)
	}
	if datum.NewValue != "x" || datum.OldValue != nil {
		t.Fatalf("add must carry only the new value: %#v", datum)
	}
}

func TestDiffMetadataScalarUpdate(t *testing.T) {
	t.Parallel()

	existing := resources.Metadata{"a": resources.MetadataString("x")}
	updated := resources.Metadata{"a": resources.MetadataString("y")}

	data := DiffMetadata(existing, updated)
	if len(data) != 1 {
		t.Fatalf("expected one datum, got %#v", data)
	}
	if data[0].OldValue != "x" || data[0].NewValue != "y" || data[0].Operation != OperationUpdate {
		t.Fatalf("unexpected datum: %#v", data[0])
	}
}

func TestDiffMetadataNilValueDeletes(t *testing.T) {
	t.Parallel()

	existing := resources.Metadata{"a": resources.MetadataString("x")}
	updated := resources.Metadata{"a": resources.MetadataValue{}}

	data := DiffMetadata(existing, updated)
	if len(data) != 1 || data[0].Operation != OperationDelete {
		t.Fatalf("a nil updated value must delete the key, got %#v", data)
	}
}

func TestDiffMetadataLinkListAdditionsOnly(t *testing.T) {
	t.Parallel()

	existing := resources.Metadata{"tags": resources.MetadataLinks(entity("E1"))}
	updated := resources.Metadata{"tags": resources.MetadataLinks(entity("E1"), entity("E2"))}

	data := DiffMetadata(existing, updated)
	if len(data) != 1 {
		t.Fatalf("expected one datum, got %#v", data)
	}
	datum := data[0]
	if datum.Operation != OperationAdd {
		t.Fatalf("expected add, got %#v", datum)
	}
	if !reflect.DeepEqual(datum.NewValue, []string{"E2"}) {
		t.Fatalf("expected only the added id, got %#v", datum.NewValue)
	}
}

func TestDiffMetadataLinkListRemovalsOnly(t *testing.T) {
	t.Parallel()

	existing := resources.Metadata{"tags": resources.MetadataLinks(entity("E1"), entity("E2"))}
	updated := resources.Metadata{"tags": resources.MetadataLinks(entity("E1"))}

	data := DiffMetadata(existing, updated)
	if len(data) != 1 {
		t.Fatalf("expected one datum, got %#v", data)
	}
	datum := data[0]
	if datum.Operation != OperationDelete {
		t.Fatalf("expected delete, got %#v", datum)
	}
	if !reflect.DeepEqual(datum.OldValue, []string{"E2"}) {
		t.Fatalf("expected only the removed id, got %#v", datum.OldValue)
	}
}

func TestDiffMetadataLinkListMixed(t *testing.T) {
	t.Parallel()

	existing := resources.Metadata{"tags": resources.MetadataLinks(entity("E1"), entity("E2"))}
	updated := resources.Metadata{"tags": resources.MetadataLinks(entity("E2"), entity("E3"))}

	data := DiffMetadata(existing, updated)
	if len(data) != 1 {
		t.Fatalf("expected one datum, got %#v", data)
	}
	datum := data[0]
	if datum.Operation != OperationUpdate {
		t.Fatalf("expected update, got %#v", datum)
	}
	if !reflect.DeepEqual(datum.OldValue, []string{"E1", "E2"}) {
		t.Fatalf("old value must be the full existing id set, got %#v", datum.OldValue)
	}
	if !reflect.DeepEqual(datum.NewValue, []string{"E2", "E3"}) {
		t.Fatalf("new value must be the full updated id set, got %#v", datum.NewValue)
	}
}

func TestDiffMetadataSingleLinkToListIsSet(t *testing.T) {
	t.Parallel()

	existing := resources.Metadata{"owner": resources.MetadataLink(entity("E1"))}
	updated := resources.Metadata{"owner": resources.MetadataLinks(entity("E1"), entity("E2"))}

	data := DiffMetadata(existing, updated)
	if len(data) != 1 {
		t.Fatalf("expected one datum, got %#v", data)
	}
	if data[0].Operation != OperationAdd || !reflect.DeepEqual(data[0].NewValue, []string{"E2"}) {
		t.Fatalf("single link must act as a one-element set, got %#v", data[0])
	}
}

func TestDiffMetadataSingleLinkUpdate(t *testing.T) {
	t.Parallel()

	existing := resources.Metadata{"owner": resources.MetadataLink(entity("E1"))}
	updated := resources.Metadata{"owner": resources.MetadataLink(entity("E2"))}

	data := DiffMetadata(existing, updated)
	if len(data) != 1 {
		t.Fatalf("expected one datum, got %#v", data)
	}
	if data[0].OldValue != "E1" || data[0].NewValue != "E2" {
		t.Fatalf("single link update must carry bare ids, got %#v", data[0])
	}
}

func TestDiffMetadataCardinalityShaping(t *testing.T) {
	t.Parallel()

	// one linked entity deletes as a bare id, several as a list
	single := resources.Metadata{"refs": resources.MetadataLinks(entity("E1"))}
	data := DiffMetadata(single, nil)
	if len(data) != 1 || data[0].OldValue != "E1" {
		t.Fatalf("single-element list must delete as a bare id, got %#v", data)
	}

	several := resources.Metadata{"refs": resources.MetadataLinks(entity("E1"), entity("E2"))}
	data = DiffMetadata(several, nil)
	if len(data) != 1 || !reflect.DeepEqual(data[0].OldValue, []string{"E1", "E2"}) {
		t.Fatalf("multi-element list must delete as an id list, got %#v", data)
	}
}

func TestDiffMetadataEmptyListIsNoOp(t *testing.T) {
	t.Parallel()

	existing := resources.Metadata{"refs": resources.MetadataLinks()}
	if data := DiffMetadata(existing, resources.Metadata{}); len(data) != 0 {
		t.Fatalf("deleting an empty list must emit nothing, got %#v", data)
	}

	updated := resources.Metadata{"refs": resources.MetadataLinks()}
	if data := DiffMetadata(resources.Metadata{}, updated); len(data) != 0 {
		t.Fatalf("adding an empty list must emit nothing, got %#v", data)
	}
}

func TestDiffMetadataUnchangedListSkipped(t *testing.T) {
	t.Parallel()

	existing := resources.Metadata{"tags": resources.MetadataLinks(entity("E1"), entity("E2"))}
	updated := resources.Metadata{"tags": resources.MetadataLinks(entity("E2"), entity("E1"))}

	if data := DiffMetadata(existing, updated); len(data) != 0 {
		t.Fatalf("reordered id sets are equal, got %#v", data)
	}
}

func TestDiffMetadataNilMaps(t *testing.T) {
	t.Parallel()

	if data := DiffMetadata(nil, nil); len(data) != 0 {
		t.Fatalf("two nil maps must diff empty, got %#v", data)
	}
}
