package patch

import (
	"testing"

	"github.com/albert-labs/albert-go/resources"
)

func TestDiffTagIDs(t *testing.T) {
	t.Parallel()

	existing := []resources.Tag{{ID: "TAG1"}, {ID: "TAG2"}}
	updated := []resources.Tag{{ID: "TAG2"}, {ID: "TAG3"}}

	data := DiffTagIDs(existing, updated, "tagId")
	if len(data) != 2 {
		t.Fatalf("expected add and delete, got %#v", data)
	}
	if data[0].Operation != OperationAdd || data[0].NewValue != "TAG3" {
		t.Fatalf("adds come first with bare ids, got %#v", data[0])
	}
	if data[1].Operation != OperationDelete || data[1].OldValue != "TAG1" {
		t.Fatalf("unexpected delete datum: %#v", data[1])
	}
	for _, datum := range data {
		if datum.Attribute != "tagId" {
			t.Fatalf("attribute must be the caller's, got %#v", datum)
		}
	}
}

func TestDiffTagIDsUnchanged(t *testing.T) {
	t.Parallel()

	tags := []resources.Tag{{ID: "TAG1"}}
	if data := DiffTagIDs(tags, tags, "tag"); len(data) != 0 {
		t.Fatalf("identical tag sets must diff empty, got %#v", data)
	}
}
