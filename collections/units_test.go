package collections

import (
	"context"
	"net/http"
	"testing"

	"github.com/albert-labs/albert-go/patch"
	"github.com/albert-labs/albert-go/resources"
)

func TestUnitsUpdate(t *testing.T) {
	t.Parallel()

	var patched patch.Payload
	mux := http.NewServeMux()
	mux.HandleFunc("GET /units/UNI1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, resources.Unit{
			ID:       "UNI1",
			Name:     "gram",
			Symbol:   "g",
			Synonyms: []string{"gramme"},
		})
	})
	mux.HandleFunc("PATCH /units/UNI1", func(w http.ResponseWriter, r *http.Request) {
		patched = decodePayload(t, r)
		writeJSON(t, w, map[string]any{})
	})

	service := NewUnitsService(newTestSession(t, mux))
	_, err := service.Update(context.Background(), &resources.Unit{
		ID:       "UNI1",
		Name:     "gram",
		Symbol:   "g",
		Synonyms: []string{"gramme", "gm"},
		Category: "mass",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	attributes := make(map[string]patch.Operation, len(patched.Data))
	for _, datum := range patched.Data {
		attributes[datum.Attribute] = datum.Operation
	}
	if attributes["Synonyms"] != patch.OperationUpdate {
		t.Fatalf("synonym list change must patch as a whole: %#v", patched.Data)
	}
	if attributes["category"] != patch.OperationAdd {
		t.Fatalf("newly set category must register as an add: %#v", patched.Data)
	}
}

func TestUnitsGetByName(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /units", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("exactMatch") != "true" {
			t.Errorf("name lookup must request exact matching: %q", query.Get("exactMatch"))
		}
		writeJSON(t, w, map[string]any{
			"Items": []resources.Unit{{ID: "UNI1", Name: "Gram"}},
		})
	})

	service := NewUnitsService(newTestSession(t, mux))
	unit, err := service.GetByName(context.Background(), "gram")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if unit == nil || unit.ID != "UNI1" {
		t.Fatalf("name match must be case-insensitive: %#v", unit)
	}

	missing, err := service.GetByName(context.Background(), "stone")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if missing != nil {
		t.Fatalf("unmatched name must return nil, got %#v", missing)
	}
}
