package collections

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/albert-labs/albert-go/patch"
	"github.com/albert-labs/albert-go/resources"
)

func TestEntityTypesUpdateSkipsMetadataDiff(t *testing.T) {
	t.Parallel()

	var patched patch.Payload
	mux := http.NewServeMux()
	mux.HandleFunc("GET /entitytypes/ENT1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, resources.EntityType{
			ID:       "ENT1",
			Label:    "Old label",
			Metadata: resources.Metadata{"owner": resources.MetadataString("server")},
		})
	})
	mux.HandleFunc("PATCH /entitytypes/ENT1", func(w http.ResponseWriter, r *http.Request) {
		patched = decodePayload(t, r)
		writeJSON(t, w, map[string]any{})
	})

	service := NewEntityTypesService(newTestSession(t, mux))
	_, err := service.Update(context.Background(), &resources.EntityType{
		ID:       "ENT1",
		Label:    "New label",
		Metadata: resources.Metadata{"owner": resources.MetadataString("caller")},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(patched.Data) != 1 {
		t.Fatalf("metadata changes must not patch: %#v", patched.Data)
	}
	if patched.Data[0].Attribute != "label" {
		t.Fatalf("unexpected datum: %#v", patched.Data[0])
	}
}

func TestEntityTypesSpecialPatches(t *testing.T) {
	t.Parallel()

	t.Run("custom_fields_replace_as_whole_list", func(t *testing.T) {
		t.Parallel()

		existing := &resources.EntityType{
			ID:           "ENT1",
			Label:        "Formulation",
			CustomFields: []resources.EntityCustomField{{ID: "CF1", Section: resources.FieldSectionTop}},
		}
		updated := &resources.EntityType{
			ID:    "ENT1",
			Label: "Formulation",
			CustomFields: []resources.EntityCustomField{
				{ID: "CF1", Section: resources.FieldSectionTop},
				{ID: "CF2", Section: resources.FieldSectionBottom},
			},
		}

		data := specialEntityTypePatches(existing, updated)
		if len(data) != 1 {
			t.Fatalf("expected one datum, got %#v", data)
		}
		datum := data[0]
		if datum.Attribute != "customFields" || datum.Operation != patch.OperationUpdate {
			t.Fatalf("unexpected datum: %#v", datum)
		}
		oldFields, ok := datum.OldValue.([]resources.EntityCustomField)
		if !ok || len(oldFields) != 1 {
			t.Fatalf("old value must carry the full previous list: %#v", datum.OldValue)
		}
		newFields, ok := datum.NewValue.([]resources.EntityCustomField)
		if !ok || len(newFields) != 2 {
			t.Fatalf("new value must carry the full replacement list: %#v", datum.NewValue)
		}
	})

	t.Run("custom_fields_add_when_absent", func(t *testing.T) {
		t.Parallel()

		data := specialEntityTypePatches(
			&resources.EntityType{ID: "ENT1"},
			&resources.EntityType{ID: "ENT1", CustomFields: []resources.EntityCustomField{{ID: "CF1"}}},
		)
		if len(data) != 1 || data[0].Operation != patch.OperationAdd || data[0].OldValue != nil {
			t.Fatalf("unexpected data: %#v", data)
		}
	})

	t.Run("visibility_patches_per_changed_field", func(t *testing.T) {
		t.Parallel()

		data := specialEntityTypePatches(
			&resources.EntityType{
				ID:                      "ENT1",
				StandardFieldVisibility: &resources.StandardFieldVisibility{Notes: true, Tags: true, DueDate: false},
			},
			&resources.EntityType{
				ID:                      "ENT1",
				StandardFieldVisibility: &resources.StandardFieldVisibility{Notes: true, Tags: false, DueDate: true},
			},
		)
		if len(data) != 2 {
			t.Fatalf("expected one datum per changed field, got %#v", data)
		}
		if data[0].Attribute != "standardFieldVisibility.Tags" || data[0].NewValue != false {
			t.Fatalf("unexpected datum: %#v", data[0])
		}
		if data[1].Attribute != "standardFieldVisibility.DueDate" || data[1].NewValue != true {
			t.Fatalf("unexpected datum: %#v", data[1])
		}
	})

	t.Run("search_query_strings", func(t *testing.T) {
		t.Parallel()

		data := specialEntityTypePatches(
			&resources.EntityType{
				ID:                 "ENT1",
				SearchQueryStrings: &resources.SearchQueryStrings{DataTemplates: "old-query"},
			},
			&resources.EntityType{
				ID:                 "ENT1",
				SearchQueryStrings: &resources.SearchQueryStrings{DataTemplates: "new-query"},
			},
		)
		if len(data) != 1 {
			t.Fatalf("expected one datum, got %#v", data)
		}
		if data[0].Attribute != "searchQueryString.DAT" || data[0].OldValue != "old-query" || data[0].NewValue != "new-query" {
			t.Fatalf("unexpected datum: %#v", data[0])
		}
	})

	t.Run("one_sided_blocks_are_skipped", func(t *testing.T) {
		t.Parallel()

		data := specialEntityTypePatches(
			&resources.EntityType{ID: "ENT1"},
			&resources.EntityType{
				ID:                      "ENT1",
				StandardFieldVisibility: &resources.StandardFieldVisibility{Notes: true},
				SearchQueryStrings:      &resources.SearchQueryStrings{DataTemplates: "query"},
			},
		)
		if len(data) != 0 {
			t.Fatalf("blocks absent on either side must not patch: %#v", data)
		}
	})
}

func TestEntityTypesRules(t *testing.T) {
	t.Parallel()

	rules := []resources.EntityTypeRule{{Attribute: "category", Operator: "eq", Value: "raw-material"}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /entitytypes/rules/ENT1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, rules)
	})
	mux.HandleFunc("PUT /entitytypes/rules/ENT1", func(w http.ResponseWriter, r *http.Request) {
		var body []resources.EntityTypeRule
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding rules: %v", err)
		}
		writeJSON(t, w, body)
	})

	service := NewEntityTypesService(newTestSession(t, mux))

	got, err := service.GetRules(context.Background(), "ENT1")
	if err != nil {
		t.Fatalf("GetRules: %v", err)
	}
	if len(got) != 1 || got[0].Attribute != "category" {
		t.Fatalf("unexpected rules: %#v", got)
	}

	updated, err := service.SetRules(context.Background(), "ENT1", rules)
	if err != nil {
		t.Fatalf("SetRules: %v", err)
	}
	if len(updated) != 1 || updated[0].Operator != "eq" {
		t.Fatalf("unexpected rules: %#v", updated)
	}
}
