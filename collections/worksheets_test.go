package collections

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/albert-labs/albert-go/resources"
)

func TestWorksheetsGetByProjectID(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /worksheet", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("type") != "project" || query.Get("id") != "PRO1" {
			t.Errorf("unexpected query: %v", query)
		}
		writeJSON(t, w, resources.Worksheet{ProjectID: "PRO1", SheetNames: []string{"Formulation"}})
	})

	service := NewWorksheetsService(newTestSession(t, mux))
	worksheet, err := service.GetByProjectID(context.Background(), "PRO1")
	if err != nil {
		t.Fatalf("GetByProjectID: %v", err)
	}
	if worksheet.ProjectID != "PRO1" || len(worksheet.SheetNames) != 1 {
		t.Fatalf("unexpected worksheet: %#v", worksheet)
	}
}

func TestWorksheetsSetup(t *testing.T) {
	t.Parallel()

	var setupBody map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /worksheet/PRO1/setup", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&setupBody); err != nil {
			t.Errorf("decoding setup body: %v", err)
		}
		writeJSON(t, w, map[string]any{})
	})
	mux.HandleFunc("GET /worksheet", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, resources.Worksheet{ProjectID: "PRO1", SheetNames: []string{"Sheet1"}})
	})

	service := NewWorksheetsService(newTestSession(t, mux))
	worksheet, err := service.Setup(context.Background(), "PRO1", true)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if setupBody["sheets"] != "true" {
		t.Fatalf("sheet seeding flag must travel as a string: %#v", setupBody)
	}
	if worksheet.ProjectID != "PRO1" {
		t.Fatalf("setup must return the refreshed worksheet: %#v", worksheet)
	}
}

func TestWorksheetsAddSheetFromTemplate(t *testing.T) {
	t.Parallel()

	var templateID string
	var sheetBody map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /worksheet/project/PRO1/sheets", func(w http.ResponseWriter, r *http.Request) {
		templateID = r.URL.Query().Get("templateId")
		if err := json.NewDecoder(r.Body).Decode(&sheetBody); err != nil {
			t.Errorf("decoding sheet body: %v", err)
		}
		writeJSON(t, w, map[string]any{})
	})
	mux.HandleFunc("GET /worksheet", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, resources.Worksheet{ProjectID: "PRO1", SheetNames: []string{"Sheet1", "From template"}})
	})

	service := NewWorksheetsService(newTestSession(t, mux))
	worksheet, err := service.AddSheetFromTemplate(context.Background(), "PRO1", "WST1", "From template")
	if err != nil {
		t.Fatalf("AddSheetFromTemplate: %v", err)
	}
	if templateID != "WST1" {
		t.Fatalf("template id must travel as a query parameter, got %q", templateID)
	}
	if sheetBody["name"] != "From template" {
		t.Fatalf("unexpected sheet body: %#v", sheetBody)
	}
	if len(worksheet.SheetNames) != 2 {
		t.Fatalf("unexpected worksheet: %#v", worksheet)
	}
}
