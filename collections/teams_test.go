package collections

import (
	"context"
	"net/http"
	"testing"

	"github.com/albert-labs/albert-go/patch"
)

func TestTeamsAddUsers(t *testing.T) {
	t.Parallel()

	var envelopes []patchEnvelope
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /teams", func(w http.ResponseWriter, r *http.Request) {
		envelopes = decodeEnvelopes(t, r)
		writeJSON(t, w, map[string]any{})
	})

	service := NewTeamsService(newTestSession(t, mux))
	err := service.AddUsers(context.Background(), "TEA1", []string{"USR1", "USR2"}, TeamMember)
	if err != nil {
		t.Fatalf("AddUsers: %v", err)
	}

	if len(envelopes) != 1 || envelopes[0].ID != "TEA1" {
		t.Fatalf("membership patch must wrap the team id: %#v", envelopes)
	}
	data := envelopes[0].Data
	if len(data) != 1 || data[0].Attribute != "ACL" || data[0].Operation != patch.OperationAdd {
		t.Fatalf("unexpected datum: %#v", data)
	}
	entries, ok := data[0].NewValue.([]any)
	if !ok || len(entries) != 2 {
		t.Fatalf("expected one entry per user: %#v", data[0].NewValue)
	}
	first, ok := entries[0].(map[string]any)
	if !ok || first["id"] != "USR1" || first["fgc"] != string(TeamMember) {
		t.Fatalf("unexpected entry: %#v", entries[0])
	}
}

func TestTeamsAddUsersDefaultsToViewer(t *testing.T) {
	t.Parallel()

	var envelopes []patchEnvelope
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /teams", func(w http.ResponseWriter, r *http.Request) {
		envelopes = decodeEnvelopes(t, r)
		writeJSON(t, w, map[string]any{})
	})

	service := NewTeamsService(newTestSession(t, mux))
	if err := service.AddUsers(context.Background(), "TEA1", []string{"USR1"}, ""); err != nil {
		t.Fatalf("AddUsers: %v", err)
	}

	entries := envelopes[0].Data[0].NewValue.([]any)
	entry := entries[0].(map[string]any)
	if entry["fgc"] != string(TeamViewer) {
		t.Fatalf("empty role must default to viewer: %#v", entry)
	}
}

func TestTeamsAddUsersValidation(t *testing.T) {
	t.Parallel()

	service := NewTeamsService(newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected, got %s %s", r.Method, r.URL.Path)
	})))

	assertValidationError(t, service.AddUsers(context.Background(), "", []string{"USR1"}, TeamAdmin))
	assertValidationError(t, service.AddUsers(context.Background(), "TEA1", nil, TeamAdmin))
}
