package collections

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/albert-labs/albert-go/faults"
	"github.com/albert-labs/albert-go/patch"
	"github.com/albert-labs/albert-go/session"
)

func newTestSession(t *testing.T, handler http.Handler) *session.Session {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sess, err := session.New(session.Config{BaseURL: server.URL, Token: "test-token"})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	return sess
}

func writeJSON(t *testing.T, w http.ResponseWriter, body any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func decodePayload(t *testing.T, r *http.Request) patch.Payload {
	t.Helper()

	var payload patch.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding patch payload: %v", err)
	}
	return payload
}

func decodeEnvelopes(t *testing.T, r *http.Request) []patchEnvelope {
	t.Helper()

	var envelopes []patchEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelopes); err != nil {
		t.Fatalf("decoding patch envelopes: %v", err)
	}
	return envelopes
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected a validation error, got nil")
	}
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}
