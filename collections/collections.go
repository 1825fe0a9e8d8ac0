// Package collections provides per-resource façades over the Albert REST
// API. Each service wraps a shared session and turns resource snapshots into
// minimal patch payloads through the patch package: update operations fetch
// the current server state, diff it against the caller's snapshot, send the
// resulting patches, and return the re-fetched canonical resource.
package collections

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"

	"github.com/albert-labs/albert-go/patch"
	"github.com/albert-labs/albert-go/resources"
	"github.com/albert-labs/albert-go/session"
)

// idBatchSize caps the number of ids sent to a /ids endpoint in one request.
const idBatchSize = 250

type itemsEnvelope[T any] struct {
	Items []T `json:"Items"`
}

// patchEnvelope is the per-entity wrapper used by endpoints that PATCH at
// the collection root (tasks, teams, tags): the body is a list of these.
type patchEnvelope struct {
	ID   string        `json:"id"`
	Data []patch.Datum `json:"data"`
}

// getByIDs fetches resources from a collection's /ids endpoint, batching the
// id list to keep request URLs bounded. Results preserve server order within
// each batch.
func getByIDs[T any](ctx context.Context, sess *session.Session, basePath string, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	results := make([]T, 0, len(ids))
	for start := 0; start < len(ids); start += idBatchSize {
		end := min(start+idBatchSize, len(ids))
		var envelope itemsEnvelope[T]
		if err := sess.Get(ctx, basePath+"/ids", url.Values{"id": ids[start:end]}, &envelope); err != nil {
			return nil, err
		}
		results = append(results, envelope.Items...)
	}
	return results, nil
}

// Accessor helpers shared by the attribute declarations below. They collapse
// zero values to nil so the differ treats them as absent.

func stringValue(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func floatValue(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func boolValue(value *bool) any {
	if value == nil {
		return nil
	}
	return *value
}

func linkID(link *resources.EntityLink) any {
	if link == nil || link.ID == "" {
		return nil
	}
	return link.ID
}

// hydrateByID adapts a batched get-by-ids fetch into a pagination
// deserializer: each search page contributes only its ids, and the full
// entities come from the /ids endpoint.
func hydrateByID[T any](fetch func(context.Context, []string) ([]T, error)) func(context.Context, []json.RawMessage) ([]T, error) {
	return func(ctx context.Context, raw []json.RawMessage) ([]T, error) {
		ids := make([]string, 0, len(raw))
		for _, message := range raw {
			var hit struct {
				ID string `json:"albertId"`
			}
			if err := json.Unmarshal(message, &hit); err != nil {
				return nil, internalError("decoding search hit", err)
			}
			if hit.ID != "" {
				ids = append(ids, hit.ID)
			}
		}
		return fetch(ctx, ids)
	}
}

// sortedKeys orders map iteration so multi-request update sequences hit the
// server deterministically.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
