package pagination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"
)

type fakeItem struct {
	ID string `json:"albertId"`
}

type fakePage struct {
	items   []fakeItem
	lastKey string
	offset  int
}

type fakeGetter struct {
	pages   []fakePage
	queries []url.Values
	err     error
}

func (g *fakeGetter) Get(_ context.Context, _ string, query url.Values, out any) error {
	copied := make(url.Values, len(query))
	for key, entries := range query {
		copied[key] = append([]string(nil), entries...)
	}
	g.queries = append(g.queries, copied)

	if g.err != nil {
		return g.err
	}

	call := len(g.queries) - 1
	if call >= len(g.pages) {
		return fmt.Errorf("unexpected page request %d", call)
	}
	page := g.pages[call]

	envelope := map[string]any{"Items": page.items}
	if page.lastKey != "" {
		envelope["lastKey"] = page.lastKey
	}
	if page.offset != 0 {
		envelope["offset"] = page.offset
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func ids(items []fakeItem) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		result = append(result, item.ID)
	}
	return result
}

func TestIterateKeyMode(t *testing.T) {
	t.Parallel()

	getter := &fakeGetter{pages: []fakePage{
		{items: []fakeItem{{ID: "A"}, {ID: "B"}}, lastKey: "B"},
		{items: []fakeItem{{ID: "C"}, {ID: "D"}}, lastKey: "D"},
		{items: []fakeItem{{ID: "E"}}},
	}}

	items, err := Collect(Iterate(context.Background(), getter, Options[fakeItem]{
		Path:     "/lots",
		Mode:     ModeKey,
		PageSize: 2,
	}))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if got := ids(items); len(got) != 5 || got[0] != "A" || got[4] != "E" {
		t.Fatalf("unexpected items: %v", got)
	}

	if len(getter.queries) != 3 {
		t.Fatalf("expected three page requests, got %d", len(getter.queries))
	}
	if getter.queries[0].Get("limit") != "2" {
		t.Fatalf("page size must travel as limit: %v", getter.queries[0])
	}
	if getter.queries[1].Get("startKey") != "B" || getter.queries[2].Get("startKey") != "D" {
		t.Fatalf("lastKey must feed the next startKey: %v", getter.queries)
	}
}

func TestIterateKeyModeStopsWithoutLastKey(t *testing.T) {
	t.Parallel()

	getter := &fakeGetter{pages: []fakePage{
		{items: []fakeItem{{ID: "A"}, {ID: "B"}}},
	}}

	items, err := Collect(Iterate(context.Background(), getter, Options[fakeItem]{
		Path:     "/lots",
		Mode:     ModeKey,
		PageSize: 2,
	}))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(items) != 2 || len(getter.queries) != 1 {
		t.Fatalf("a full page without lastKey must stop: %v %v", items, getter.queries)
	}
}

func TestIterateOffsetMode(t *testing.T) {
	t.Parallel()

	getter := &fakeGetter{pages: []fakePage{
		{items: []fakeItem{{ID: "A"}, {ID: "B"}}, offset: 0},
		{items: []fakeItem{{ID: "C"}, {ID: "D"}}, offset: 2},
	}}
	// page one reports no offset, so iteration stops even though it was full
	items, err := Collect(Iterate(context.Background(), getter, Options[fakeItem]{
		Path:     "/tasks",
		Mode:     ModeOffset,
		PageSize: 2,
	}))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("missing offset must stop iteration, got %v", items)
	}

	getter = &fakeGetter{pages: []fakePage{
		{items: []fakeItem{{ID: "A"}, {ID: "B"}}, offset: 2},
		{items: []fakeItem{{ID: "C"}}, offset: 4},
	}}
	items, err = Collect(Iterate(context.Background(), getter, Options[fakeItem]{
		Path:     "/tasks",
		Mode:     ModeOffset,
		PageSize: 2,
	}))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("unexpected items: %v", items)
	}
	if getter.queries[1].Get("offset") != "4" {
		t.Fatalf("next offset must be reported offset plus count, got %v", getter.queries[1])
	}
}

func TestIterateMaxItems(t *testing.T) {
	t.Parallel()

	getter := &fakeGetter{pages: []fakePage{
		{items: []fakeItem{{ID: "A"}, {ID: "B"}}, lastKey: "B"},
		{items: []fakeItem{{ID: "C"}, {ID: "D"}}, lastKey: "D"},
	}}

	items, err := Collect(Iterate(context.Background(), getter, Options[fakeItem]{
		Path:     "/lots",
		Mode:     ModeKey,
		PageSize: 2,
		MaxItems: 3,
	}))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if got := ids(items); len(got) != 3 || got[2] != "C" {
		t.Fatalf("max items must cap the stream, got %v", got)
	}
}

func TestIterateEmptyFirstPage(t *testing.T) {
	t.Parallel()

	getter := &fakeGetter{pages: []fakePage{{}}}

	items, err := Collect(Iterate(context.Background(), getter, Options[fakeItem]{Path: "/lots", Mode: ModeKey}))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %v", items)
	}
}

func TestIterateYieldsRequestError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("boom")
	getter := &fakeGetter{err: wantErr}

	items, err := Collect(Iterate(context.Background(), getter, Options[fakeItem]{Path: "/lots", Mode: ModeKey}))
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected the request error, got %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %v", items)
	}
}

func TestIterateCustomDeserialize(t *testing.T) {
	t.Parallel()

	getter := &fakeGetter{pages: []fakePage{
		{items: []fakeItem{{ID: "a"}}},
	}}

	items, err := Collect(Iterate(context.Background(), getter, Options[fakeItem]{
		Path: "/lots",
		Mode: ModeKey,
		Deserialize: func(_ context.Context, raw []json.RawMessage) ([]fakeItem, error) {
			decoded := make([]fakeItem, 0, len(raw))
			for _, message := range raw {
				var item fakeItem
				if err := json.Unmarshal(message, &item); err != nil {
					return nil, err
				}
				item.ID = "X-" + item.ID
				decoded = append(decoded, item)
			}
			return decoded, nil
		},
	}))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(items) != 1 || items[0].ID != "X-a" {
		t.Fatalf("custom deserialize must apply, got %v", items)
	}
}
