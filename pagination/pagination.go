package pagination

import (
	"context"
	"encoding/json"
	"iter"
	"net/url"
	"strconv"

	"github.com/albert-labs/albert-go/faults"
)

const defaultPageSize = 100

// Mode selects how the next page is addressed: by the startKey/lastKey
// cursor pair or by a numeric offset.
type Mode int

const (
	ModeKey Mode = iota
	ModeOffset
)

// Getter is the slice of the session a paginator needs.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// Options configures one paged listing. Deserialize may be nil, in which case
// each raw item unmarshals directly into T; collections provide their own
// when hydration needs extra calls.
type Options[T any] struct {
	Path        string
	Mode        Mode
	Params      url.Values
	PageSize    int
	MaxItems    int
	Deserialize func(ctx context.Context, items []json.RawMessage) ([]T, error)
}

type pageEnvelope struct {
	Items   []json.RawMessage `json:"Items"`
	LastKey string            `json:"lastKey"`
	Offset  json.Number       `json:"offset"`
}

// Iterate walks all pages of a listing endpoint lazily. Iteration stops at
// the first short page, a missing continuation marker, or MaxItems, and any
// request error is yielded once with a zero item.
func Iterate[T any](ctx context.Context, getter Getter, opts Options[T]) iter.Seq2[T, error] {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	params := make(url.Values, len(opts.Params)+1)
	for key, entries := range opts.Params {
		for _, entry := range entries {
			if entry != "" {
				params.Add(key, entry)
			}
		}
	}
	params.Set("limit", strconv.Itoa(pageSize))

	deserialize := opts.Deserialize
	if deserialize == nil {
		deserialize = decodeItems[T]
	}

	return func(yield func(T, error) bool) {
		var zero T
		yielded := 0

		for {
			var envelope pageEnvelope
			if err := getter.Get(ctx, opts.Path, params, &envelope); err != nil {
				yield(zero, err)
				return
			}
			if len(envelope.Items) == 0 {
				return
			}

			items, err := deserialize(ctx, envelope.Items)
			if err != nil {
				yield(zero, err)
				return
			}
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
				yielded++
				if opts.MaxItems > 0 && yielded >= opts.MaxItems {
					return
				}
			}

			if len(envelope.Items) < pageSize {
				return
			}
			if !advance(opts.Mode, params, envelope, len(envelope.Items)) {
				return
			}
		}
	}
}

// Collect drains an iterator into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var items []T
	for item, err := range seq {
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

func advance(mode Mode, params url.Values, envelope pageEnvelope, count int) bool {
	switch mode {
	case ModeOffset:
		offset, err := envelope.Offset.Int64()
		if err != nil || offset == 0 {
			return false
		}
		params.Set("offset", strconv.FormatInt(offset+int64(count), 10))
		return true
	case ModeKey:
		if envelope.LastKey == "" {
			return false
		}
		params.Set("startKey", envelope.LastKey)
		return true
	default:
		return false
	}
}

func decodeItems[T any](_ context.Context, raw []json.RawMessage) ([]T, error) {
	items := make([]T, 0, len(raw))
	for _, message := range raw {
		var item T
		if err := json.Unmarshal(message, &item); err != nil {
			return nil, faults.NewTypedError(faults.InternalError, "failed to decode listing item", err)
		}
		items = append(items, item)
	}
	return items, nil
}
