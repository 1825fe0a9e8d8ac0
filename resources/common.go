package resources

import (
	"encoding/json"
	"time"
)

// EntityLink is a reference to another platform entity. On the wire it is
// `{"id": "...", "name": "..."}`; the name is informational and never sent
// back on mutations.
type EntityLink struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

func Link(id string) *EntityLink {
	return &EntityLink{ID: id}
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type AuditFields struct {
	By     string    `json:"by,omitempty"`
	ByName string    `json:"byName,omitempty"`
	At     time.Time `json:"at,omitzero"`
}

type Tag struct {
	ID   string `json:"tagId,omitempty"`
	Name string `json:"name,omitempty"`
}

type OrderBy string

const (
	OrderAscending  OrderBy = "asc"
	OrderDescending OrderBy = "desc"
)

// rawValue round-trips arbitrary JSON scalars without losing the distinction
// between absent and null.
func rawValue(data []byte) (any, error) {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, err
	}
	return value, nil
}
