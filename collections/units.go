package collections

import (
	"context"
	"iter"
	"net/url"
	"strings"

	"github.com/albert-labs/albert-go/pagination"
	"github.com/albert-labs/albert-go/patch"
	"github.com/albert-labs/albert-go/resources"
	"github.com/albert-labs/albert-go/session"
)

const unitsPath = "/units"

// UnitsService manages measurement units.
type UnitsService struct {
	session *session.Session
}

func NewUnitsService(sess *session.Session) *UnitsService {
	return &UnitsService{session: sess}
}

func unitAttributes() []patch.Attribute[resources.Unit] {
	return []patch.Attribute[resources.Unit]{
		{Name: "symbol", Get: func(u *resources.Unit) any { return stringValue(u.Symbol) }},
		{Name: "synonyms", Alias: "Synonyms", Get: func(u *resources.Unit) any { return u.Synonyms }},
		{Name: "category", Get: func(u *resources.Unit) any { return stringValue(u.Category) }},
	}
}

func (s *UnitsService) Create(ctx context.Context, unit *resources.Unit) (*resources.Unit, error) {
	if unit == nil {
		return nil, validationError("unit is required")
	}
	var created resources.Unit
	if err := s.session.Post(ctx, unitsPath, unit, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *UnitsService) GetByID(ctx context.Context, id string) (*resources.Unit, error) {
	var unit resources.Unit
	if err := s.session.Get(ctx, unitsPath+"/"+id, nil, &unit); err != nil {
		return nil, err
	}
	return &unit, nil
}

// GetByName resolves a unit by exact name, or nil when absent.
func (s *UnitsService) GetByName(ctx context.Context, name string) (*resources.Unit, error) {
	for unit, err := range s.List(ctx, ListUnitsOptions{Name: name, ExactMatch: true}) {
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(unit.Name, name) {
			return &unit, nil
		}
	}
	return nil, nil
}

func (s *UnitsService) Update(ctx context.Context, unit *resources.Unit) (*resources.Unit, error) {
	if unit == nil || unit.ID == "" {
		return nil, validationError("unit id is required")
	}
	existing, err := s.GetByID(ctx, unit.ID)
	if err != nil {
		return nil, err
	}

	payload := patch.BuildPayload(existing, unit, unitAttributes(), patch.Options{})
	if payload.Empty() {
		return existing, nil
	}
	if err := s.session.Patch(ctx, unitsPath+"/"+unit.ID, payload); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, unit.ID)
}

func (s *UnitsService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return validationError("unit id is required")
	}
	return s.session.Delete(ctx, unitsPath+"/"+id)
}

// ListUnitsOptions filter the unit listing.
type ListUnitsOptions struct {
	Name       string
	Category   string
	ExactMatch bool
	OrderBy    resources.OrderBy
	MaxItems   int
}

func (o ListUnitsOptions) values() url.Values {
	order := o.OrderBy
	if order == "" {
		order = resources.OrderDescending
	}
	values := url.Values{"orderBy": {string(order)}}
	if o.Name != "" {
		values.Set("name", o.Name)
		if o.ExactMatch {
			values.Set("exactMatch", "true")
		}
	}
	if o.Category != "" {
		values.Set("category", o.Category)
	}
	return values
}

// List streams units matching the filters.
func (s *UnitsService) List(ctx context.Context, opts ListUnitsOptions) iter.Seq2[resources.Unit, error] {
	return pagination.Iterate(ctx, s.session, pagination.Options[resources.Unit]{
		Path:     unitsPath,
		Mode:     pagination.ModeKey,
		Params:   opts.values(),
		MaxItems: opts.MaxItems,
	})
}
