package collections

import (
	"context"
	"iter"
	"net/url"

	"github.com/albert-labs/albert-go/pagination"
	"github.com/albert-labs/albert-go/patch"
	"github.com/albert-labs/albert-go/resources"
	"github.com/albert-labs/albert-go/session"
)

const entityTypesPath = "/entitytypes"

// EntityTypesService manages entity type definitions and their rules.
type EntityTypesService struct {
	session *session.Session
}

func NewEntityTypesService(sess *session.Session) *EntityTypesService {
	return &EntityTypesService{session: sess}
}

func entityTypeAttributes() []patch.Attribute[resources.EntityType] {
	return []patch.Attribute[resources.EntityType]{
		{Name: "label", Get: func(t *resources.EntityType) any { return stringValue(t.Label) }},
		{Name: "template_based", Alias: "templateBased", Get: func(t *resources.EntityType) any { return boolValue(t.TemplateBased) }},
		{Name: "locked_template", Alias: "lockedTemplate", Get: func(t *resources.EntityType) any { return boolValue(t.LockedTemplate) }},
	}
}

func (s *EntityTypesService) Create(ctx context.Context, entityType *resources.EntityType) (*resources.EntityType, error) {
	if entityType == nil {
		return nil, validationError("entity type is required")
	}
	var created resources.EntityType
	if err := s.session.Post(ctx, entityTypesPath, entityType, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *EntityTypesService) GetByID(ctx context.Context, id string) (*resources.EntityType, error) {
	var entityType resources.EntityType
	if err := s.session.Get(ctx, entityTypesPath+"/"+id, nil, &entityType); err != nil {
		return nil, err
	}
	return &entityType, nil
}

// Update patches an entity type. The metadata differ is bypassed: entity
// type metadata is structural configuration owned by the server. Custom
// fields patch as a whole-list replacement, and the visibility and search
// query blocks flatten into one dotted update per changed field.
func (s *EntityTypesService) Update(ctx context.Context, entityType *resources.EntityType) (*resources.EntityType, error) {
	if entityType == nil || entityType.ID == "" {
		return nil, validationError("entity type id is required")
	}
	existing, err := s.GetByID(ctx, entityType.ID)
	if err != nil {
		return nil, err
	}

	payload := patch.BuildPayload(existing, entityType, entityTypeAttributes(), patch.Options{SkipMetadataDiff: true})
	payload.Append(specialEntityTypePatches(existing, entityType)...)
	if payload.Empty() {
		return existing, nil
	}

	if err := s.session.Patch(ctx, entityTypesPath+"/"+entityType.ID, payload); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, entityType.ID)
}

// specialEntityTypePatches covers the attributes the backend cannot take
// through the generic differ.
func specialEntityTypePatches(existing, updated *resources.EntityType) []patch.Datum {
	var data []patch.Datum

	// The backend only accepts custom fields as a full replacement, never
	// per-item edits.
	if updated.CustomFields != nil {
		if existing.CustomFields != nil {
			data = append(data, patch.Datum{
				Attribute: "customFields",
				Operation: patch.OperationUpdate,
				OldValue:  existing.CustomFields,
				NewValue:  updated.CustomFields,
			})
		} else {
			data = append(data, patch.Datum{
				Attribute: "customFields",
				Operation: patch.OperationAdd,
				NewValue:  updated.CustomFields,
			})
		}
	}

	if updated.StandardFieldVisibility != nil && existing.StandardFieldVisibility != nil {
		data = append(data, diffBoolField("standardFieldVisibility.Notes",
			existing.StandardFieldVisibility.Notes, updated.StandardFieldVisibility.Notes)...)
		data = append(data, diffBoolField("standardFieldVisibility.Tags",
			existing.StandardFieldVisibility.Tags, updated.StandardFieldVisibility.Tags)...)
		data = append(data, diffBoolField("standardFieldVisibility.DueDate",
			existing.StandardFieldVisibility.DueDate, updated.StandardFieldVisibility.DueDate)...)
	}

	if updated.SearchQueryStrings != nil && existing.SearchQueryStrings != nil {
		data = append(data, diffStringField("searchQueryString.DAT",
			existing.SearchQueryStrings.DataTemplates, updated.SearchQueryStrings.DataTemplates)...)
		data = append(data, diffStringField("searchQueryString.PRG",
			existing.SearchQueryStrings.ParameterGroups, updated.SearchQueryStrings.ParameterGroups)...)
	}

	return data
}

func diffBoolField(attribute string, oldValue, newValue bool) []patch.Datum {
	if oldValue == newValue {
		return nil
	}
	return []patch.Datum{{
		Attribute: attribute,
		Operation: patch.OperationUpdate,
		OldValue:  oldValue,
		NewValue:  newValue,
	}}
}

func diffStringField(attribute, oldValue, newValue string) []patch.Datum {
	if oldValue == newValue {
		return nil
	}
	return []patch.Datum{{
		Attribute: attribute,
		Operation: patch.OperationUpdate,
		OldValue:  oldValue,
		NewValue:  newValue,
	}}
}

func (s *EntityTypesService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return validationError("entity type id is required")
	}
	return s.session.Delete(ctx, entityTypesPath+"/"+id)
}

// GetRules returns the visibility rules attached to an entity type.
func (s *EntityTypesService) GetRules(ctx context.Context, id string) ([]resources.EntityTypeRule, error) {
	var rules []resources.EntityTypeRule
	if err := s.session.Get(ctx, entityTypesPath+"/rules/"+id, nil, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// SetRules creates or replaces the rules of an entity type.
func (s *EntityTypesService) SetRules(ctx context.Context, id string, rules []resources.EntityTypeRule) ([]resources.EntityTypeRule, error) {
	var updated []resources.EntityTypeRule
	if err := s.session.Put(ctx, entityTypesPath+"/rules/"+id, rules, &updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *EntityTypesService) DeleteRules(ctx context.Context, id string) error {
	return s.session.Delete(ctx, entityTypesPath+"/rules/"+id)
}

// ListEntityTypesOptions filter the entity type listing.
type ListEntityTypesOptions struct {
	Service  resources.EntityServiceType
	OrderBy  resources.OrderBy
	StartKey string
	MaxItems int
}

func (o ListEntityTypesOptions) values() url.Values {
	values := url.Values{}
	if o.Service != "" {
		values.Set("service", string(o.Service))
	}
	if o.OrderBy != "" {
		values.Set("order", string(o.OrderBy))
	}
	if o.StartKey != "" {
		values.Set("startKey", o.StartKey)
	}
	return values
}

// List streams entity types matching the filters.
func (s *EntityTypesService) List(ctx context.Context, opts ListEntityTypesOptions) iter.Seq2[resources.EntityType, error] {
	return pagination.Iterate(ctx, s.session, pagination.Options[resources.EntityType]{
		Path:     entityTypesPath,
		Mode:     pagination.ModeKey,
		Params:   opts.values(),
		MaxItems: opts.MaxItems,
	})
}
