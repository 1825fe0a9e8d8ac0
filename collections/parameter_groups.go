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

const parameterGroupsPath = "/parametergroups"

// ParameterGroupsService manages parameter groups. Group updates follow the
// same fan-out as data template updates: new parameters and enum values go
// to their own endpoints before the general patch.
type ParameterGroupsService struct {
	session *session.Session
}

func NewParameterGroupsService(sess *session.Session) *ParameterGroupsService {
	return &ParameterGroupsService{session: sess}
}

func parameterGroupAttributes() []patch.Attribute[resources.ParameterGroup] {
	return []patch.Attribute[resources.ParameterGroup]{
		{Name: "name", Get: func(g *resources.ParameterGroup) any { return stringValue(g.Name) }},
		{Name: "description", Get: func(g *resources.ParameterGroup) any { return stringValue(g.Description) }},
		{Name: patch.MetadataAttribute, Alias: "Metadata", Get: func(g *resources.ParameterGroup) any { return g.Metadata }},
	}
}

func (s *ParameterGroupsService) Create(ctx context.Context, group *resources.ParameterGroup) (*resources.ParameterGroup, error) {
	if group == nil {
		return nil, validationError("parameter group is required")
	}
	var created resources.ParameterGroup
	if err := s.session.Post(ctx, parameterGroupsPath, group, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *ParameterGroupsService) GetByID(ctx context.Context, id string) (*resources.ParameterGroup, error) {
	var group resources.ParameterGroup
	if err := s.session.Get(ctx, parameterGroupsPath+"/"+id, nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (s *ParameterGroupsService) GetByIDs(ctx context.Context, ids []string) ([]resources.ParameterGroup, error) {
	return getByIDs[resources.ParameterGroup](ctx, s.session, parameterGroupsPath, ids)
}

func (s *ParameterGroupsService) GetByName(ctx context.Context, name string) (*resources.ParameterGroup, error) {
	for group, err := range s.List(ctx, ListParameterGroupsOptions{Text: name}) {
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(group.Name, name) {
			return &group, nil
		}
	}
	return nil, nil
}

// ListParameterGroupsOptions filter the parameter group search.
type ListParameterGroupsOptions struct {
	Text     string
	Types    []resources.ParameterGroupType
	OrderBy  resources.OrderBy
	MaxItems int
}

func (o ListParameterGroupsOptions) values() url.Values {
	order := o.OrderBy
	if order == "" {
		order = resources.OrderDescending
	}
	values := url.Values{"order": {string(order)}}
	if o.Text != "" {
		values.Set("text", o.Text)
	}
	for _, groupType := range o.Types {
		values.Add("types", string(groupType))
	}
	return values
}

// List streams hydrated parameter groups matching the filters. Search hits
// are partial, so each page is re-fetched through the /ids endpoint.
func (s *ParameterGroupsService) List(ctx context.Context, opts ListParameterGroupsOptions) iter.Seq2[resources.ParameterGroup, error] {
	return pagination.Iterate(ctx, s.session, pagination.Options[resources.ParameterGroup]{
		Path:        parameterGroupsPath + "/search",
		Mode:        pagination.ModeOffset,
		Params:      opts.values(),
		MaxItems:    opts.MaxItems,
		Deserialize: hydrateByID(s.GetByIDs),
	})
}

// Update patches a group to match the given snapshot: new parameters first,
// then enum value changes, then everything else in one general patch.
func (s *ParameterGroupsService) Update(ctx context.Context, group *resources.ParameterGroup) (*resources.ParameterGroup, error) {
	if group == nil || group.ID == "" {
		return nil, validationError("parameter group id is required")
	}
	existing, err := s.GetByID(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	general := patch.BuildPayload(existing, group, parameterGroupAttributes(), patch.Options{})
	set := patch.GenerateParameterGroupPatches(general, existing, group)
	basePath := parameterGroupsPath + "/" + group.ID

	if len(set.NewParameters) > 0 {
		stripped, enumsByIndex := stripEnumValidations(set.NewParameters)
		var response parametersBody
		if err := s.session.Put(ctx, basePath+"/parameters", parametersBody{Parameters: stripped}, &response); err != nil {
			return nil, err
		}
		for _, parameter := range restoreEnumValidations(response.Parameters, enumsByIndex) {
			values := enumValuesOf(parameter.Validation)
			patches := patch.GenerateEnumPatches(nil, values)
			if len(patches) == 0 {
				continue
			}
			path := basePath + "/parameters/" + parameter.Sequence + "/enums"
			if err := s.session.Put(ctx, path, patches, nil); err != nil {
				return nil, err
			}
		}
	}

	for _, sequence := range sortedKeys(set.ParameterEnums) {
		patches := set.ParameterEnums[sequence]
		if len(patches) == 0 {
			continue
		}
		if err := s.session.Put(ctx, basePath+"/parameters/"+sequence+"/enums", patches, nil); err != nil {
			return nil, err
		}
	}

	if !set.General.Empty() {
		if err := s.session.Patch(ctx, basePath, set.General); err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, group.ID)
}

func (s *ParameterGroupsService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return validationError("parameter group id is required")
	}
	return s.session.Delete(ctx, parameterGroupsPath+"/"+id)
}
