package collections

import (
	"context"
	"iter"
	"net/url"
	"strings"

	"github.com/albert-labs/albert-go/debugctx"
	"github.com/albert-labs/albert-go/pagination"
	"github.com/albert-labs/albert-go/patch"
	"github.com/albert-labs/albert-go/resources"
	"github.com/albert-labs/albert-go/session"
)

const (
	dataTemplatesPath = "/datatemplates"

	// hydrationBatchSize caps how many search hits are hydrated per /ids
	// request when listing full entities.
	hydrationBatchSize = 100
)

// DataTemplatesService manages data templates. Template updates fan out over
// several endpoints (columns, parameters, enum values, general attributes);
// the sub-requests are sequential and not transactional, so a mid-sequence
// failure leaves earlier patches applied.
type DataTemplatesService struct {
	session *session.Session
}

func NewDataTemplatesService(sess *session.Session) *DataTemplatesService {
	return &DataTemplatesService{session: sess}
}

func dataTemplateAttributes() []patch.Attribute[resources.DataTemplate] {
	return []patch.Attribute[resources.DataTemplate]{
		{Name: "name", Get: func(t *resources.DataTemplate) any { return stringValue(t.Name) }},
		{Name: "description", Get: func(t *resources.DataTemplate) any { return stringValue(t.Description) }},
		{Name: patch.MetadataAttribute, Alias: "Metadata", Get: func(t *resources.DataTemplate) any { return t.Metadata }},
	}
}

type dataColumnsBody struct {
	DataColumns []resources.DataColumnValue `json:"DataColumns"`
}

type parametersBody struct {
	Parameters []resources.ParameterValue `json:"Parameters"`
}

// Create registers a data template. Parameters cannot travel on the initial
// POST; they are attached afterwards through AddParameters. Empty validation
// lists are dropped because the backend rejects them.
func (s *DataTemplatesService) Create(ctx context.Context, template *resources.DataTemplate) (*resources.DataTemplate, error) {
	if template == nil {
		return nil, validationError("data template is required")
	}

	body := *template
	body.DataColumns = append([]resources.DataColumnValue(nil), template.DataColumns...)
	for i := range body.DataColumns {
		if len(body.DataColumns[i].Validation) == 0 {
			body.DataColumns[i].Validation = nil
		}
	}
	parameters := body.Parameters
	body.Parameters = nil

	var created resources.DataTemplate
	if err := s.session.Post(ctx, dataTemplatesPath, body, &created); err != nil {
		return nil, err
	}
	if len(parameters) == 0 {
		return &created, nil
	}
	return s.AddParameters(ctx, created.ID, parameters)
}

func (s *DataTemplatesService) GetByID(ctx context.Context, id string) (*resources.DataTemplate, error) {
	var template resources.DataTemplate
	if err := s.session.Get(ctx, dataTemplatesPath+"/"+id, nil, &template); err != nil {
		return nil, err
	}
	return &template, nil
}

func (s *DataTemplatesService) GetByIDs(ctx context.Context, ids []string) ([]resources.DataTemplate, error) {
	return getByIDs[resources.DataTemplate](ctx, s.session, dataTemplatesPath, ids)
}

// GetByName resolves a template by exact name, case-insensitively. Search
// hits are partial, so the match is re-fetched in full.
func (s *DataTemplatesService) GetByName(ctx context.Context, name string) (*resources.DataTemplate, error) {
	for template, err := range s.Search(ctx, SearchDataTemplatesOptions{Name: name}) {
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(template.Name, name) {
			return s.GetByID(ctx, template.ID)
		}
	}
	return nil, nil
}

// SearchDataTemplatesOptions filter the template search.
type SearchDataTemplatesOptions struct {
	Name     string
	UserID   string
	OrderBy  resources.OrderBy
	MaxItems int
}

func (o SearchDataTemplatesOptions) values() url.Values {
	order := o.OrderBy
	if order == "" {
		order = resources.OrderDescending
	}
	values := url.Values{"order": {string(order)}}
	if o.Name != "" {
		values.Set("text", o.Name)
	}
	if o.UserID != "" {
		values.Set("userId", o.UserID)
	}
	return values
}

// Search streams partial template entities matching the given criteria. Use
// List for fully hydrated results.
func (s *DataTemplatesService) Search(ctx context.Context, opts SearchDataTemplatesOptions) iter.Seq2[resources.DataTemplate, error] {
	return pagination.Iterate(ctx, s.session, pagination.Options[resources.DataTemplate]{
		Path:     dataTemplatesPath + "/search",
		Mode:     pagination.ModeOffset,
		Params:   opts.values(),
		MaxItems: opts.MaxItems,
	})
}

// List streams fully hydrated templates: search hits are collected into id
// batches and re-fetched from the /ids endpoint. A batch that fails to
// hydrate logs a warning and is skipped.
func (s *DataTemplatesService) List(ctx context.Context, opts SearchDataTemplatesOptions) iter.Seq2[resources.DataTemplate, error] {
	return func(yield func(resources.DataTemplate, error) bool) {
		batch := make([]string, 0, hydrationBatchSize)
		flush := func() bool {
			if len(batch) == 0 {
				return true
			}
			hydrated, err := s.GetByIDs(ctx, batch)
			batch = batch[:0]
			if err != nil {
				debugctx.Warnf(ctx, "hydrating data template batch: %v", err)
				return true
			}
			for _, template := range hydrated {
				if !yield(template, nil) {
					return false
				}
			}
			return true
		}

		for hit, err := range s.Search(ctx, opts) {
			if err != nil {
				yield(resources.DataTemplate{}, err)
				return
			}
			batch = append(batch, hit.ID)
			if len(batch) == hydrationBatchSize && !flush() {
				return
			}
		}
		flush()
	}
}

// AddDataColumns appends columns to a template. Enum-valued columns get
// their allowed values registered first through the enums endpoint.
func (s *DataTemplatesService) AddDataColumns(ctx context.Context, templateID string, columns []resources.DataColumnValue) (*resources.DataTemplate, error) {
	if len(columns) == 0 {
		return s.GetByID(ctx, templateID)
	}
	for _, column := range columns {
		for _, value := range enumValuesOf(column.Validation) {
			path := dataTemplatesPath + "/" + templateID + "/datacolumns/" + column.Sequence + "/enums"
			if err := s.session.Put(ctx, path, []resources.EnumValidationValue{value}, nil); err != nil {
				return nil, err
			}
		}
	}
	if err := s.session.Put(ctx, dataTemplatesPath+"/"+templateID+"/datacolumns", dataColumnsBody{DataColumns: columns}, nil); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, templateID)
}

// AddParameters appends parameters to a template. The parameters endpoint
// rejects enum validations on creation, so they are downgraded to string for
// the PUT and their values added afterwards once the server has assigned row
// sequences.
func (s *DataTemplatesService) AddParameters(ctx context.Context, templateID string, parameters []resources.ParameterValue) (*resources.DataTemplate, error) {
	if len(parameters) == 0 {
		return s.GetByID(ctx, templateID)
	}

	stripped, enumsByIndex := stripEnumValidations(parameters)
	var response parametersBody
	if err := s.session.Put(ctx, dataTemplatesPath+"/"+templateID+"/parameters", parametersBody{Parameters: stripped}, &response); err != nil {
		return nil, err
	}

	restored := restoreEnumValidations(response.Parameters, enumsByIndex)
	if len(restored) > 0 {
		if err := s.addParameterEnums(ctx, templateID, restored); err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, templateID)
}

// stripEnumValidations downgrades enum validations to plain strings for the
// parameter-creation PUT, remembering the removed values by slice index.
func stripEnumValidations(parameters []resources.ParameterValue) ([]resources.ParameterValue, map[int][]resources.EnumValidationValue) {
	stripped := make([]resources.ParameterValue, len(parameters))
	enumsByIndex := make(map[int][]resources.EnumValidationValue)
	for i, parameter := range parameters {
		stripped[i] = parameter
		if len(parameter.Validation) == 0 || parameter.Validation[0].Datatype != resources.DataTypeEnum {
			continue
		}
		enumsByIndex[i] = parameter.Validation[0].Value
		validation := append([]resources.ValueValidation(nil), parameter.Validation...)
		validation[0].Datatype = resources.DataTypeString
		validation[0].Value = nil
		stripped[i].Validation = validation
	}
	return stripped, enumsByIndex
}

// restoreEnumValidations reattaches stripped enum values to the parameters
// the server returned, which carry the assigned sequences. Only parameters
// that had enums stripped are returned.
func restoreEnumValidations(returned []resources.ParameterValue, enumsByIndex map[int][]resources.EnumValidationValue) []resources.ParameterValue {
	restored := make([]resources.ParameterValue, 0, len(enumsByIndex))
	for i, parameter := range returned {
		values, ok := enumsByIndex[i]
		if !ok {
			continue
		}
		validation := append([]resources.ValueValidation(nil), parameter.Validation...)
		if len(validation) == 0 {
			validation = []resources.ValueValidation{{}}
		}
		validation[0].Datatype = resources.DataTypeEnum
		validation[0].Value = values
		parameter.Validation = validation
		restored = append(restored, parameter)
	}
	return restored
}

// addParameterEnums diffs each parameter's enum values against the current
// server state and PUTs the resulting patches to the per-row enums endpoint.
func (s *DataTemplatesService) addParameterEnums(ctx context.Context, templateID string, parameters []resources.ParameterValue) error {
	template, err := s.GetByID(ctx, templateID)
	if err != nil {
		return err
	}
	bySequence := make(map[string]resources.ParameterValue, len(template.Parameters))
	for _, existing := range template.Parameters {
		bySequence[existing.Sequence] = existing
	}

	for _, parameter := range parameters {
		updated := enumValuesOf(parameter.Validation)
		if len(updated) == 0 {
			continue
		}
		existing, ok := bySequence[parameter.Sequence]
		var existingValues []resources.EnumValidationValue
		if ok {
			existingValues = enumValuesOf(existing.Validation)
		}
		patches := patch.GenerateEnumPatches(existingValues, updated)
		if len(patches) == 0 {
			continue
		}
		path := dataTemplatesPath + "/" + templateID + "/parameters/" + parameter.Sequence + "/enums"
		if err := s.session.Put(ctx, path, patches, nil); err != nil {
			return err
		}
	}
	return nil
}

// Update patches a template to match the given snapshot. The patch set fans
// out in a fixed order: new columns, column enum values, new parameters,
// parameter enum values, enum-backed validation patches one at a time,
// remaining parameter patches, then the general attribute patch. The
// sequence is not transactional; the first failure propagates with earlier
// requests already applied.
func (s *DataTemplatesService) Update(ctx context.Context, template *resources.DataTemplate) (*resources.DataTemplate, error) {
	if template == nil || template.ID == "" {
		return nil, validationError("data template id is required")
	}
	existing, err := s.GetByID(ctx, template.ID)
	if err != nil {
		return nil, err
	}

	general := patch.BuildPayload(existing, template, dataTemplateAttributes(), patch.Options{})
	set := patch.GenerateDataTemplatePatches(general, existing, template)
	basePath := dataTemplatesPath + "/" + template.ID

	if len(set.NewColumns) > 0 {
		if err := s.session.Put(ctx, basePath+"/datacolumns", dataColumnsBody{DataColumns: set.NewColumns}, nil); err != nil {
			return nil, err
		}
	}
	for _, sequence := range sortedKeys(set.ColumnEnums) {
		patches := set.ColumnEnums[sequence]
		if len(patches) == 0 {
			continue
		}
		if err := s.session.Put(ctx, basePath+"/datacolumns/"+sequence+"/enums", patches, nil); err != nil {
			return nil, err
		}
	}

	if len(set.NewParameters) > 0 {
		stripped, enumsByIndex := stripEnumValidations(set.NewParameters)
		var response parametersBody
		if err := s.session.Put(ctx, basePath+"/parameters", parametersBody{Parameters: stripped}, &response); err != nil {
			return nil, err
		}
		if restored := restoreEnumValidations(response.Parameters, enumsByIndex); len(restored) > 0 {
			if err := s.addParameterEnums(ctx, template.ID, restored); err != nil {
				return nil, err
			}
		}
	}

	// Enum value mutations change what a validation patch for the same row
	// would carry, so rows patched here get their validation refreshed from
	// the server's response instead.
	enumsBySequence := make(map[string][]resources.EnumValidationValue)
	for _, sequence := range sortedKeys(set.ParameterEnums) {
		patches := set.ParameterEnums[sequence]
		if len(patches) == 0 {
			continue
		}
		var returned []resources.EnumValidationValue
		if err := s.session.JSON(ctx, session.Request{
			Method: "PUT",
			Path:   basePath + "/parameters/" + sequence + "/enums",
			Body:   patches,
		}, &returned); err != nil {
			return nil, err
		}
		enumsBySequence[sequence] = returned
	}

	for _, sequence := range sortedKeys(enumsBySequence) {
		returned := enumsBySequence[sequence]
		if len(returned) == 0 {
			continue
		}
		validation := resources.ValueValidation{Datatype: resources.DataTypeEnum, Value: returned}
		payload := patch.Payload{Data: []patch.Datum{{
			Attribute: "validation",
			Operation: patch.OperationUpdate,
			RowID:     sequence,
			NewValue:  []resources.ValueValidation{validation},
		}}}
		if err := s.session.Patch(ctx, basePath+"/parameters", payload); err != nil {
			return nil, err
		}
	}

	remaining := make([]patch.Datum, 0, len(set.ParameterPatches))
	for _, datum := range set.ParameterPatches {
		if _, patched := enumsBySequence[datum.RowID]; patched && datum.Attribute == "validation" {
			continue
		}
		remaining = append(remaining, datum)
	}
	if len(remaining) > 0 {
		if err := s.session.Patch(ctx, basePath+"/parameters", patch.Payload{Data: remaining}); err != nil {
			return nil, err
		}
	}

	if !set.General.Empty() {
		if err := s.session.Patch(ctx, basePath, set.General); err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, template.ID)
}

func (s *DataTemplatesService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return validationError("data template id is required")
	}
	return s.session.Delete(ctx, dataTemplatesPath+"/"+id)
}

func enumValuesOf(validations []resources.ValueValidation) []resources.EnumValidationValue {
	if len(validations) == 0 || validations[0].Datatype != resources.DataTypeEnum {
		return nil
	}
	return validations[0].Value
}
