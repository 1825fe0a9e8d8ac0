package collections

import (
	"context"
	"encoding/json"
	"iter"
	"net/url"

	"github.com/albert-labs/albert-go/debugctx"
	"github.com/albert-labs/albert-go/pagination"
	"github.com/albert-labs/albert-go/patch"
	"github.com/albert-labs/albert-go/resources"
	"github.com/albert-labs/albert-go/session"
)

const customTemplatesPath = "/customtemplates"

// CustomTemplatesService manages custom entity templates.
type CustomTemplatesService struct {
	session *session.Session
	tags    *TagsService
}

func NewCustomTemplatesService(sess *session.Session) *CustomTemplatesService {
	return &CustomTemplatesService{session: sess, tags: NewTagsService(sess)}
}

func customTemplateAttributes() []patch.Attribute[resources.CustomTemplate] {
	return []patch.Attribute[resources.CustomTemplate]{
		{Name: "name", Get: func(t *resources.CustomTemplate) any { return stringValue(t.Name) }},
		{Name: patch.MetadataAttribute, Alias: "Metadata", Get: func(t *resources.CustomTemplate) any { return t.Metadata }},
	}
}

// Create registers a custom template. The creation endpoint echoes tags as
// bare id references; they are re-resolved so the returned entity carries
// names. A tag that fails to resolve keeps its id and logs a warning.
func (s *CustomTemplatesService) Create(ctx context.Context, template *resources.CustomTemplate) (*resources.CustomTemplate, error) {
	if template == nil {
		return nil, validationError("custom template is required")
	}

	response, err := s.session.Do(ctx, session.Request{
		Method: "POST",
		Path:   customTemplatesPath,
		Body:   []resources.CustomTemplate{*template},
	})
	if err != nil {
		return nil, err
	}
	var created []resources.CustomTemplate
	if err := json.Unmarshal(response.Body, &created); err != nil {
		return nil, internalError("decoding created custom template", err)
	}
	if len(created) == 0 {
		return nil, internalError("custom template creation returned no entity", nil)
	}

	result := created[0]
	for i, tag := range result.Tags {
		if tag.Name != "" || tag.ID == "" {
			continue
		}
		resolved, err := s.tags.GetByID(ctx, tag.ID)
		if err != nil {
			debugctx.Warnf(ctx, "resolving tag %q on custom template %q: %v", tag.ID, result.ID, err)
			continue
		}
		result.Tags[i] = *resolved
	}
	return &result, nil
}

func (s *CustomTemplatesService) GetByID(ctx context.Context, id string) (*resources.CustomTemplate, error) {
	var template resources.CustomTemplate
	if err := s.session.Get(ctx, customTemplatesPath+"/"+id, nil, &template); err != nil {
		return nil, err
	}
	return &template, nil
}

// SearchCustomTemplatesOptions filter the custom template search.
type SearchCustomTemplatesOptions struct {
	Text     string
	MaxItems int
}

// Search streams partial custom template entities matching the filters.
func (s *CustomTemplatesService) Search(ctx context.Context, opts SearchCustomTemplatesOptions) iter.Seq2[resources.CustomTemplate, error] {
	params := url.Values{}
	if opts.Text != "" {
		params.Set("text", opts.Text)
	}
	return pagination.Iterate(ctx, s.session, pagination.Options[resources.CustomTemplate]{
		Path:     customTemplatesPath + "/search",
		Mode:     pagination.ModeOffset,
		Params:   params,
		MaxItems: opts.MaxItems,
	})
}

// Update patches a custom template to match the given snapshot. The patch
// goes to the collection root wrapped in a per-template envelope.
func (s *CustomTemplatesService) Update(ctx context.Context, template *resources.CustomTemplate) (*resources.CustomTemplate, error) {
	if template == nil || template.ID == "" {
		return nil, validationError("custom template id is required")
	}
	existing, err := s.GetByID(ctx, template.ID)
	if err != nil {
		return nil, err
	}

	payload := patch.BuildPayload(existing, template, customTemplateAttributes(), patch.Options{})
	payload.Append(patch.DiffTagIDs(existing.Tags, template.Tags, "tagId")...)
	if payload.Empty() {
		return existing, nil
	}

	body := []patchEnvelope{{ID: template.ID, Data: payload.Data}}
	if err := s.session.Patch(ctx, customTemplatesPath, body); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, template.ID)
}

func (s *CustomTemplatesService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return validationError("custom template id is required")
	}
	return s.session.Delete(ctx, customTemplatesPath+"/"+id)
}
