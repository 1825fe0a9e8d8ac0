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

const tagsPath = "/tags"

// TagsService manages the shared tag vocabulary.
type TagsService struct {
	session *session.Session
}

func NewTagsService(sess *session.Session) *TagsService {
	return &TagsService{session: sess}
}

// Create registers a tag name. Creation is idempotent from the caller's
// view: an already existing tag is returned as-is.
func (s *TagsService) Create(ctx context.Context, name string) (*resources.Tag, error) {
	if name == "" {
		return nil, validationError("tag name is required")
	}
	if existing, err := s.GetByName(ctx, name); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	var created resources.Tag
	if err := s.session.Post(ctx, tagsPath, map[string]string{"name": name}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *TagsService) GetByID(ctx context.Context, id string) (*resources.Tag, error) {
	var tag resources.Tag
	if err := s.session.Get(ctx, tagsPath+"/"+id, nil, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetByName resolves a tag by exact name, or nil when absent.
func (s *TagsService) GetByName(ctx context.Context, name string) (*resources.Tag, error) {
	for tag, err := range s.List(ctx, ListTagsOptions{Name: name, ExactMatch: true}) {
		if err != nil {
			return nil, err
		}
		return &tag, nil
	}
	return nil, nil
}

// Exists reports whether a tag with the given name is registered.
func (s *TagsService) Exists(ctx context.Context, name string) (bool, error) {
	tag, err := s.GetByName(ctx, name)
	return tag != nil, err
}

// ListTagsOptions filter the tag listing.
type ListTagsOptions struct {
	Name       string
	ExactMatch bool
	OrderBy    resources.OrderBy
	MaxItems   int
}

func (o ListTagsOptions) values() url.Values {
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
	return values
}

// List streams tags matching the filters.
func (s *TagsService) List(ctx context.Context, opts ListTagsOptions) iter.Seq2[resources.Tag, error] {
	return pagination.Iterate(ctx, s.session, pagination.Options[resources.Tag]{
		Path:     tagsPath,
		Mode:     pagination.ModeKey,
		Params:   opts.values(),
		MaxItems: opts.MaxItems,
	})
}

// Rename changes a tag's name in place, preserving its id and every
// association. Returns the refreshed tag.
func (s *TagsService) Rename(ctx context.Context, oldName, newName string) (*resources.Tag, error) {
	if oldName == "" || newName == "" {
		return nil, validationError("both the current and the new tag name are required")
	}
	existing, err := s.GetByName(ctx, oldName)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, notFoundError("tag %q does not exist", oldName)
	}

	body := []patchEnvelope{{
		ID: existing.ID,
		Data: []patch.Datum{{
			Attribute: "name",
			Operation: patch.OperationUpdate,
			OldValue:  oldName,
			NewValue:  newName,
		}},
	}}
	if err := s.session.Patch(ctx, tagsPath, body); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, existing.ID)
}

func (s *TagsService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return validationError("tag id is required")
	}
	return s.session.Delete(ctx, tagsPath+"/"+id)
}
