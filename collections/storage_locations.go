package collections

import (
	"context"
	"iter"
	"net/url"
	"strconv"
	"strings"

	"github.com/albert-labs/albert-go/debugctx"
	"github.com/albert-labs/albert-go/pagination"
	"github.com/albert-labs/albert-go/patch"
	"github.com/albert-labs/albert-go/resources"
	"github.com/albert-labs/albert-go/session"
)

const storageLocationsPath = "/storagelocations"

// StorageLocationsService manages the storage locations lots live in.
type StorageLocationsService struct {
	session *session.Session
}

func NewStorageLocationsService(sess *session.Session) *StorageLocationsService {
	return &StorageLocationsService{session: sess}
}

func storageLocationAttributes() []patch.Attribute[resources.StorageLocation] {
	return []patch.Attribute[resources.StorageLocation]{
		{Name: "name", Get: func(l *resources.StorageLocation) any { return stringValue(l.Name) }},
		{Name: "location", Alias: "locationId", Get: func(l *resources.StorageLocation) any { return linkID(l.Location) }},
	}
}

// Create registers a storage location. An existing location with the same
// name is returned instead of creating a duplicate.
func (s *StorageLocationsService) Create(ctx context.Context, location *resources.StorageLocation) (*resources.StorageLocation, error) {
	if location == nil || location.Name == "" {
		return nil, validationError("storage location name is required")
	}
	for match, err := range s.List(ctx, ListStorageLocationsOptions{Name: location.Name, ExactMatch: true}) {
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(match.Name, location.Name) {
			debugctx.Warnf(ctx, "storage location %q already exists as %s", location.Name, match.ID)
			return &match, nil
		}
	}

	var created resources.StorageLocation
	if err := s.session.Post(ctx, storageLocationsPath, location, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *StorageLocationsService) GetByID(ctx context.Context, id string) (*resources.StorageLocation, error) {
	var location resources.StorageLocation
	if err := s.session.Get(ctx, storageLocationsPath+"/"+id, nil, &location); err != nil {
		return nil, err
	}
	return &location, nil
}

func (s *StorageLocationsService) Update(ctx context.Context, location *resources.StorageLocation) (*resources.StorageLocation, error) {
	if location == nil || location.ID == "" {
		return nil, validationError("storage location id is required")
	}
	existing, err := s.GetByID(ctx, location.ID)
	if err != nil {
		return nil, err
	}

	payload := patch.BuildPayload(existing, location, storageLocationAttributes(), patch.Options{})
	if payload.Empty() {
		return existing, nil
	}
	if err := s.session.Patch(ctx, storageLocationsPath+"/"+location.ID, payload); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, location.ID)
}

func (s *StorageLocationsService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return validationError("storage location id is required")
	}
	return s.session.Delete(ctx, storageLocationsPath+"/"+id)
}

// ListStorageLocationsOptions filter the storage location listing.
type ListStorageLocationsOptions struct {
	Name       string
	LocationID string
	ExactMatch bool
	MaxItems   int
}

func (o ListStorageLocationsOptions) values() url.Values {
	values := url.Values{}
	if o.Name != "" {
		values.Set("name", o.Name)
		values.Set("exactMatch", strconv.FormatBool(o.ExactMatch))
	}
	if o.LocationID != "" {
		values.Set("locationId", o.LocationID)
	}
	return values
}

// List streams storage locations matching the filters.
func (s *StorageLocationsService) List(ctx context.Context, opts ListStorageLocationsOptions) iter.Seq2[resources.StorageLocation, error] {
	return pagination.Iterate(ctx, s.session, pagination.Options[resources.StorageLocation]{
		Path:     storageLocationsPath,
		Mode:     pagination.ModeKey,
		Params:   opts.values(),
		MaxItems: opts.MaxItems,
	})
}
