// Package albert is a typed client for the Albert laboratory and inventory
// management platform. A Client bundles one authenticated session with the
// per-resource collection services; mutations go through minimal PATCH
// payloads computed by diffing resource snapshots.
package albert

import (
	"github.com/albert-labs/albert-go/collections"
	"github.com/albert-labs/albert-go/config"
	"github.com/albert-labs/albert-go/session"
)

// Client is the entry point to the Albert API. All services share one
// session and it is safe for concurrent use.
type Client struct {
	Session *session.Session

	Lots             *collections.LotsService
	Inventory        *collections.InventoryService
	DataTemplates    *collections.DataTemplatesService
	ParameterGroups  *collections.ParameterGroupsService
	CustomTemplates  *collections.CustomTemplatesService
	EntityTypes      *collections.EntityTypesService
	Tasks            *collections.TasksService
	Teams            *collections.TeamsService
	Tags             *collections.TagsService
	Units            *collections.UnitsService
	Users            *collections.UsersService
	Worksheets       *collections.WorksheetsService
	StorageLocations *collections.StorageLocationsService
}

// New builds a client for the given endpoint configuration.
func New(cfg session.Config) (*Client, error) {
	sess, err := session.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{
		Session:          sess,
		Lots:             collections.NewLotsService(sess),
		Inventory:        collections.NewInventoryService(sess),
		DataTemplates:    collections.NewDataTemplatesService(sess),
		ParameterGroups:  collections.NewParameterGroupsService(sess),
		CustomTemplates:  collections.NewCustomTemplatesService(sess),
		EntityTypes:      collections.NewEntityTypesService(sess),
		Tasks:            collections.NewTasksService(sess),
		Teams:            collections.NewTeamsService(sess),
		Tags:             collections.NewTagsService(sess),
		Units:            collections.NewUnitsService(sess),
		Users:            collections.NewUsersService(sess),
		Worksheets:       collections.NewWorksheetsService(sess),
		StorageLocations: collections.NewStorageLocationsService(sess),
	}, nil
}

// NewFromProfile builds a client from a configuration profile, as resolved
// from the profile catalog or environment variables.
func NewFromProfile(profile config.Profile) (*Client, error) {
	cfg := session.Config{
		BaseURL:        profile.BaseURL,
		Token:          profile.Token,
		DefaultHeaders: profile.DefaultHeaders,
	}
	if profile.OAuth2 != nil {
		cfg.OAuth2 = &session.OAuth2Config{
			TokenURL:     profile.OAuth2.TokenURL,
			ClientID:     profile.OAuth2.ClientID,
			ClientSecret: profile.OAuth2.ClientSecret,
			Scope:        profile.OAuth2.Scope,
		}
	}
	return New(cfg)
}
