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

const teamsPath = "/teams"

// TeamRole is the fine-grained access class a user holds on a team.
type TeamRole string

const (
	TeamAdmin  TeamRole = "TeamAdmin"
	TeamMember TeamRole = "TeamMember"
	TeamViewer TeamRole = "TeamViewer"
)

// TeamsService manages teams and their memberships.
type TeamsService struct {
	session *session.Session
}

func NewTeamsService(sess *session.Session) *TeamsService {
	return &TeamsService{session: sess}
}

func (s *TeamsService) Create(ctx context.Context, team *resources.Team) (*resources.Team, error) {
	if team == nil {
		return nil, validationError("team is required")
	}
	var created resources.Team
	if err := s.session.Post(ctx, teamsPath, team, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *TeamsService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return validationError("team id is required")
	}
	return s.session.Delete(ctx, teamsPath+"/"+id)
}

// List streams teams, optionally filtered by name.
func (s *TeamsService) List(ctx context.Context, names ...string) iter.Seq2[resources.Team, error] {
	params := url.Values{}
	for _, name := range names {
		params.Add("name", name)
	}
	return pagination.Iterate(ctx, s.session, pagination.Options[resources.Team]{
		Path:   teamsPath,
		Mode:   pagination.ModeKey,
		Params: params,
	})
}

// aclEntry grants one user a role on a team.
type aclEntry struct {
	ID  string   `json:"id"`
	FGC TeamRole `json:"fgc"`
}

// AddUsers grants the given users a role on the team. The membership PATCH
// goes to the collection root wrapped in a per-team envelope.
func (s *TeamsService) AddUsers(ctx context.Context, teamID string, userIDs []string, role TeamRole) error {
	if teamID == "" {
		return validationError("team id is required")
	}
	if len(userIDs) == 0 {
		return validationError("at least one user id is required")
	}
	if role == "" {
		role = TeamViewer
	}

	entries := make([]aclEntry, 0, len(userIDs))
	for _, userID := range userIDs {
		entries = append(entries, aclEntry{ID: userID, FGC: role})
	}
	body := []patchEnvelope{{
		ID: teamID,
		Data: []patch.Datum{{
			Attribute: "ACL",
			Operation: patch.OperationAdd,
			NewValue:  entries,
		}},
	}}
	return s.session.Patch(ctx, teamsPath, body)
}
