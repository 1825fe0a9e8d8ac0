package collections

import (
	"context"
	"iter"
	"net/url"
	"strings"

	"github.com/albert-labs/albert-go/pagination"
	"github.com/albert-labs/albert-go/resources"
	"github.com/albert-labs/albert-go/session"
)

const usersPath = "/users"

// UsersService reads platform users. Users are managed through the admin
// console; this client only resolves and searches them.
type UsersService struct {
	session *session.Session
}

func NewUsersService(sess *session.Session) *UsersService {
	return &UsersService{session: sess}
}

func (s *UsersService) GetByID(ctx context.Context, id string) (*resources.User, error) {
	var user resources.User
	if err := s.session.Get(ctx, usersPath+"/"+id, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Current resolves the user the session authenticates as. The access token's
// subject claim carries the user id; tenant-qualified subjects
// ("TEN123#UA456") reduce to the trailing user id.
func (s *UsersService) Current(ctx context.Context) (*resources.User, error) {
	subject, err := s.session.Subject(ctx)
	if err != nil {
		return nil, err
	}
	if at := strings.LastIndex(subject, "#"); at >= 0 {
		subject = subject[at+1:]
	}
	if subject == "" {
		return nil, validationError("access token carries no subject")
	}
	return s.GetByID(ctx, subject)
}

// SearchUsersOptions filter the user search. Name and Email restrict which
// fields Text matches against; with neither set the server searches all
// fields.
type SearchUsersOptions struct {
	Text     string
	Name     bool
	Email    bool
	MaxItems int
}

func (o SearchUsersOptions) values() url.Values {
	values := url.Values{"status": {string(resources.StatusActive)}}
	if o.Text == "" {
		return values
	}
	values.Set("text", o.Text)
	if o.Name {
		values.Add("searchFields", "name")
	}
	if o.Email {
		values.Add("searchFields", "mail")
	}
	return values
}

// Search streams active users matching the given criteria.
func (s *UsersService) Search(ctx context.Context, opts SearchUsersOptions) iter.Seq2[resources.User, error] {
	return pagination.Iterate(ctx, s.session, pagination.Options[resources.User]{
		Path:     usersPath + "/search",
		Mode:     pagination.ModeOffset,
		Params:   opts.values(),
		MaxItems: opts.MaxItems,
	})
}
