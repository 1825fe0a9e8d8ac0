package collections

import (
	"context"
	"net/url"
	"strconv"

	"github.com/albert-labs/albert-go/resources"
	"github.com/albert-labs/albert-go/session"
)

const worksheetsPath = "/worksheet"

// WorksheetsService manages project worksheets. Worksheets map 1:1 to
// projects, so every operation is keyed by project id.
type WorksheetsService struct {
	session *session.Session
}

func NewWorksheetsService(sess *session.Session) *WorksheetsService {
	return &WorksheetsService{session: sess}
}

func (s *WorksheetsService) GetByProjectID(ctx context.Context, projectID string) (*resources.Worksheet, error) {
	if projectID == "" {
		return nil, validationError("project id is required")
	}
	var worksheet resources.Worksheet
	query := url.Values{"type": {"project"}, "id": {projectID}}
	if err := s.session.Get(ctx, worksheetsPath, query, &worksheet); err != nil {
		return nil, err
	}
	return &worksheet, nil
}

// Setup initializes the worksheet of a project, optionally seeding it with a
// blank sheet.
func (s *WorksheetsService) Setup(ctx context.Context, projectID string, addSheet bool) (*resources.Worksheet, error) {
	if projectID == "" {
		return nil, validationError("project id is required")
	}
	body := map[string]string{"sheets": strconv.FormatBool(addSheet)}
	if err := s.session.Post(ctx, worksheetsPath+"/"+projectID+"/setup", body, nil); err != nil {
		return nil, err
	}
	return s.GetByProjectID(ctx, projectID)
}

// AddSheet appends a blank sheet with the given name to a project's
// worksheet.
func (s *WorksheetsService) AddSheet(ctx context.Context, projectID, sheetName string) (*resources.Worksheet, error) {
	if projectID == "" {
		return nil, validationError("project id is required")
	}
	if sheetName == "" {
		return nil, validationError("sheet name is required")
	}
	body := map[string]string{"name": sheetName}
	if err := s.session.Put(ctx, worksheetsPath+"/project/"+projectID+"/sheets", body, nil); err != nil {
		return nil, err
	}
	return s.GetByProjectID(ctx, projectID)
}

// AddSheetFromTemplate appends a sheet created from a sheet template.
func (s *WorksheetsService) AddSheetFromTemplate(ctx context.Context, projectID, templateID, sheetName string) (*resources.Worksheet, error) {
	if projectID == "" {
		return nil, validationError("project id is required")
	}
	if templateID == "" {
		return nil, validationError("sheet template id is required")
	}
	if err := s.session.JSON(ctx, session.Request{
		Method: "POST",
		Path:   worksheetsPath + "/project/" + projectID + "/sheets",
		Query:  url.Values{"templateId": {templateID}},
		Body:   map[string]string{"name": sheetName},
	}, nil); err != nil {
		return nil, err
	}
	return s.GetByProjectID(ctx, projectID)
}
