package collections

import (
	"context"
	"encoding/json"
	"iter"
	"net/url"

	"github.com/albert-labs/albert-go/pagination"
	"github.com/albert-labs/albert-go/patch"
	"github.com/albert-labs/albert-go/resources"
	"github.com/albert-labs/albert-go/session"
)

const tasksPath = "/tasks"

// TasksService manages tasks. The task endpoints wrap bodies differently
// from the rest of the platform: creation and patching both take a list of
// per-task envelopes.
type TasksService struct {
	session *session.Session
}

func NewTasksService(sess *session.Session) *TasksService {
	return &TasksService{session: sess}
}

func taskAttributes() []patch.Attribute[resources.Task] {
	return []patch.Attribute[resources.Task]{
		{Name: patch.MetadataAttribute, Alias: "Metadata", Get: func(t *resources.Task) any { return t.Metadata }},
		{Name: "name", Get: func(t *resources.Task) any { return stringValue(t.Name) }},
		{Name: "priority", Get: func(t *resources.Task) any { return stringValue(string(t.Priority)) }},
		{Name: "state", Get: func(t *resources.Task) any { return stringValue(string(t.State)) }},
		{Name: "due_date", Alias: "dueDate", Get: func(t *resources.Task) any { return stringValue(t.DueDate) }},
	}
}

// Create registers a task under its category endpoint.
func (s *TasksService) Create(ctx context.Context, task *resources.Task) (*resources.Task, error) {
	if task == nil {
		return nil, validationError("task is required")
	}
	if task.Category == "" {
		return nil, validationError("task category is required")
	}

	query := url.Values{"category": {task.Category}}
	if task.ProjectID != "" {
		query.Set("parentId", task.ProjectID)
	}
	response, err := s.session.Do(ctx, session.Request{
		Method: "POST",
		Path:   tasksPath + "/multi",
		Query:  query,
		Body:   []resources.Task{*task},
	})
	if err != nil {
		return nil, err
	}
	var created []resources.Task
	if err := json.Unmarshal(response.Body, &created); err != nil {
		return nil, internalError("decoding created task", err)
	}
	if len(created) == 0 {
		return nil, internalError("task creation returned no task", nil)
	}
	return &created[0], nil
}

func (s *TasksService) GetByID(ctx context.Context, id string) (*resources.Task, error) {
	var task resources.Task
	if err := s.session.Get(ctx, tasksPath+"/multi/"+id, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TasksService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return validationError("task id is required")
	}
	return s.session.Delete(ctx, tasksPath+"/"+id)
}

// SearchTasksOptions filter the task search. List-valued filters travel as
// repeated query parameters.
type SearchTasksOptions struct {
	Text       string
	Category   string
	ProjectID  string
	AssignedTo []string
	Priority   []string
	Status     []string
	Tags       []string
	SortBy     string
	OrderBy    resources.OrderBy
	MaxItems   int
}

func (o SearchTasksOptions) values() url.Values {
	order := o.OrderBy
	if order == "" {
		order = resources.OrderDescending
	}
	values := url.Values{"order": {string(order)}}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set("text", o.Text)
	set("category", o.Category)
	set("projectId", o.ProjectID)
	set("sortBy", o.SortBy)
	for _, name := range o.AssignedTo {
		values.Add("assignedTo", name)
	}
	for _, priority := range o.Priority {
		values.Add("priority", priority)
	}
	for _, status := range o.Status {
		values.Add("status", status)
	}
	for _, tag := range o.Tags {
		values.Add("tags", tag)
	}
	return values
}

// Search streams partial task entities matching the filters.
func (s *TasksService) Search(ctx context.Context, opts SearchTasksOptions) iter.Seq2[resources.Task, error] {
	return pagination.Iterate(ctx, s.session, pagination.Options[resources.Task]{
		Path:     tasksPath + "/search",
		Mode:     pagination.ModeOffset,
		Params:   opts.values(),
		MaxItems: opts.MaxItems,
	})
}

// Update patches a task to match the given snapshot. The task endpoint
// rejects multi-datum payloads, so each datum travels in its own request.
func (s *TasksService) Update(ctx context.Context, task *resources.Task) (*resources.Task, error) {
	if task == nil || task.ID == "" {
		return nil, validationError("task id is required")
	}
	existing, err := s.GetByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	payload := patch.BuildPayload(existing, task, taskAttributes(), patch.Options{})
	payload.Append(patch.DiffTagIDs(existing.Tags, task.Tags, "tagId")...)
	payload.Append(assigneePatch(existing.Assignee, task.Assignee)...)
	if payload.Empty() {
		return existing, nil
	}

	for _, datum := range payload.Data {
		body := []patchEnvelope{{ID: task.ID, Data: []patch.Datum{datum}}}
		if err := s.session.Patch(ctx, tasksPath+"/"+task.ID, body); err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, task.ID)
}

// assigneePatch diffs the task assignee. The replaced assignee must go on
// the wire as a bare id link; sending the name alongside is rejected.
func assigneePatch(existing, updated *resources.EntityLink) []patch.Datum {
	switch {
	case updated == nil && existing == nil:
		return nil
	case existing == nil:
		return []patch.Datum{{
			Attribute: "AssignedTo",
			Operation: patch.OperationAdd,
			NewValue:  updated,
		}}
	case updated == nil:
		return []patch.Datum{{
			Attribute: "AssignedTo",
			Operation: patch.OperationDelete,
			OldValue:  existing,
		}}
	case updated.ID == existing.ID:
		return nil
	default:
		return []patch.Datum{{
			Attribute: "AssignedTo",
			Operation: patch.OperationUpdate,
			OldValue:  resources.Link(existing.ID),
			NewValue:  updated,
		}}
	}
}
