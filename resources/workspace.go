package resources

type TaskState string

const (
	TaskStateUnclaimed TaskState = "Unclaimed"
	TaskStateClaimed   TaskState = "Claimed"
	TaskStateCompleted TaskState = "Completed"
	TaskStateClosed    TaskState = "Closed"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

type Task struct {
	ID         string       `json:"albertId,omitempty"`
	Name       string       `json:"name"`
	Category   string       `json:"category,omitempty"`
	Priority   TaskPriority `json:"priority,omitempty"`
	State      TaskState    `json:"state,omitempty"`
	DueDate    string       `json:"dueDate,omitempty"`
	ProjectID  string       `json:"parentId,omitempty"`
	LocationID string       `json:"locationId,omitempty"`
	Assignee   *EntityLink  `json:"AssignedTo,omitempty"`
	Tags       []Tag        `json:"Tags,omitempty"`
	Metadata   Metadata     `json:"Metadata,omitempty"`
}

type Team struct {
	ID      string       `json:"albertId,omitempty"`
	Name    string       `json:"name"`
	Members []EntityLink `json:"Members,omitempty"`
}

type Worksheet struct {
	ProjectID  string       `json:"projectId,omitempty"`
	SheetNames []string     `json:"sheetNames,omitempty"`
	Sheets     []EntityLink `json:"Sheets,omitempty"`
}

type User struct {
	ID       string      `json:"albertId,omitempty"`
	Name     string      `json:"name"`
	Email    string      `json:"email,omitempty"`
	Roles    []EntityLink `json:"Roles,omitempty"`
	Location *EntityLink `json:"Location,omitempty"`
}

type Unit struct {
	ID       string   `json:"albertId,omitempty"`
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol,omitempty"`
	Synonyms []string `json:"Synonyms,omitempty"`
	Category string   `json:"category,omitempty"`
}

type InventoryItem struct {
	ID            string      `json:"albertId,omitempty"`
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	Category      string      `json:"category,omitempty"`
	UnitCategory  string      `json:"unitCategory,omitempty"`
	SecurityClass string      `json:"class,omitempty"`
	Alias         string      `json:"alias,omitempty"`
	Company       *EntityLink `json:"Company,omitempty"`
	Tags          []Tag       `json:"Tags,omitempty"`
	Metadata      Metadata    `json:"Metadata,omitempty"`
}
