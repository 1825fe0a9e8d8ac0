package resources

type EntityCategory string

const (
	EntityCategoryStandard EntityCategory = "standard"
	EntityCategoryCustom   EntityCategory = "custom"
)

type EntityServiceType string

const (
	EntityServiceTasks     EntityServiceType = "tasks"
	EntityServiceInventory EntityServiceType = "inventories"
	EntityServiceProjects  EntityServiceType = "projects"
)

type FieldSection string

const (
	FieldSectionTop    FieldSection = "top"
	FieldSectionBottom FieldSection = "bottom"
)

type EntityCustomField struct {
	ID      string       `json:"id"`
	Section FieldSection `json:"section"`
	Hidden  bool         `json:"hidden"`
	Default any          `json:"default,omitempty"`
}

// StandardFieldVisibility toggles the built-in fields shown for an entity
// type. Each field patches individually as
// "standardFieldVisibility.<alias>".
type StandardFieldVisibility struct {
	Notes   bool `json:"Notes"`
	Tags    bool `json:"Tags"`
	DueDate bool `json:"DueDate"`
}

type SearchQueryStrings struct {
	DataTemplates   string `json:"DAT,omitempty"`
	ParameterGroups string `json:"PRG,omitempty"`
}

type EntityType struct {
	ID                      string                   `json:"albertId,omitempty"`
	Category                EntityCategory           `json:"category,omitempty"`
	CustomCategory          string                   `json:"customCategory,omitempty"`
	Label                   string                   `json:"label"`
	Service                 EntityServiceType        `json:"service,omitempty"`
	Prefix                  string                   `json:"prefix,omitempty"`
	TemplateBased           *bool                    `json:"templateBased,omitempty"`
	LockedTemplate          *bool                    `json:"lockedTemplate,omitempty"`
	CustomFields            []EntityCustomField      `json:"customFields,omitempty"`
	StandardFieldVisibility *StandardFieldVisibility `json:"standardFieldVisibility,omitempty"`
	SearchQueryStrings      *SearchQueryStrings      `json:"searchQueryString,omitempty"`
	Metadata                Metadata                 `json:"Metadata,omitempty"`
}

type EntityTypeRule struct {
	Attribute string `json:"attribute"`
	Operator  string `json:"operator"`
	Value     any    `json:"value,omitempty"`
}

func Bool(value bool) *bool {
	return &value
}
