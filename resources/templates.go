package resources

type DataType string

const (
	DataTypeString DataType = "string"
	DataTypeNumber DataType = "number"
	DataTypeEnum   DataType = "enum"
)

// EnumValidationValue is one allowed enum entry of a validation. OriginalText
// is a server round-trip artifact carrying the text an entry was renamed
// from; it never participates in equality.
type EnumValidationValue struct {
	ID           string `json:"id,omitempty"`
	Text         string `json:"text"`
	OriginalText string `json:"originalText,omitempty"`
}

type ValueValidation struct {
	Datatype DataType              `json:"datatype"`
	Value    []EnumValidationValue `json:"value,omitempty"`
	Min      string                `json:"min,omitempty"`
	Max      string                `json:"max,omitempty"`
}

// DataColumnValue is a data column bound to a data template. Sequence is the
// server-assigned column address ("COL1", ...); it is empty until the column
// has been created server-side.
type DataColumnValue struct {
	DataColumnID string            `json:"id,omitempty"`
	Name         string            `json:"name,omitempty"`
	Sequence     string            `json:"sequence,omitempty"`
	Value        any               `json:"value,omitempty"`
	Unit         *EntityLink       `json:"Unit,omitempty"`
	Validation   []ValueValidation `json:"validation,omitempty"`
	Calculation  string            `json:"calculation,omitempty"`
	Hidden       bool              `json:"hidden,omitempty"`
}

// ParameterValue is a parameter bound to a data template or parameter group,
// addressed by its server-assigned row sequence ("ROW1", ...).
type ParameterValue struct {
	ID         string            `json:"id,omitempty"`
	Name       string            `json:"name,omitempty"`
	ShortName  string            `json:"shortName,omitempty"`
	Sequence   string            `json:"sequence,omitempty"`
	Value      any               `json:"value,omitempty"`
	Unit       *EntityLink       `json:"Unit,omitempty"`
	Validation []ValueValidation `json:"validation,omitempty"`
	Added      *AuditFields      `json:"Added,omitempty"`
}

type DataTemplate struct {
	ID          string            `json:"albertId,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Status      Status            `json:"status,omitempty"`
	Metadata    Metadata          `json:"Metadata,omitempty"`
	Tags        []Tag             `json:"Tags,omitempty"`
	DataColumns []DataColumnValue `json:"DataColumns,omitempty"`
	Parameters  []ParameterValue  `json:"Parameters,omitempty"`
}

type ParameterGroupType string

const (
	ParameterGroupGeneral  ParameterGroupType = "general"
	ParameterGroupBatch    ParameterGroupType = "batch"
	ParameterGroupProperty ParameterGroupType = "property"
)

type ParameterGroup struct {
	ID            string             `json:"albertId,omitempty"`
	Name          string             `json:"name"`
	Description   string             `json:"description,omitempty"`
	Type          ParameterGroupType `json:"type,omitempty"`
	SecurityClass string             `json:"class,omitempty"`
	Status        Status             `json:"status,omitempty"`
	Metadata      Metadata           `json:"Metadata,omitempty"`
	Tags          []Tag              `json:"Tags,omitempty"`
	Parameters    []ParameterValue   `json:"Parameters,omitempty"`
	Documents     []EntityLink       `json:"Documents,omitempty"`
}

type CustomTemplate struct {
	ID       string   `json:"albertId,omitempty"`
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Metadata Metadata `json:"Metadata,omitempty"`
	Tags     []Tag    `json:"Tags,omitempty"`
}
