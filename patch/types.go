package patch

// Operation is the verb of one patch datum.
type Operation string

const (
	OperationAdd    Operation = "add"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Datum is one atomic patch operation targeting a single attribute. Add
// operations carry only NewValue, deletes only OldValue, updates both. RowID
// and ColID address sub-resources (parameters and data columns) inside a
// parent template. A datum with Actions is a grouping container: the nested
// data apply to the column named by ColID and carry no operation of
// their own at the top level.
type Datum struct {
	Attribute string    `json:"attribute"`
	Operation Operation `json:"operation,omitempty"`
	OldValue  any       `json:"oldValue,omitempty"`
	NewValue  any       `json:"newValue,omitempty"`
	RowID     string    `json:"rowId,omitempty"`
	ColID     string    `json:"colId,omitempty"`
	Actions   []Datum   `json:"actions,omitempty"`
}

// Payload is one logical update: an ordered list of data serialized as the
// body of a PATCH request.
type Payload struct {
	Data []Datum `json:"data"`
}

func (p Payload) Empty() bool {
	return len(p.Data) == 0
}

func (p *Payload) Append(data ...Datum) {
	p.Data = append(p.Data, data...)
}

// EnumPatch mutates one allowed enum value of a validation. Enum mutations go
// to a dedicated sub-resource endpoint, so this is not a Datum.
type EnumPatch struct {
	Operation Operation `json:"operation"`
	ID        string    `json:"id,omitempty"`
	Text      string    `json:"text,omitempty"`
}
