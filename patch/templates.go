package patch

import (
	"reflect"

	"github.com/albert-labs/albert-go/resources"
)

// Structural children of data templates and parameter groups (data columns,
// parameters, their validations and enum value lists) do not go through the
// generic attribute differ. They are diffed here, keyed by the
// server-assigned sequence, and addressed on the wire through rowId/colId.
// Children without a sequence are new: they are created in full through the
// add-columns/add-parameters endpoints and never diffed.

// DataTemplatePatchSet is everything one data template update needs, split by
// destination endpoint.
type DataTemplatePatchSet struct {
	General          Payload
	NewColumns       []resources.DataColumnValue
	ColumnEnums      map[string][]EnumPatch
	NewParameters    []resources.ParameterValue
	ParameterEnums   map[string][]EnumPatch
	ParameterPatches []Datum
}

// GenerateDataTemplatePatches extends the general attribute payload with data
// column and tag patches, and computes the parameter and enum patch sets that
// go to their own endpoints.
func GenerateDataTemplatePatches(general Payload, existing, updated *resources.DataTemplate) DataTemplatePatchSet {
	columnPatches, newColumns, columnEnums := GenerateDataColumnPatches(existing.DataColumns, updated.DataColumns)
	general.Append(columnPatches...)
	general.Append(DiffTagIDs(existing.Tags, updated.Tags, "tag")...)

	parameterPatches, newParameters, parameterEnums := GenerateParameterPatches(
		existing.Parameters, updated.Parameters, "parameters")

	return DataTemplatePatchSet{
		General:          general,
		NewColumns:       newColumns,
		ColumnEnums:      columnEnums,
		NewParameters:    newParameters,
		ParameterEnums:   parameterEnums,
		ParameterPatches: parameterPatches,
	}
}

// ParameterGroupPatchSet carries a parameter group update: parameter and tag
// patches fold into the general payload, while enum mutations and new
// parameters go to their own endpoints.
type ParameterGroupPatchSet struct {
	General        Payload
	NewParameters  []resources.ParameterValue
	ParameterEnums map[string][]EnumPatch
}

func GenerateParameterGroupPatches(general Payload, existing, updated *resources.ParameterGroup) ParameterGroupPatchSet {
	parameterPatches, newParameters, parameterEnums := GenerateParameterPatches(
		existing.Parameters, updated.Parameters, "parameter")
	general.Append(parameterPatches...)
	general.Append(DiffTagIDs(existing.Tags, updated.Tags, "tagId")...)

	return ParameterGroupPatchSet{
		General:        general,
		NewParameters:  newParameters,
		ParameterEnums: parameterEnums,
	}
}

// GenerateDataColumnPatches partitions columns by sequence into new, deleted
// and matched, diffs the matched ones, and collects enum mutations per
// sequence. Value and validation changes of one column nest as actions inside
// a grouping datum for that column; unit changes travel flat.
func GenerateDataColumnPatches(
	existing, updated []resources.DataColumnValue,
) ([]Datum, []resources.DataColumnValue, map[string][]EnumPatch) {
	patches := make([]Datum, 0)
	enums := make(map[string][]EnumPatch)

	existingBySequence := make(map[string]resources.DataColumnValue, len(existing))
	for _, column := range existing {
		if column.Sequence != "" {
			existingBySequence[column.Sequence] = column
		}
	}
	updatedSequences := make(map[string]struct{}, len(updated))

	newColumns := make([]resources.DataColumnValue, 0)
	for _, column := range updated {
		if column.Sequence != "" {
			updatedSequences[column.Sequence] = struct{}{}
		}
		if _, found := existingBySequence[column.Sequence]; !found || column.Sequence == "" {
			newColumns = append(newColumns, column)
		}
	}

	for _, column := range existing {
		if column.Sequence == "" {
			continue
		}
		if _, found := updatedSequences[column.Sequence]; !found {
			patches = append(patches, Datum{
				Attribute: "datacolumn",
				Operation: OperationDelete,
				OldValue:  column.Sequence,
			})
		}
	}

	for _, column := range updated {
		initial, found := existingBySequence[column.Sequence]
		if column.Sequence == "" || !found {
			continue
		}

		actions := make([]Datum, 0, 2)
		if datum, ok := dataColumnValuePatch(initial, column); ok {
			actions = append(actions, datum)
		}
		if datum, ok := dataColumnValidationPatch(initial, column); ok {
			actions = append(actions, datum)
		}
		// actions are addressed by the wrapping datum; they must not carry
		// their own colId
		for i := range actions {
			actions[i].ColID = ""
		}
		if len(actions) > 0 {
			patches = append(patches, Datum{
				Attribute: "datacolumn",
				ColID:     column.Sequence,
				Actions:   actions,
			})
		}

		if datum, ok := dataColumnUnitPatch(initial, column); ok {
			patches = append(patches, datum)
		}

		if hasEnumValidation(column.Validation) {
			enumPatches := GenerateEnumPatches(enumValues(initial.Validation), enumValues(column.Validation))
			if len(enumPatches) > 0 {
				enums[column.Sequence] = enumPatches
			}
		}
	}

	return patches, newColumns, enums
}

// GenerateParameterPatches is the row-addressed analogue of the data column
// differ. Deleted parameters collapse into a single delete datum carrying the
// list of removed sequences.
func GenerateParameterPatches(
	existing, updated []resources.ParameterValue, attributeName string,
) ([]Datum, []resources.ParameterValue, map[string][]EnumPatch) {
	patches := make([]Datum, 0)
	enums := make(map[string][]EnumPatch)

	existingBySequence := make(map[string]resources.ParameterValue, len(existing))
	for _, parameter := range existing {
		if parameter.Sequence != "" {
			existingBySequence[parameter.Sequence] = parameter
		}
	}
	updatedSequences := make(map[string]struct{}, len(updated))

	newParameters := make([]resources.ParameterValue, 0)
	for _, parameter := range updated {
		if parameter.Sequence != "" {
			updatedSequences[parameter.Sequence] = struct{}{}
		}
		if _, found := existingBySequence[parameter.Sequence]; !found || parameter.Sequence == "" {
			newParameters = append(newParameters, parameter)
		}
	}

	deletedSequences := make([]string, 0)
	for _, parameter := range existing {
		if parameter.Sequence == "" {
			continue
		}
		if _, found := updatedSequences[parameter.Sequence]; !found {
			deletedSequences = append(deletedSequences, parameter.Sequence)
		}
	}
	if len(deletedSequences) > 0 {
		patches = append(patches, Datum{
			Attribute: attributeName,
			Operation: OperationDelete,
			OldValue:  deletedSequences,
		})
	}

	for _, parameter := range updated {
		initial, found := existingBySequence[parameter.Sequence]
		if parameter.Sequence == "" || !found {
			continue
		}

		if datum, ok := parameterUnitPatch(initial, parameter); ok {
			patches = append(patches, datum)
		}
		if datum, ok := parameterValuePatch(initial, parameter); ok {
			patches = append(patches, datum)
		}
		if datum, ok := parameterValidationPatch(initial, parameter); ok {
			patches = append(patches, datum)
		}

		if hasEnumValidation(parameter.Validation) {
			enumPatches := GenerateEnumPatches(enumValues(initial.Validation), enumValues(parameter.Validation))
			if len(enumPatches) > 0 {
				enums[parameter.Sequence] = enumPatches
			}
		}
	}

	return patches, newParameters, enums
}

// GenerateEnumPatches diffs two allowed-enum lists by id. Entries without an
// id are additions by text; ids present only in existing are deletions; ids
// present in both with changed text are updates.
func GenerateEnumPatches(existing, updated []resources.EnumValidationValue) []EnumPatch {
	existingByID := make(map[string]resources.EnumValidationValue, len(existing))
	for _, value := range existing {
		if value.ID != "" {
			existingByID[value.ID] = value
		}
	}
	updatedIDs := make(map[string]struct{}, len(updated))
	for _, value := range updated {
		if value.ID != "" {
			updatedIDs[value.ID] = struct{}{}
		}
	}

	patches := make([]EnumPatch, 0)
	for _, value := range updated {
		if _, found := existingByID[value.ID]; value.ID == "" || !found {
			patches = append(patches, EnumPatch{Operation: OperationAdd, Text: value.Text})
		}
	}
	for _, value := range existing {
		if value.ID == "" {
			continue
		}
		if _, found := updatedIDs[value.ID]; !found {
			patches = append(patches, EnumPatch{Operation: OperationDelete, ID: value.ID})
		}
	}
	for _, value := range updated {
		if value.ID == "" {
			continue
		}
		if previous, found := existingByID[value.ID]; found && previous.Text != value.Text {
			patches = append(patches, EnumPatch{Operation: OperationUpdate, ID: value.ID, Text: value.Text})
		}
	}
	return patches
}

func dataColumnUnitPatch(initial, updated resources.DataColumnValue) (Datum, bool) {
	return unitPatch(initial.Unit, updated.Unit, "unit", Datum{ColID: initial.Sequence})
}

func parameterUnitPatch(initial, updated resources.ParameterValue) (Datum, bool) {
	return unitPatch(initial.Unit, updated.Unit, "unitId", Datum{RowID: updated.Sequence})
}

func unitPatch(initial, updated *resources.EntityLink, attribute string, address Datum) (Datum, bool) {
	datum := address
	datum.Attribute = attribute
	switch {
	case initial == nil && updated == nil:
		return Datum{}, false
	case initial == nil:
		datum.Operation = OperationAdd
		datum.NewValue = updated.ID
		return datum, true
	case updated == nil:
		datum.Operation = OperationDelete
		datum.OldValue = initial.ID
		return datum, true
	case initial.ID != updated.ID:
		datum.Operation = OperationUpdate
		datum.OldValue = initial.ID
		datum.NewValue = updated.ID
		return datum, true
	default:
		return Datum{}, false
	}
}

func dataColumnValuePatch(initial, updated resources.DataColumnValue) (Datum, bool) {
	return valuePatch(initial.Value, updated.Value, Datum{ColID: initial.Sequence})
}

func parameterValuePatch(initial, updated resources.ParameterValue) (Datum, bool) {
	return valuePatch(initial.Value, updated.Value, Datum{RowID: updated.Sequence})
}

func valuePatch(initial, updated any, address Datum) (Datum, bool) {
	initial = normalizeValue(initial)
	updated = normalizeValue(updated)

	datum := address
	datum.Attribute = "value"
	switch {
	case reflect.DeepEqual(initial, updated):
		return Datum{}, false
	case initial == nil:
		datum.Operation = OperationAdd
		datum.NewValue = updated
		return datum, true
	case updated == nil:
		datum.Operation = OperationDelete
		datum.OldValue = initial
		return datum, true
	default:
		datum.Operation = OperationUpdate
		datum.OldValue = initial
		datum.NewValue = updated
		return datum, true
	}
}

func dataColumnValidationPatch(initial, updated resources.DataColumnValue) (Datum, bool) {
	initialValidation := normalizeValidations(initial.Validation)
	updatedValidation := normalizeValidations(updated.Validation)

	if reflect.DeepEqual(initialValidation, updatedValidation) {
		return Datum{}, false
	}
	if initialValidation == nil && updatedValidation != nil {
		return Datum{Attribute: "validation", Operation: OperationAdd, NewValue: updatedValidation}, true
	}
	if updatedValidation == nil && initialValidation != nil {
		return Datum{Attribute: "validation", Operation: OperationDelete, OldValue: initialValidation}, true
	}

	// Enum value lists are mutated through the enums endpoint; clear them so
	// only genuine validation changes (datatype, bounds) register here.
	initialCleared := clearEnumValues(initialValidation)
	updatedCleared := clearEnumValues(updatedValidation)
	if !reflect.DeepEqual(initialCleared, updatedCleared) {
		return Datum{
			Attribute: "validation",
			Operation: OperationUpdate,
			OldValue:  initialCleared,
			NewValue:  updatedCleared,
		}, true
	}
	return Datum{}, false
}

func parameterValidationPatch(initial, updated resources.ParameterValue) (Datum, bool) {
	initialCleared := clearEnumValues(normalizeValidations(initial.Validation))
	updatedCleared := clearEnumValues(normalizeValidations(updated.Validation))

	if reflect.DeepEqual(initialCleared, updatedCleared) {
		return Datum{}, false
	}
	datum := Datum{Attribute: "validation", RowID: updated.Sequence}
	switch {
	case initialCleared == nil:
		datum.Operation = OperationAdd
		datum.NewValue = updatedCleared
	case updatedCleared == nil:
		datum.Operation = OperationDelete
		datum.OldValue = initialCleared
	default:
		datum.Operation = OperationUpdate
		datum.NewValue = updatedCleared
	}
	return datum, true
}

// normalizeValidations strips server round-trip artifacts (originalText on
// enum entries) so they cannot cause false-positive diffs. Returns a copy;
// the input is never mutated.
func normalizeValidations(validations []resources.ValueValidation) []resources.ValueValidation {
	if len(validations) == 0 {
		return nil
	}
	normalized := make([]resources.ValueValidation, len(validations))
	for i, validation := range validations {
		normalized[i] = validation
		if validation.Value != nil {
			values := make([]resources.EnumValidationValue, len(validation.Value))
			for j, value := range validation.Value {
				values[j] = value
				values[j].OriginalText = ""
			}
			normalized[i].Value = values
		}
	}
	return normalized
}

// clearEnumValues blanks the enum value list of a single-entry enum
// validation, again on a copy.
func clearEnumValues(validations []resources.ValueValidation) []resources.ValueValidation {
	if len(validations) != 1 || validations[0].Datatype != resources.DataTypeEnum {
		return validations
	}
	cleared := make([]resources.ValueValidation, 1)
	cleared[0] = validations[0]
	cleared[0].Value = nil
	return cleared
}

func hasEnumValidation(validations []resources.ValueValidation) bool {
	return len(validations) > 0 && validations[0].Datatype == resources.DataTypeEnum
}

func enumValues(validations []resources.ValueValidation) []resources.EnumValidationValue {
	if len(validations) == 0 {
		return nil
	}
	return validations[0].Value
}
