package patch

import "github.com/albert-labs/albert-go/resources"

// DiffTagIDs diffs two tag lists as id sets: one add datum per new tag id,
// one delete datum per removed tag id. The attribute name varies by resource
// type ("tag" for data templates, "tagId" for parameter groups).
func DiffTagIDs(existing, updated []resources.Tag, attribute string) []Datum {
	existingIDs := make([]string, 0, len(existing))
	for _, tag := range existing {
		existingIDs = append(existingIDs, tag.ID)
	}
	updatedIDs := make([]string, 0, len(updated))
	for _, tag := range updated {
		updatedIDs = append(updatedIDs, tag.ID)
	}

	existingSet := idSet(existingIDs)
	updatedSet := idSet(updatedIDs)

	data := make([]Datum, 0)
	for _, id := range updatedIDs {
		if _, found := existingSet[id]; !found {
			data = append(data, Datum{Attribute: attribute, Operation: OperationAdd, NewValue: id})
		}
	}
	for _, id := range existingIDs {
		if _, found := updatedSet[id]; !found {
			data = append(data, Datum{Attribute: attribute, Operation: OperationDelete, OldValue: id})
		}
	}
	return data
}
