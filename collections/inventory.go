package collections

import (
	"context"
	"iter"
	"net/url"
	"strings"

	"github.com/albert-labs/albert-go/pagination"
	"github.com/albert-labs/albert-go/patch"
	"github.com/albert-labs/albert-go/resources"
	"github.com/albert-labs/albert-go/session"
)

const inventoriesPath = "/inventories"

// InventoryService manages inventory items.
type InventoryService struct {
	session *session.Session
}

func NewInventoryService(sess *session.Session) *InventoryService {
	return &InventoryService{session: sess}
}

func inventoryAttributes() []patch.Attribute[resources.InventoryItem] {
	return []patch.Attribute[resources.InventoryItem]{
		{Name: "name", Get: func(i *resources.InventoryItem) any { return stringValue(i.Name) }},
		{Name: "description", Get: func(i *resources.InventoryItem) any { return stringValue(i.Description) }},
		{Name: "unit_category", Alias: "unitCategory", Get: func(i *resources.InventoryItem) any { return stringValue(i.UnitCategory) }},
		{Name: "security_class", Alias: "class", Get: func(i *resources.InventoryItem) any { return stringValue(i.SecurityClass) }},
		{Name: "alias", Get: func(i *resources.InventoryItem) any { return stringValue(i.Alias) }},
		{Name: patch.MetadataAttribute, Alias: "Metadata", Get: func(i *resources.InventoryItem) any { return i.Metadata }},
	}
}

func (s *InventoryService) Create(ctx context.Context, item *resources.InventoryItem) (*resources.InventoryItem, error) {
	if item == nil {
		return nil, validationError("inventory item is required")
	}
	var created resources.InventoryItem
	if err := s.session.Post(ctx, inventoriesPath, item, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *InventoryService) GetByID(ctx context.Context, id string) (*resources.InventoryItem, error) {
	var item resources.InventoryItem
	if err := s.session.Get(ctx, inventoriesPath+"/"+id, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *InventoryService) GetByIDs(ctx context.Context, ids []string) ([]resources.InventoryItem, error) {
	return getByIDs[resources.InventoryItem](ctx, s.session, inventoriesPath, ids)
}

func (s *InventoryService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return validationError("inventory item id is required")
	}
	return s.session.Delete(ctx, inventoriesPath+"/"+id)
}

// buildInventoryPayload extends the generic diff with the attributes the
// backend patches through dedicated id-valued attributes.
func buildInventoryPayload(existing, updated *resources.InventoryItem) patch.Payload {
	payload := patch.BuildPayload(existing, updated, inventoryAttributes(), patch.Options{})
	payload.Append(companyPatch(existing.Company, updated.Company)...)
	payload.Append(patch.DiffTagIDs(existing.Tags, updated.Tags, "tagId")...)
	return payload
}

func companyPatch(existing, updated *resources.EntityLink) []patch.Datum {
	switch {
	case existing == nil && updated == nil:
		return nil
	case existing == nil:
		return []patch.Datum{{
			Attribute: "companyId",
			Operation: patch.OperationAdd,
			NewValue:  updated.ID,
		}}
	case updated == nil:
		return []patch.Datum{{
			Attribute: "companyId",
			Operation: patch.OperationDelete,
			OldValue:  existing.ID,
		}}
	case existing.ID != updated.ID:
		return []patch.Datum{{
			Attribute: "companyId",
			Operation: patch.OperationUpdate,
			OldValue:  existing.ID,
			NewValue:  updated.ID,
		}}
	default:
		return nil
	}
}

// Update patches an inventory item to match the given snapshot. The
// inventory endpoint rejects multi-datum payloads, so each datum is sent in
// its own request.
func (s *InventoryService) Update(ctx context.Context, item *resources.InventoryItem) (*resources.InventoryItem, error) {
	if item == nil || item.ID == "" {
		return nil, validationError("inventory item id is required")
	}
	existing, err := s.GetByID(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	payload := buildInventoryPayload(existing, item)
	if payload.Empty() {
		return existing, nil
	}
	for _, datum := range payload.Data {
		single := patch.Payload{Data: []patch.Datum{datum}}
		if err := s.session.Patch(ctx, inventoriesPath+"/"+item.ID, single); err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, item.ID)
}

// SearchInventoryOptions filter the inventory search.
type SearchInventoryOptions struct {
	Text      string
	Category  []string
	Tags      []string
	Company   []string
	ProjectID string
	SheetID   string
	SortBy    string
	OrderBy   resources.OrderBy
	MaxItems  int
}

func (o SearchInventoryOptions) values() url.Values {
	order := o.OrderBy
	if order == "" {
		order = resources.OrderDescending
	}
	sortBy := o.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}
	values := url.Values{"order": {string(order)}, "sortBy": {sortBy}}
	if o.Text != "" {
		values.Set("text", o.Text)
	}
	for _, category := range o.Category {
		values.Add("category", category)
	}
	for _, tag := range o.Tags {
		values.Add("tags", tag)
	}
	for _, company := range o.Company {
		values.Add("manufacturer", company)
	}
	// The search index stores project references without the id prefix.
	if o.ProjectID != "" {
		values.Set("projectId", strings.TrimPrefix(o.ProjectID, "PRO"))
	}
	if o.SheetID != "" {
		values.Set("sheetId", o.SheetID)
	}
	return values
}

// Search streams hydrated inventory items matching the filters: search hits
// carry only partial data, so each page re-fetches through the /ids
// endpoint.
func (s *InventoryService) Search(ctx context.Context, opts SearchInventoryOptions) iter.Seq2[resources.InventoryItem, error] {
	return pagination.Iterate(ctx, s.session, pagination.Options[resources.InventoryItem]{
		Path:        inventoriesPath + "/search",
		Mode:        pagination.ModeOffset,
		Params:      opts.values(),
		MaxItems:    opts.MaxItems,
		Deserialize: hydrateByID(s.GetByIDs),
	})
}
