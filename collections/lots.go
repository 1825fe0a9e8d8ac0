package collections

import (
	"context"
	"encoding/json"
	"iter"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/albert-labs/albert-go/debugctx"
	"github.com/albert-labs/albert-go/pagination"
	"github.com/albert-labs/albert-go/patch"
	"github.com/albert-labs/albert-go/resources"
	"github.com/albert-labs/albert-go/session"
)

const (
	lotsPath = "/lots"

	// inventoryDeltaPlaces is the fixed-point precision of inventory
	// quantity deltas on the wire.
	inventoryDeltaPlaces = 14

	inventoryOnHandAttribute = "inventoryOnHand"
)

// LotsService manages inventory lots.
type LotsService struct {
	session *session.Session
	users   *UsersService
}

func NewLotsService(sess *session.Session) *LotsService {
	return &LotsService{session: sess, users: NewUsersService(sess)}
}

func lotAttributes() []patch.Attribute[resources.Lot] {
	return []patch.Attribute[resources.Lot]{
		{Name: patch.MetadataAttribute, Alias: "Metadata", Get: func(l *resources.Lot) any { return l.Metadata }},
		{Name: "storage_location", Alias: "storageLocation", Get: func(l *resources.Lot) any { return linkID(l.StorageLocation) }},
		{Name: "manufacturer_lot_number", Alias: "manufacturerLotNumber", Get: func(l *resources.Lot) any { return stringValue(l.ManufacturerLotNumber) }},
		{Name: "expiration_date", Alias: "expirationDate", Get: func(l *resources.Lot) any { return stringValue(l.ExpirationDate) }},
		{Name: "initial_quantity", Alias: "initialQuantity", Get: func(l *resources.Lot) any { return floatValue(l.InitialQuantity) }},
		{Name: "inventory_on_hand", Alias: inventoryOnHandAttribute, Get: func(l *resources.Lot) any { return floatValue(l.InventoryOnHand) }},
		{Name: "cost", Get: func(l *resources.Lot) any { return floatValue(l.Cost) }},
		{Name: "status", Get: func(l *resources.Lot) any { return stringValue(string(l.Status)) }},
		{Name: "pack_size", Alias: "packSize", Get: func(l *resources.Lot) any { return floatValue(l.PackSize) }},
		{Name: "barcode_id", Alias: "barcodeId", Get: func(l *resources.Lot) any { return stringValue(l.BarcodeID) }},
	}
}

// buildLotPayload diffs two lot snapshots. Inventory quantity never travels
// as an absolute value: the generic datum for it is dropped and replaced by
// a single delta-encoded update.
func buildLotPayload(existing, updated *resources.Lot) patch.Payload {
	generic := patch.BuildPayload(existing, updated, lotAttributes(), patch.Options{})

	data := make([]patch.Datum, 0, len(generic.Data))
	for _, datum := range generic.Data {
		if datum.Attribute == inventoryOnHandAttribute {
			continue
		}
		data = append(data, datum)
	}
	if datum, changed := inventoryDeltaPatch(existing.InventoryOnHand, updated.InventoryOnHand); changed {
		data = append(data, datum)
	}
	return patch.Payload{Data: data}
}

// inventoryDeltaPatch encodes an on-hand quantity change as a signed delta,
// quantized to fixed-point so no scientific notation can reach the wire.
func inventoryDeltaPatch(existing, updated *float64) (patch.Datum, bool) {
	if updated == nil {
		return patch.Datum{}, false
	}
	current := decimal.Zero
	if existing != nil {
		current = decimal.NewFromFloat(*existing)
	}
	delta := decimal.NewFromFloat(*updated).Sub(current).Round(inventoryDeltaPlaces)
	if delta.IsZero() {
		return patch.Datum{}, false
	}
	datum := patch.Datum{
		Attribute: inventoryOnHandAttribute,
		Operation: patch.OperationUpdate,
		NewValue:  delta.StringFixed(inventoryDeltaPlaces),
	}
	if existing != nil {
		datum.OldValue = strconv.FormatFloat(*existing, 'f', -1, 64)
	}
	return datum, true
}

// Create registers the given lots and returns the created entities. The bulk
// endpoint mishandles multi-element bodies, so each lot posts individually; a
// partial-success response logs a warning and contributes nothing to the
// result.
func (s *LotsService) Create(ctx context.Context, lots []resources.Lot) ([]resources.Lot, error) {
	created := make([]resources.Lot, 0, len(lots))
	for _, lot := range lots {
		response, err := s.session.Do(ctx, session.Request{
			Method: "POST",
			Path:   lotsPath,
			Body:   []resources.Lot{lot},
		})
		if err != nil {
			return created, err
		}

		var batch []resources.Lot
		if err := json.Unmarshal(response.Body, &batch); err != nil {
			return created, internalError("decoding created lot", err)
		}
		if response.PartialSuccess || len(batch) == 0 {
			debugctx.Warnf(ctx, "lot %q was not created: partial success from server", lot.LotNumber)
			continue
		}
		created = append(created, batch[0])
	}
	return created, nil
}

func (s *LotsService) GetByID(ctx context.Context, id string) (*resources.Lot, error) {
	var lot resources.Lot
	if err := s.session.Get(ctx, lotsPath+"/"+id, nil, &lot); err != nil {
		return nil, err
	}
	return &lot, nil
}

func (s *LotsService) GetByIDs(ctx context.Context, ids []string) ([]resources.Lot, error) {
	return getByIDs[resources.Lot](ctx, s.session, lotsPath, ids)
}

func (s *LotsService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return validationError("lot id is required")
	}
	return s.session.JSON(ctx, session.Request{
		Method: "DELETE",
		Path:   lotsPath,
		Query:  url.Values{"id": {id}},
	}, nil)
}

// ListLotsOptions filter the lot listing. String fields are omitted when
// empty; the match flags travel only when set.
type ListLotsOptions struct {
	ParentID         string
	InventoryID      string
	BarcodeID        string
	ParentIDCategory string
	InventoryOnHand  string
	LocationID       string
	ExactMatch       bool
	BeginsWith       bool
	StartKey         string
	MaxItems         int
}

func (o ListLotsOptions) values() url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set("parentId", o.ParentID)
	set("inventoryId", o.InventoryID)
	set("barcodeId", o.BarcodeID)
	set("parentIdCategory", o.ParentIDCategory)
	set("inventoryOnHand", o.InventoryOnHand)
	set("locationId", o.LocationID)
	set("startKey", o.StartKey)
	if o.ExactMatch {
		values.Set("exactMatch", "true")
	}
	if o.BeginsWith {
		values.Set("beginsWith", "true")
	}
	return values
}

// List streams lots matching the given filters.
func (s *LotsService) List(ctx context.Context, opts ListLotsOptions) iter.Seq2[resources.Lot, error] {
	return pagination.Iterate(ctx, s.session, pagination.Options[resources.Lot]{
		Path:     lotsPath,
		Mode:     pagination.ModeKey,
		Params:   opts.values(),
		MaxItems: opts.MaxItems,
	})
}

// Update patches a lot to match the given snapshot and returns the canonical
// server state.
func (s *LotsService) Update(ctx context.Context, lot *resources.Lot) (*resources.Lot, error) {
	if lot == nil || lot.ID == "" {
		return nil, validationError("lot id is required")
	}
	existing, err := s.GetByID(ctx, lot.ID)
	if err != nil {
		return nil, err
	}

	payload := buildLotPayload(existing, lot)
	if payload.Empty() {
		return existing, nil
	}
	if err := s.session.Patch(ctx, lotsPath+"/"+lot.ID, payload); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, lot.ID)
}

// AdjustmentAction names one inventory adjustment verb.
type AdjustmentAction string

const (
	AdjustAdd      AdjustmentAction = "add"
	AdjustSubtract AdjustmentAction = "subtract"
	AdjustSet      AdjustmentAction = "set"
	AdjustZero     AdjustmentAction = "zero"
)

// AdjustmentRequest changes a lot's on-hand quantity. Zero forbids a
// quantity; every other action requires a strictly positive one.
type AdjustmentRequest struct {
	LotID    string
	Action   AdjustmentAction
	Quantity *float64
}

func (r AdjustmentRequest) validate() error {
	if r.LotID == "" {
		return validationError("lot id is required")
	}
	switch r.Action {
	case AdjustZero:
		if r.Quantity != nil {
			return validationError("a zero adjustment does not take a quantity")
		}
	case AdjustAdd, AdjustSubtract, AdjustSet:
		if r.Quantity == nil {
			return validationError("a %s adjustment requires a quantity", r.Action)
		}
		if *r.Quantity <= 0 {
			return validationError("adjustment quantity must be strictly positive, got %v", *r.Quantity)
		}
	default:
		return validationError("unknown adjustment action %q", r.Action)
	}
	return nil
}

// Adjust applies an inventory adjustment: one fetch of the current state, one
// delta-encoded patch. Invalid requests fail before any request is sent.
func (s *LotsService) Adjust(ctx context.Context, req AdjustmentRequest) (*resources.Lot, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	existing, err := s.GetByID(ctx, req.LotID)
	if err != nil {
		return nil, err
	}
	current := decimal.Zero
	if existing.InventoryOnHand != nil {
		current = decimal.NewFromFloat(*existing.InventoryOnHand)
	}

	var delta decimal.Decimal
	switch req.Action {
	case AdjustAdd:
		delta = decimal.NewFromFloat(*req.Quantity)
	case AdjustSubtract:
		delta = decimal.NewFromFloat(*req.Quantity).Neg()
	case AdjustSet:
		delta = decimal.NewFromFloat(*req.Quantity).Sub(current)
	case AdjustZero:
		delta = current.Neg()
	}
	delta = delta.Round(inventoryDeltaPlaces)
	if delta.IsZero() {
		return existing, nil
	}

	datum := patch.Datum{
		Attribute: inventoryOnHandAttribute,
		Operation: patch.OperationUpdate,
		NewValue:  delta.StringFixed(inventoryDeltaPlaces),
	}
	if existing.InventoryOnHand != nil {
		datum.OldValue = strconv.FormatFloat(*existing.InventoryOnHand, 'f', -1, 64)
	}
	if err := s.session.Patch(ctx, lotsPath+"/"+req.LotID, patch.Payload{Data: []patch.Datum{datum}}); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, req.LotID)
}

// TransferAll moves a lot's entire quantity, expressed as a relocation of the
// lot itself rather than a split.
const TransferAll = "ALL"

// TransferRequest moves lot quantity to another storage location. Quantity is
// either TransferAll or a positive decimal string. Owner defaults to the
// session's current user for split transfers.
type TransferRequest struct {
	LotID             string
	StorageLocationID string
	Quantity          string
	Owner             *resources.EntityLink
}

// Transfer relocates or splits a lot. A full transfer patches the lot's
// storage location in place; a partial transfer creates a new lot at the
// target location carrying the transferred quantity.
func (s *LotsService) Transfer(ctx context.Context, req TransferRequest) (*resources.Lot, error) {
	if req.LotID == "" {
		return nil, validationError("lot id is required")
	}
	if req.StorageLocationID == "" {
		return nil, validationError("target storage location id is required")
	}

	if req.Quantity == TransferAll {
		return s.transferAll(ctx, req)
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return nil, validationError("transfer quantity must be %q or a decimal number, got %q", TransferAll, req.Quantity)
	}
	if quantity.Sign() <= 0 {
		return nil, validationError("transfer quantity must be strictly positive, got %s", quantity)
	}
	return s.transferSplit(ctx, req, quantity)
}

func (s *LotsService) transferAll(ctx context.Context, req TransferRequest) (*resources.Lot, error) {
	existing, err := s.GetByID(ctx, req.LotID)
	if err != nil {
		return nil, err
	}
	datum := patch.Datum{
		Attribute: "storageLocation",
		Operation: patch.OperationUpdate,
		NewValue:  req.StorageLocationID,
	}
	if id := linkID(existing.StorageLocation); id != nil {
		datum.OldValue = id
	} else {
		datum.Operation = patch.OperationAdd
	}
	if err := s.session.Patch(ctx, lotsPath+"/"+req.LotID, patch.Payload{Data: []patch.Datum{datum}}); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, req.LotID)
}

func (s *LotsService) transferSplit(ctx context.Context, req TransferRequest, quantity decimal.Decimal) (*resources.Lot, error) {
	source, err := s.GetByID(ctx, req.LotID)
	if err != nil {
		return nil, err
	}

	owner := req.Owner
	if owner == nil {
		user, err := s.users.Current(ctx)
		if err != nil {
			return nil, err
		}
		owner = resources.Link(user.ID)
	}

	amount, _ := quantity.Round(inventoryDeltaPlaces).Float64()
	split := resources.Lot{
		InventoryID:     source.InventoryID,
		PackSize:        source.PackSize,
		Status:          source.Status,
		StorageLocation: resources.Link(req.StorageLocationID),
		Owner:           owner,
		InitialQuantity: resources.Float(amount),
		InventoryOnHand: resources.Float(amount),
	}
	created, err := s.Create(ctx, []resources.Lot{split})
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, internalError("split lot was not created", nil)
	}
	return &created[0], nil
}
