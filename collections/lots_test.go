package collections

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/albert-labs/albert-go/patch"
	"github.com/albert-labs/albert-go/resources"
)

func TestLotsUpdateEncodesInventoryDelta(t *testing.T) {
	t.Parallel()

	var patched patch.Payload
	var patchCount atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("GET /lots/LOT1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, resources.Lot{ID: "LOT1", InventoryOnHand: resources.Float(10.0)})
	})
	mux.HandleFunc("PATCH /lots/LOT1", func(w http.ResponseWriter, r *http.Request) {
		patchCount.Add(1)
		patched = decodePayload(t, r)
		writeJSON(t, w, map[string]any{})
	})

	service := NewLotsService(newTestSession(t, mux))
	updated, err := service.Update(context.Background(), &resources.Lot{
		ID:              "LOT1",
		InventoryOnHand: resources.Float(10.00000000000001),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != "LOT1" {
		t.Fatalf("unexpected lot returned: %#v", updated)
	}

	if patchCount.Load() != 1 {
		t.Fatalf("expected one patch request, got %d", patchCount.Load())
	}
	if len(patched.Data) != 1 {
		t.Fatalf("expected a single datum, got %#v", patched.Data)
	}
	datum := patched.Data[0]
	if datum.Attribute != "inventoryOnHand" || datum.Operation != patch.OperationUpdate {
		t.Fatalf("unexpected datum: %#v", datum)
	}
	if datum.NewValue != "0.00000000000001" {
		t.Fatalf("delta must be fixed-point, got %v", datum.NewValue)
	}
	if datum.OldValue != "10" {
		t.Fatalf("old value must carry the absolute quantity, got %v", datum.OldValue)
	}
}

func TestLotsUpdateWithoutChangesSkipsPatch(t *testing.T) {
	t.Parallel()

	var patchCount atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("GET /lots/LOT1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, resources.Lot{ID: "LOT1", InventoryOnHand: resources.Float(4.5), BarcodeID: "BC-1"})
	})
	mux.HandleFunc("PATCH /lots/LOT1", func(w http.ResponseWriter, r *http.Request) {
		patchCount.Add(1)
		writeJSON(t, w, map[string]any{})
	})

	service := NewLotsService(newTestSession(t, mux))
	_, err := service.Update(context.Background(), &resources.Lot{
		ID:              "LOT1",
		InventoryOnHand: resources.Float(4.5),
		BarcodeID:       "BC-1",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if patchCount.Load() != 0 {
		t.Fatalf("identical snapshots must not patch, got %d requests", patchCount.Load())
	}
}

func TestLotsAdjustValidatesBeforeRequest(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	service := NewLotsService(newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeJSON(t, w, map[string]any{})
	})))

	cases := []struct {
		name    string
		request AdjustmentRequest
	}{
		{"missing_lot_id", AdjustmentRequest{Action: AdjustAdd, Quantity: resources.Float(1)}},
		{"zero_with_quantity", AdjustmentRequest{LotID: "LOT1", Action: AdjustZero, Quantity: resources.Float(1)}},
		{"add_without_quantity", AdjustmentRequest{LotID: "LOT1", Action: AdjustAdd}},
		{"add_negative", AdjustmentRequest{LotID: "LOT1", Action: AdjustAdd, Quantity: resources.Float(-1)}},
		{"set_zero_quantity", AdjustmentRequest{LotID: "LOT1", Action: AdjustSet, Quantity: resources.Float(0)}},
		{"unknown_action", AdjustmentRequest{LotID: "LOT1", Action: "increment", Quantity: resources.Float(1)}},
	}
	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := service.Adjust(context.Background(), testCase.request)
			assertValidationError(t, err)
		})
	}

	if requests.Load() != 0 {
		t.Fatalf("invalid adjustments must fail before any request, server saw %d", requests.Load())
	}
}

func TestLotsAdjust(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		request      AdjustmentRequest
		wantNewValue string
	}{
		{"add", AdjustmentRequest{LotID: "LOT1", Action: AdjustAdd, Quantity: resources.Float(5)}, "5.00000000000000"},
		{"subtract", AdjustmentRequest{LotID: "LOT1", Action: AdjustSubtract, Quantity: resources.Float(2.5)}, "-2.50000000000000"},
		{"set", AdjustmentRequest{LotID: "LOT1", Action: AdjustSet, Quantity: resources.Float(4)}, "-6.00000000000000"},
		{"zero", AdjustmentRequest{LotID: "LOT1", Action: AdjustZero}, "-10.00000000000000"},
	}
	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var patched patch.Payload
			mux := http.NewServeMux()
			mux.HandleFunc("GET /lots/LOT1", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, resources.Lot{ID: "LOT1", InventoryOnHand: resources.Float(10)})
			})
			mux.HandleFunc("PATCH /lots/LOT1", func(w http.ResponseWriter, r *http.Request) {
				patched = decodePayload(t, r)
				writeJSON(t, w, map[string]any{})
			})

			service := NewLotsService(newTestSession(t, mux))
			if _, err := service.Adjust(context.Background(), testCase.request); err != nil {
				t.Fatalf("Adjust: %v", err)
			}

			if len(patched.Data) != 1 {
				t.Fatalf("expected a single datum, got %#v", patched.Data)
			}
			datum := patched.Data[0]
			if datum.Attribute != "inventoryOnHand" || datum.NewValue != testCase.wantNewValue {
				t.Fatalf("unexpected datum: %#v", datum)
			}
			if datum.OldValue != "10" {
				t.Fatalf("old value must carry the absolute quantity, got %v", datum.OldValue)
			}
		})
	}
}

func TestLotsAdjustSetToCurrentIsNoop(t *testing.T) {
	t.Parallel()

	var patchCount atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("GET /lots/LOT1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, resources.Lot{ID: "LOT1", InventoryOnHand: resources.Float(10)})
	})
	mux.HandleFunc("PATCH /lots/LOT1", func(w http.ResponseWriter, r *http.Request) {
		patchCount.Add(1)
		writeJSON(t, w, map[string]any{})
	})

	service := NewLotsService(newTestSession(t, mux))
	lot, err := service.Adjust(context.Background(), AdjustmentRequest{
		LotID:    "LOT1",
		Action:   AdjustSet,
		Quantity: resources.Float(10),
	})
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if lot.ID != "LOT1" {
		t.Fatalf("unexpected lot: %#v", lot)
	}
	if patchCount.Load() != 0 {
		t.Fatalf("set-to-current must not patch, got %d requests", patchCount.Load())
	}
}

func TestLotsCreatePostsOnePerRequest(t *testing.T) {
	t.Parallel()

	var bodies [][]resources.Lot
	mux := http.NewServeMux()
	mux.HandleFunc("POST /lots", func(w http.ResponseWriter, r *http.Request) {
		var batch []resources.Lot
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			t.Errorf("decoding lot batch: %v", err)
		}
		bodies = append(bodies, batch)

		if len(bodies) == 2 {
			// The second lot fails server side.
			w.WriteHeader(http.StatusPartialContent)
		}
		for i := range batch {
			batch[i].ID = "LOT" + batch[i].LotNumber
		}
		writeJSON(t, w, batch)
	})

	service := NewLotsService(newTestSession(t, mux))
	created, err := service.Create(context.Background(), []resources.Lot{
		{LotNumber: "1", InventoryID: "INVA1"},
		{LotNumber: "2", InventoryID: "INVA1"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(bodies) != 2 {
		t.Fatalf("expected one request per lot, got %d", len(bodies))
	}
	for i, body := range bodies {
		if len(body) != 1 {
			t.Fatalf("request %d must carry a single lot, got %d", i, len(body))
		}
	}
	if len(created) != 1 || created[0].ID != "LOT1" {
		t.Fatalf("partial success must be skipped, got %#v", created)
	}
}

func TestLotsTransferAllPatchesStorageLocation(t *testing.T) {
	t.Parallel()

	var patched patch.Payload
	mux := http.NewServeMux()
	mux.HandleFunc("GET /lots/LOT1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, resources.Lot{ID: "LOT1", StorageLocation: resources.Link("SL1")})
	})
	mux.HandleFunc("PATCH /lots/LOT1", func(w http.ResponseWriter, r *http.Request) {
		patched = decodePayload(t, r)
		writeJSON(t, w, map[string]any{})
	})

	service := NewLotsService(newTestSession(t, mux))
	if _, err := service.Transfer(context.Background(), TransferRequest{
		LotID:             "LOT1",
		StorageLocationID: "SL2",
		Quantity:          TransferAll,
	}); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	if len(patched.Data) != 1 {
		t.Fatalf("expected a single datum, got %#v", patched.Data)
	}
	datum := patched.Data[0]
	if datum.Attribute != "storageLocation" || datum.Operation != patch.OperationUpdate {
		t.Fatalf("unexpected datum: %#v", datum)
	}
	if datum.OldValue != "SL1" || datum.NewValue != "SL2" {
		t.Fatalf("unexpected location values: %#v", datum)
	}
}

func TestLotsTransferSplitCreatesLot(t *testing.T) {
	t.Parallel()

	var posted []resources.Lot
	mux := http.NewServeMux()
	mux.HandleFunc("GET /lots/LOT1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, resources.Lot{
			ID:              "LOT1",
			InventoryID:     "INVA1",
			PackSize:        resources.Float(100),
			Status:          resources.LotStatusActive,
			InventoryOnHand: resources.Float(10),
		})
	})
	mux.HandleFunc("POST /lots", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&posted); err != nil {
			t.Errorf("decoding lot batch: %v", err)
		}
		created := posted[0]
		created.ID = "LOT2"
		writeJSON(t, w, []resources.Lot{created})
	})

	service := NewLotsService(newTestSession(t, mux))
	split, err := service.Transfer(context.Background(), TransferRequest{
		LotID:             "LOT1",
		StorageLocationID: "SL2",
		Quantity:          "2.5",
		Owner:             resources.Link("USR1"),
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if split.ID != "LOT2" {
		t.Fatalf("unexpected split lot: %#v", split)
	}

	if len(posted) != 1 {
		t.Fatalf("expected a single posted lot, got %#v", posted)
	}
	lot := posted[0]
	if lot.InventoryID != "INVA1" || lot.StorageLocation == nil || lot.StorageLocation.ID != "SL2" {
		t.Fatalf("split lot must inherit the inventory and target the new location: %#v", lot)
	}
	if lot.InitialQuantity == nil || *lot.InitialQuantity != 2.5 || lot.InventoryOnHand == nil || *lot.InventoryOnHand != 2.5 {
		t.Fatalf("split lot must carry the transferred quantity: %#v", lot)
	}
	if lot.Owner == nil || lot.Owner.ID != "USR1" {
		t.Fatalf("split lot must carry the requested owner: %#v", lot)
	}
}

func TestLotsTransferRejectsBadQuantity(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	service := NewLotsService(newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeJSON(t, w, map[string]any{})
	})))

	for _, quantity := range []string{"", "0", "-1", "all", "2,5"} {
		_, err := service.Transfer(context.Background(), TransferRequest{
			LotID:             "LOT1",
			StorageLocationID: "SL2",
			Quantity:          quantity,
		})
		assertValidationError(t, err)
	}

	if requests.Load() != 0 {
		t.Fatalf("invalid transfers must fail before any request, server saw %d", requests.Load())
	}
}

func TestLotsGetByIDsSendsRepeatedParams(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /lots/ids", func(w http.ResponseWriter, r *http.Request) {
		ids := r.URL.Query()["id"]
		lots := make([]resources.Lot, 0, len(ids))
		for _, id := range ids {
			lots = append(lots, resources.Lot{ID: id})
		}
		writeJSON(t, w, itemsEnvelope[resources.Lot]{Items: lots})
	})

	service := NewLotsService(newTestSession(t, mux))
	lots, err := service.GetByIDs(context.Background(), []string{"LOT1", "LOT2", "LOT3"})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(lots) != 3 || lots[0].ID != "LOT1" || lots[2].ID != "LOT3" {
		t.Fatalf("unexpected lots: %#v", lots)
	}
}

func TestLotsDeleteSendsIDQuery(t *testing.T) {
	t.Parallel()

	var deletedID string
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /lots", func(w http.ResponseWriter, r *http.Request) {
		deletedID = r.URL.Query().Get("id")
		w.WriteHeader(http.StatusNoContent)
	})

	service := NewLotsService(newTestSession(t, mux))
	if err := service.Delete(context.Background(), "LOT1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deletedID != "LOT1" {
		t.Fatalf("delete must target the lot by query parameter, got %q", deletedID)
	}
}
