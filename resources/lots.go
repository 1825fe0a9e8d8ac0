package resources

type LotStatus string

const (
	LotStatusActive      LotStatus = "active"
	LotStatusInactive    LotStatus = "inactive"
	LotStatusQuarantined LotStatus = "quarantined"
)

type Lot struct {
	ID                    string      `json:"albertId,omitempty"`
	InventoryID           string      `json:"parentId,omitempty"`
	TaskID                string      `json:"taskId,omitempty"`
	LotNumber             string      `json:"lotNumber,omitempty"`
	ManufacturerLotNumber string      `json:"manufacturerLotNumber,omitempty"`
	ExpirationDate        string      `json:"expirationDate,omitempty"`
	PackSize              *float64    `json:"packSize,omitempty"`
	InitialQuantity       *float64    `json:"initialQuantity,omitempty"`
	InventoryOnHand       *float64    `json:"inventoryOnHand,omitempty"`
	Cost                  *float64    `json:"cost,omitempty"`
	Status                LotStatus   `json:"status,omitempty"`
	BarcodeID             string      `json:"barcodeId,omitempty"`
	ExternalBarcodeID     string      `json:"externalBarcodeId,omitempty"`
	StorageLocation       *EntityLink `json:"StorageLocation,omitempty"`
	Location              *EntityLink `json:"Location,omitempty"`
	Owner                 *EntityLink `json:"Owner,omitempty"`
	Notes                 string      `json:"notes,omitempty"`
	Metadata              Metadata    `json:"Metadata,omitempty"`
}

type StorageLocation struct {
	ID       string      `json:"albertId,omitempty"`
	Name     string      `json:"name"`
	Location *EntityLink `json:"Location,omitempty"`
}

func Float(value float64) *float64 {
	return &value
}
