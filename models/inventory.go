package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Inventory struct {
	ID                int       `gorm:"primary_key" json:"id"`
	WarehouseId       int       `gorm:"uniqueIndex:idx_warehouse_product;not null" json:"warehouse_id"`
	ProductId         int       `gorm:"uniqueIndex:idx_warehouse_product;not null" json:"product_id"`
	Product           *Product  `json:"product,omitempty"`
	Quantity          int       `gorm:"default:0" json:"quantity"`
	ReservedQuantity  int       `gorm:"default:0" json:"reserved_quantity"`
	AvailableQuantity int       `gorm:"default:0" json:"available_quantity"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// InventoryMovement is the append-only stock ledger. balance records the
// owning inventory row's on-hand quantity after the movement.
type InventoryMovement struct {
	ID            int          `gorm:"primary_key" json:"id"`
	WarehouseId   int          `gorm:"index;not null" json:"warehouse_id"`
	ProductId     int          `gorm:"index;not null" json:"product_id"`
	MovementType  MovementType `gorm:"type:enum('PURCHASE_IN','SALE_OUT','RETURN_IN','ADJUST','TRANSFER_IN','TRANSFER_OUT','COUNT');not null" json:"movement_type"`
	Quantity      int          `gorm:"not null" json:"quantity"`
	Balance       int          `gorm:"not null" json:"balance"`
	ReferenceType string       `gorm:"size:50;index:idx_movement_reference" json:"reference_type"`
	ReferenceId   int          `gorm:"index:idx_movement_reference" json:"reference_id"`
	Note          string       `gorm:"size:255" json:"note"`
	CreatedBy     int          `json:"created_by"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

type StockAdjustmentInput struct {
	WarehouseId  int          `json:"warehouse_id" binding:"required"`
	ProductId    int          `json:"product_id" binding:"required"`
	Quantity     int          `json:"quantity" binding:"required"`
	MovementType MovementType `json:"movement_type" binding:"required"`
	Note         string       `json:"note"`
}

type MovementQuery struct {
	Pagination
	WarehouseId  int    `form:"warehouse_id" json:"warehouse_id"`
	ProductId    int    `form:"product_id" json:"product_id"`
	MovementType string `form:"movement_type" json:"movement_type"`
}

// lockInventory finds-or-creates the inventory row for (warehouse, product)
// and holds it FOR UPDATE for the rest of the transaction.
func lockInventory(tx *gorm.DB, warehouseId int, productId int) (*Inventory, error) {
	inventory := Inventory{
		WarehouseId: warehouseId,
		ProductId:   productId,
	}
	// FirstOrCreate will try to find a record matching the conditions, and if it doesn't find one, it will create a new record
	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("warehouse_id = ? AND product_id = ?", warehouseId, productId).
		FirstOrCreate(&inventory)
	if result.Error != nil {
		return nil, result.Error
	}
	return &inventory, nil
}

// lockExistingInventory is lockInventory without the lazy create; missing
// rows are a NotFound (reserve against stock that was never received).
func lockExistingInventory(tx *gorm.DB, warehouseId int, productId int) (*Inventory, error) {
	var inventory Inventory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("warehouse_id = ? AND product_id = ?", warehouseId, productId).
		First(&inventory).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFound("inventory")
		}
		return nil, err
	}
	return &inventory, nil
}

func appendMovement(tx *gorm.DB, inventory *Inventory, movementType MovementType, quantity int, referenceType string, referenceId int, note string, createdBy int) error {
	movement := InventoryMovement{
		WarehouseId:   inventory.WarehouseId,
		ProductId:     inventory.ProductId,
		MovementType:  movementType,
		Quantity:      quantity,
		Balance:       inventory.Quantity,
		ReferenceType: referenceType,
		ReferenceId:   referenceId,
		Note:          note,
		CreatedBy:     createdBy,
	}
	return tx.Create(&movement).Error
}

// AdjustStock moves on-hand quantity by a signed amount inside the caller's
// transaction. A negative adjustment larger than the available quantity fails
// with InsufficientStockError and leaves the row untouched. The movement row
// carries the post-adjustment balance.
func AdjustStock(tx *gorm.DB, ctx context.Context, warehouseId int, productId int, quantity int, movementType MovementType, referenceType string, referenceId int, note string) (*Inventory, error) {

	inventory, err := lockInventory(tx, warehouseId, productId)
	if err != nil {
		return nil, err
	}

	if quantity < 0 && -quantity > inventory.AvailableQuantity {
		product, fetchErr := utils.FetchModel[Product](ctx, productId)
		productName := "product"
		if fetchErr == nil {
			productName = product.Name
		}
		return nil, &utils.InsufficientStockError{
			ProductName: productName,
			Required:    -quantity,
			Available:   inventory.AvailableQuantity,
		}
	}

	inventory.Quantity += quantity
	inventory.AvailableQuantity = inventory.Quantity - inventory.ReservedQuantity
	if err := tx.Model(inventory).
		Updates(map[string]interface{}{
			"quantity":           inventory.Quantity,
			"available_quantity": inventory.AvailableQuantity,
		}).Error; err != nil {
		return nil, err
	}

	createdBy, _ := utils.GetUserIdFromContext(ctx)
	if err := appendMovement(tx, inventory, movementType, quantity, referenceType, referenceId, note, createdBy); err != nil {
		return nil, err
	}

	return inventory, nil
}

// ReserveStock holds quantity for an unfulfilled order without moving it.
// Reservations beyond the available quantity fail with InsufficientStockError.
func ReserveStock(tx *gorm.DB, ctx context.Context, warehouseId int, productId int, quantity int) (*Inventory, error) {

	if quantity <= 0 {
		return nil, utils.NewValidationError("reserve quantity must be positive", "quantity")
	}

	inventory, err := lockExistingInventory(tx, warehouseId, productId)
	if err != nil {
		return nil, err
	}

	if quantity > inventory.AvailableQuantity {
		product, fetchErr := utils.FetchModel[Product](ctx, productId)
		productName := "product"
		if fetchErr == nil {
			productName = product.Name
		}
		return nil, &utils.InsufficientStockError{
			ProductName: productName,
			Required:    quantity,
			Available:   inventory.AvailableQuantity,
		}
	}

	inventory.ReservedQuantity += quantity
	inventory.AvailableQuantity = inventory.Quantity - inventory.ReservedQuantity
	if err := tx.Model(inventory).
		Updates(map[string]interface{}{
			"reserved_quantity":  inventory.ReservedQuantity,
			"available_quantity": inventory.AvailableQuantity,
		}).Error; err != nil {
		return nil, err
	}

	return inventory, nil
}

// ReleaseStock returns reserved quantity to the available pool. Releasing
// more than is reserved clamps at zero instead of failing, so double release
// on a cancelled order is harmless.
func ReleaseStock(tx *gorm.DB, ctx context.Context, warehouseId int, productId int, quantity int) (*Inventory, error) {

	if quantity <= 0 {
		return nil, utils.NewValidationError("release quantity must be positive", "quantity")
	}

	inventory, err := lockExistingInventory(tx, warehouseId, productId)
	if err != nil {
		return nil, err
	}

	inventory.ReservedQuantity -= quantity
	if inventory.ReservedQuantity < 0 {
		inventory.ReservedQuantity = 0
	}
	inventory.AvailableQuantity = inventory.Quantity - inventory.ReservedQuantity
	if err := tx.Model(inventory).
		Updates(map[string]interface{}{
			"reserved_quantity":  inventory.ReservedQuantity,
			"available_quantity": inventory.AvailableQuantity,
		}).Error; err != nil {
		return nil, err
	}

	return inventory, nil
}

// AdjustStockStandalone wraps a single adjustment in its own transaction
// for the manual stock adjust endpoint.
func AdjustStockStandalone(ctx context.Context, input *StockAdjustmentInput) (*Inventory, error) {
	db := config.GetDB()

	if !input.MovementType.IsValid() {
		return nil, utils.NewValidationError("invalid movement type", "movement_type")
	}
	if err := utils.ValidateResourceId[Warehouse](ctx, input.WarehouseId); err != nil {
		return nil, utils.NewNotFound("warehouse")
	}
	if err := utils.ValidateResourceId[Product](ctx, input.ProductId); err != nil {
		return nil, utils.NewNotFound("product")
	}

	tx := db.Begin()

	inventory, err := AdjustStock(tx, ctx, input.WarehouseId, input.ProductId, input.Quantity, input.MovementType, "manual", 0, input.Note)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	return inventory, tx.Commit().Error
}

func ReserveStockStandalone(ctx context.Context, warehouseId int, productId int, quantity int) (*Inventory, error) {
	db := config.GetDB()

	tx := db.Begin()

	inventory, err := ReserveStock(tx, ctx, warehouseId, productId, quantity)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	return inventory, tx.Commit().Error
}

func ReleaseStockStandalone(ctx context.Context, warehouseId int, productId int, quantity int) (*Inventory, error) {
	db := config.GetDB()

	tx := db.Begin()

	inventory, err := ReleaseStock(tx, ctx, warehouseId, productId, quantity)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	return inventory, tx.Commit().Error
}

// GetLowStock lists active products at or below their safety stock,
// optionally within one warehouse.
func GetLowStock(ctx context.Context, warehouseId int) ([]*Inventory, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).
		Preload("Product").
		Joins("JOIN products ON products.id = inventories.product_id").
		Where("inventories.quantity <= products.safety_stock").
		Where("products.status = ?", ProductStatusActive)
	if warehouseId > 0 {
		if err := utils.ValidateResourceId[Warehouse](ctx, warehouseId); err != nil {
			return nil, utils.NewNotFound("warehouse")
		}
		dbCtx = dbCtx.Where("inventories.warehouse_id = ?", warehouseId)
	}

	var inventories []*Inventory
	if err := dbCtx.Find(&inventories).Error; err != nil {
		return nil, err
	}
	return inventories, nil
}

func ListInventory(ctx context.Context, warehouseId int, productId int, pagination *Pagination) (*PageResult[Inventory], error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Preload("Product")
	if warehouseId > 0 {
		dbCtx = dbCtx.Where("warehouse_id = ?", warehouseId)
	}
	if productId > 0 {
		dbCtx = dbCtx.Where("product_id = ?", productId)
	}

	return Paginate[Inventory](dbCtx, pagination, "id ASC")
}

func ListMovements(ctx context.Context, query *MovementQuery) (*PageResult[InventoryMovement], error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx)
	if query.WarehouseId > 0 {
		dbCtx = dbCtx.Where("warehouse_id = ?", query.WarehouseId)
	}
	if query.ProductId > 0 {
		dbCtx = dbCtx.Where("product_id = ?", query.ProductId)
	}
	if query.MovementType != "" {
		dbCtx = dbCtx.Where("movement_type = ?", query.MovementType)
	}

	return Paginate[InventoryMovement](dbCtx, &query.Pagination, "id DESC")
}
