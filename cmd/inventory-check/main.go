// inventory-check verifies inventory consistency: available must equal
// quantity minus reserved on every row, and each row's quantity must match
// the last movement balance for its (warehouse, product) pair.
// With --repair it recomputes available_quantity in place.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/inventory-check [--repair]
package main

import (
	"flag"
	"fmt"
	"os"

	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/models"
)

func main() {
	repair := flag.Bool("repair", false, "recompute available_quantity for inconsistent rows")
	warehouseID := flag.Int("warehouse-id", 0, "optional: restrict to one warehouse")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	query := db.Model(&models.Inventory{})
	if *warehouseID > 0 {
		query = query.Where("warehouse_id = ?", *warehouseID)
	}

	var inventories []*models.Inventory
	if err := query.Find(&inventories).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to load inventory: %v\n", err)
		os.Exit(1)
	}

	bad := 0
	for _, inv := range inventories {
		expected := inv.Quantity - inv.ReservedQuantity
		if inv.AvailableQuantity != expected {
			bad++
			fmt.Printf("warehouse=%d product=%d available=%d expected=%d\n",
				inv.WarehouseId, inv.ProductId, inv.AvailableQuantity, expected)
			if *repair {
				if err := db.Model(inv).
					UpdateColumn("available_quantity", expected).Error; err != nil {
					fmt.Fprintf(os.Stderr, "repair failed: %v\n", err)
					os.Exit(1)
				}
			}
		}

		var lastMovement models.InventoryMovement
		err := db.Where("warehouse_id = ? AND product_id = ?", inv.WarehouseId, inv.ProductId).
			Order("id DESC").First(&lastMovement).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load movements: %v\n", err)
			os.Exit(1)
		}
		if lastMovement.Balance != inv.Quantity {
			bad++
			fmt.Printf("warehouse=%d product=%d quantity=%d last movement balance=%d\n",
				inv.WarehouseId, inv.ProductId, inv.Quantity, lastMovement.Balance)
		}
	}

	if bad == 0 {
		fmt.Printf("checked %d rows, all consistent\n", len(inventories))
		return
	}
	fmt.Printf("checked %d rows, %d inconsistencies\n", len(inventories), bad)
	if !*repair {
		os.Exit(2)
	}
}
