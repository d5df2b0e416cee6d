package models

import (
	"log"

	"bitbucket.org/mmdatafocus/pos_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Store{}, &Warehouse{},
		&Category{}, &Product{},
		&Inventory{}, &InventoryMovement{},
		&CustomerLevel{}, &Customer{}, &PointsLog{},
		&Order{}, &OrderItem{}, &Payment{},
		&Refund{}, &RefundItem{},
		&Invoice{}, &InvoiceItem{},
		&Promotion{}, &Coupon{}, &CouponUsage{},
		&User{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
