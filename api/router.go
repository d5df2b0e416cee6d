package api

import (
	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/pos_backend/middlewares"
)

// RegisterRoutes wires the back office REST surface under /api/v1.
// Everything except login requires a bearer token.
func RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")

	v1.POST("/auth/login", login)

	protected := v1.Group("")
	protected.Use(middlewares.RequireAuth())

	users := protected.Group("/users")
	{
		users.GET("", listUsers)
		users.POST("", createUser)
		users.POST("/:id/active", setUserActive)
	}

	stores := protected.Group("/stores")
	{
		stores.GET("", listStores)
		stores.GET("/:id", getStore)
		stores.POST("", createStore)
		stores.PUT("/:id", updateStore)
		stores.DELETE("/:id", deleteStore)
	}

	warehouses := protected.Group("/warehouses")
	{
		warehouses.GET("", listWarehouses)
		warehouses.GET("/:id", getWarehouse)
		warehouses.POST("", createWarehouse)
		warehouses.PUT("/:id", updateWarehouse)
		warehouses.DELETE("/:id", deleteWarehouse)
	}

	categories := protected.Group("/categories")
	{
		categories.GET("", listCategories)
		categories.GET("/:id", getCategory)
		categories.POST("", createCategory)
		categories.PUT("/:id", updateCategory)
		categories.DELETE("/:id", deleteCategory)
	}

	products := protected.Group("/products")
	{
		products.GET("", listProducts)
		products.GET("/:id", getProduct)
		products.POST("", createProduct)
		products.PUT("/:id", updateProduct)
		products.DELETE("/:id", deleteProduct)
	}

	inventory := protected.Group("/inventory")
	{
		inventory.GET("", listInventory)
		inventory.POST("/adjust", adjustStock)
		inventory.POST("/reserve", reserveStock)
		inventory.POST("/release", releaseStock)
		inventory.GET("/movements", listMovements)
		inventory.GET("/low_stock", lowStock)
	}

	customers := protected.Group("/customers")
	{
		customers.GET("", listCustomers)
		customers.GET("/:id", getCustomer)
		customers.POST("", createCustomer)
		customers.PUT("/:id", updateCustomer)
		customers.GET("/:id/points", listCustomerPoints)
		customers.POST("/:id/points/adjust", adjustCustomerPoints)
	}

	levels := protected.Group("/customer_levels")
	{
		levels.GET("", listCustomerLevels)
		levels.POST("", createCustomerLevel)
		levels.PUT("/:id", updateCustomerLevel)
		levels.POST("/:id/default", setDefaultCustomerLevel)
	}

	orders := protected.Group("/orders")
	{
		orders.GET("", listOrders)
		orders.GET("/:id", getOrder)
		orders.POST("", createOrder)
		orders.POST("/:id/void", voidOrder)
	}

	refunds := protected.Group("/refunds")
	{
		refunds.GET("", listRefunds)
		refunds.GET("/:id", getRefund)
		refunds.POST("", createRefund)
		refunds.POST("/:id/complete", completeRefund)
	}

	invoices := protected.Group("/invoices")
	{
		invoices.GET("", listInvoices)
		invoices.GET("/:id", getInvoice)
		invoices.POST("", createInvoice)
		invoices.POST("/:id/issue", issueInvoice)
		invoices.POST("/:id/void", voidInvoice)
	}

	promotions := protected.Group("/promotions")
	{
		promotions.GET("", listPromotions)
		promotions.GET("/active", listActivePromotions)
		promotions.GET("/:id", getPromotion)
		promotions.POST("", createPromotion)
		promotions.PUT("/:id", updatePromotion)
		promotions.POST("/calculate", calculateDiscount)
	}

	coupons := protected.Group("/coupons")
	{
		coupons.GET("", listCoupons)
		coupons.POST("", createCoupon)
		coupons.PUT("/:id", updateCoupon)
		coupons.POST("/:id/disable", disableCoupon)
		coupons.POST("/validate", validateCoupon)
	}
}
