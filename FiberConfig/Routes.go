package FiberConfig

import (
	"Kasir/Controllers"
	"Kasir/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"
)

// SetupRoutes wires every controller into the route table
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize handlers
	authController := Controllers.NewAuthController(db)
	productController := Controllers.NewProductController(db)
	categoryController := Controllers.NewCategoryController(db)
	checkoutController := Controllers.NewCheckoutController(db)
	debtController := Controllers.NewDebtController(db)
	historyController := Controllers.NewHistoryController(db)
	settingsController := Controllers.NewSettingsController(db)
	backupController := Controllers.NewBackupController(db)
	reportController := Controllers.NewReportController(db)

	// API group
	api := app.Group("/api")

	// Auth routes
	api.Post("/register", authController.Register)
	api.Post("/login", authController.Login)
	api.Post("/logout", authController.Logout)
	api.Get("/user", middleware.Verify(1), authController.CurrentUser)

	// Catalog routes
	products := api.Group("/products", middleware.Verify(1))
	products.Get("/", productController.GetProducts)
	products.Get("/low-stock", productController.GetLowStock)
	products.Get("/barcode/:barcode", productController.GetProductByBarcode)
	products.Post("/", middleware.Verify(2), productController.CreateProduct)
	products.Put("/:id", middleware.Verify(2), productController.UpdateProduct)
	products.Delete("/:id", middleware.Verify(2), productController.DeleteProduct)
	products.Post("/:id/stock", middleware.Verify(2), productController.AdjustStock)
	products.Get("/:id/movements", productController.GetStockMovements)

	categories := api.Group("/categories", middleware.Verify(1))
	categories.Get("/", categoryController.GetCategories)
	categories.Post("/", middleware.Verify(2), categoryController.CreateCategory)
	categories.Put("/:id", middleware.Verify(2), categoryController.UpdateCategory)
	categories.Delete("/:id", middleware.Verify(2), categoryController.DeleteCategory)

	// Checkout routes
	checkout := api.Group("/checkout", middleware.Verify(1))
	checkout.Post("/", checkoutController.Checkout)
	checkout.Post("/debt", checkoutController.DebtCheckout)

	// Receivable routes
	customers := api.Group("/customers", middleware.Verify(1))
	customers.Get("/", debtController.GetCustomers)
	customers.Post("/", debtController.CreateCustomer)
	customers.Get("/:customer_id/debts", debtController.GetCustomerDebts)
	customers.Post("/:customer_id/pay", debtController.PayAllDebts)

	debts := api.Group("/debts", middleware.Verify(1))
	debts.Post("/:id/pay", debtController.PayDebt)

	// History routes
	transactions := api.Group("/transactions", middleware.Verify(1))
	transactions.Get("/", historyController.GetTransactions)
	transactions.Get("/summary", historyController.GetDailySummary)
	transactions.Get("/:id", historyController.GetTransaction)
	transactions.Post("/:id/reprint", historyController.Reprint)

	// Settings, backup and reports
	settings := api.Group("/settings", middleware.Verify(2))
	settings.Get("/", settingsController.GetSettings)
	settings.Put("/", settingsController.UpdateSettings)

	backup := api.Group("/backup", middleware.Verify(2))
	backup.Get("/export", backupController.Download)
	backup.Post("/telegram", backupController.SendToTelegram)
	backup.Post("/restore", middleware.Verify(3), backupController.Restore)
	backup.Post("/wipe", middleware.Verify(3), backupController.Wipe)

	api.Get("/reports/sales", middleware.Verify(2), reportController.SalesReport)
}

// NewApp builds the fiber application with the shared middleware stack
func NewApp(db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Kasir",
	})

	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowCredentials: true,
		AllowOrigins:     "http://localhost:5173, http://localhost:3000",
	}))

	SetupRoutes(app, db)
	return app
}
