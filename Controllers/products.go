package Controllers

import (
	"strconv"
	"strings"

	"Kasir/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdjustStock applies a signed manual delta to a product's stock, clamped at
// zero, and appends the movement row with the requested delta. Positive
// deltas are restocks, negative ones adjustments. There is no insufficient
// stock error; clamping is the policy and the UI surfaces low/out-of-stock.
func AdjustStock(db *gorm.DB, productID uint, delta int) (*Models.Product, error) {
	var product Models.Product
	if err := db.First(&product, productID).Error; err != nil {
		return nil, errValidation("Produk tidak ditemukan")
	}

	newStock := product.Stock + delta
	if newStock < 0 {
		newStock = 0
	}
	if err := db.Model(&Models.Product{}).Where("id = ?", product.ID).
		Update("stock", newStock).Error; err != nil {
		return nil, err
	}

	reason := Models.MovementAdjust
	if delta > 0 {
		reason = Models.MovementRestock
	}
	movement := Models.StockMovement{ProductID: product.ID, Delta: delta, Reason: reason}
	if err := db.Create(&movement).Error; err != nil {
		return nil, err
	}

	product.Stock = newStock
	return &product, nil
}

// ProductController handles catalog endpoints
type ProductController struct {
	DB *gorm.DB
}

// NewProductController creates a new ProductController
func NewProductController(db *gorm.DB) *ProductController {
	return &ProductController{DB: db}
}

type ProductInput struct {
	Name              string `json:"name" validate:"required"`
	CategoryID        *uint  `json:"category_id"`
	Price             int    `json:"price" validate:"gte=0"`
	ResellerPrice     int    `json:"reseller_price" validate:"gte=0"`
	Stock             int    `json:"stock" validate:"gte=0"`
	LowStockThreshold int    `json:"low_stock_threshold" validate:"gte=0"`
	Barcode           string `json:"barcode"`
}

func (input *ProductInput) apply(product *Models.Product) {
	product.Name = strings.TrimSpace(input.Name)
	product.CategoryID = input.CategoryID
	product.Price = input.Price
	product.ResellerPrice = input.ResellerPrice
	if product.ResellerPrice == 0 {
		product.ResellerPrice = input.Price
	}
	product.Stock = input.Stock
	product.LowStockThreshold = input.LowStockThreshold
	if barcode := strings.TrimSpace(input.Barcode); barcode != "" {
		product.Barcode = &barcode
	} else {
		product.Barcode = nil
	}
}

// GetProducts lists products sorted by name, optionally filtered by search
// term or category
func (c *ProductController) GetProducts(ctx *fiber.Ctx) error {
	query := c.DB.Model(&Models.Product{}).Order("name ASC")
	if search := ctx.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if category := ctx.Query("category_id"); category != "" {
		query = query.Where("category_id = ?", category)
	}

	var products []Models.Product
	if err := query.Find(&products).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve products"})
	}
	return ctx.JSON(products)
}

// GetProductByBarcode resolves a scanned barcode to a product
func (c *ProductController) GetProductByBarcode(ctx *fiber.Ctx) error {
	barcode := ctx.Params("barcode")
	var product Models.Product
	if err := c.DB.Where("barcode = ?", barcode).First(&product).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Produk dengan barcode ini tidak ditemukan"})
	}
	return ctx.JSON(product)
}

// GetLowStock lists products at or below their low-stock threshold
func (c *ProductController) GetLowStock(ctx *fiber.Ctx) error {
	var products []Models.Product
	if err := c.DB.Where("stock <= low_stock_threshold").
		Order("stock ASC").Find(&products).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve products"})
	}
	return ctx.JSON(products)
}

// CreateProduct adds a catalog product
func (c *ProductController) CreateProduct(ctx *fiber.Ctx) error {
	var input ProductInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nama produk dan harga harus valid"})
	}

	var product Models.Product
	input.apply(&product)
	if err := c.DB.Create(&product).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to create product",
			"message": err.Error(),
		})
	}
	return ctx.Status(fiber.StatusCreated).JSON(product)
}

// UpdateProduct edits a catalog product. Historical transaction items keep
// their snapshots and are not touched.
func (c *ProductController) UpdateProduct(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var product Models.Product
	if result := c.DB.First(&product, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Produk tidak ditemukan"})
	}

	var input ProductInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nama produk dan harga harus valid"})
	}

	input.apply(&product)
	if err := c.DB.Save(&product).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to update product",
			"message": err.Error(),
		})
	}
	return ctx.JSON(product)
}

// DeleteProduct removes a product from the catalog. Sold items keep their
// denormalized snapshots so history is unaffected.
func (c *ProductController) DeleteProduct(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var product Models.Product
	if result := c.DB.First(&product, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Produk tidak ditemukan"})
	}

	if err := c.DB.Delete(&product).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete product"})
	}
	return ctx.JSON(fiber.Map{"message": "Produk dihapus"})
}

// AdjustStock applies a manual stock delta
func (c *ProductController) AdjustStock(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var input struct {
		Delta int `json:"delta"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.Delta == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Delta tidak boleh 0"})
	}

	product, err := AdjustStock(c.DB, uint(id), input.Delta)
	if err != nil {
		return checkoutError(ctx, err)
	}
	return ctx.JSON(product)
}

// GetStockMovements lists the audit trail for one product, newest first
func (c *ProductController) GetStockMovements(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var movements []Models.StockMovement
	if err := c.DB.Where("product_id = ?", id).
		Order("created_at DESC").Find(&movements).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve movements"})
	}
	return ctx.JSON(movements)
}
