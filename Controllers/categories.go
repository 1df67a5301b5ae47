package Controllers

import (
	"strconv"
	"strings"

	"Kasir/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CategoryController handles category endpoints
type CategoryController struct {
	DB *gorm.DB
}

// NewCategoryController creates a new CategoryController
func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{DB: db}
}

// GetCategories lists all categories sorted by name
func (c *CategoryController) GetCategories(ctx *fiber.Ctx) error {
	var categories []Models.Category
	if err := c.DB.Order("name ASC").Find(&categories).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve categories"})
	}
	return ctx.JSON(categories)
}

// CreateCategory adds a category
func (c *CategoryController) CreateCategory(ctx *fiber.Ctx) error {
	var input struct {
		Name string `json:"name"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nama kategori tidak boleh kosong"})
	}

	category := Models.Category{Name: name}
	if err := c.DB.Create(&category).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create category"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(category)
}

// UpdateCategory renames a category
func (c *CategoryController) UpdateCategory(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid category ID"})
	}

	var category Models.Category
	if result := c.DB.First(&category, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Kategori tidak ditemukan"})
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nama kategori tidak boleh kosong"})
	}

	category.Name = name
	if err := c.DB.Save(&category).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update category"})
	}
	return ctx.JSON(category)
}

// DeleteCategory removes a category. Blocked while any product still
// references it; the guard lives here, not in a database constraint.
func (c *CategoryController) DeleteCategory(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid category ID"})
	}

	var category Models.Category
	if result := c.DB.First(&category, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Kategori tidak ditemukan"})
	}

	var count int64
	if err := c.DB.Model(&Models.Product{}).Where("category_id = ?", category.ID).
		Count(&count).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check category usage"})
	}
	if count > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Tidak bisa hapus: ada " + strconv.FormatInt(count, 10) + " produk dalam kategori ini",
		})
	}

	if err := c.DB.Delete(&category).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete category"})
	}
	return ctx.JSON(fiber.Map{"message": "Kategori dihapus"})
}
