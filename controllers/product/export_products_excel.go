package productcontroller

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// productCells lays p out in excelHeaders order
func productCells(p *models.Product) []string {
	categorySlug := ""
	if p.Category != nil {
		categorySlug = p.Category.Slug
	}
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, img.URL)
	}

	return []string{
		strconv.FormatUint(uint64(p.ID), 10),
		p.Name,
		p.Slug,
		categorySlug,
		p.Brand,
		p.Description,
		p.Price.StringFixed(2),
		p.ListPrice.StringFixed(2),
		strconv.Itoa(p.CountInStock),
		strings.Join(p.TagNames(), ","),
		strings.Join(p.Sizes, ","),
		strings.Join(p.Colors, ","),
		strconv.FormatBool(p.IsPublished),
		strings.Join(images, ","),
	}
}

// buildProductsWorkbook writes a header row and one row per product
func buildProductsWorkbook(products []models.Product) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, err
	}

	headerRow := sheet.AddRow()
	for _, h := range excelHeaders {
		headerRow.AddCell().SetString(h)
	}

	for i := range products {
		row := sheet.AddRow()
		for j, v := range productCells(&products[i]) {
			switch j {
			case colID, colStock:
				n, _ := strconv.Atoi(v)
				row.AddCell().SetInt(n)
			default:
				row.AddCell().SetString(v)
			}
		}
	}
	return file, nil
}

// GET /admin/products/export-excel
func ExportProductsToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := withListingAssociations(db).Order("id ASC").Find(&products).Error; err != nil {
			respond.Internal(c, err, "Failed to fetch products")
			return
		}

		file, err := buildProductsWorkbook(products)
		if err != nil {
			respond.Internal(c, err, "Failed to create Excel sheet")
			return
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			respond.Internal(c, err, "Failed to write Excel file")
			return
		}
	}
}
