package productcontroller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// excelHeaders is the column layout shared by import and export
var excelHeaders = []string{
	"ID", "Name", "Slug", "Category", "Brand", "Description", "Price", "ListPrice",
	"CountInStock", "Tags", "Sizes", "Colors", "IsPublished", "Images",
}

const (
	colID = iota
	colName
	colSlug
	colCategory
	colBrand
	colDescription
	colPrice
	colListPrice
	colStock
	colTags
	colSizes
	colColors
	colPublished
	colImages
)

// excelRow is one parsed spreadsheet line
type excelRow struct {
	ID           uint
	Name         string
	Slug         string
	CategorySlug string
	Brand        string
	Description  string
	Price        decimal.Decimal
	ListPrice    decimal.Decimal
	CountInStock int
	Tags         []string
	Sizes        []string
	Colors       []string
	IsPublished  bool
	Images       []string
}

func splitCell(v string) []string {
	return cleanList(strings.Split(v, ","))
}

// parseExcelRow validates the cells of one data row
func parseExcelRow(cells []string) (excelRow, error) {
	get := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	row := excelRow{
		Name:         get(colName),
		Slug:         get(colSlug),
		CategorySlug: get(colCategory),
		Brand:        get(colBrand),
		Description:  get(colDescription),
		Tags:         splitCell(get(colTags)),
		Sizes:        splitCell(get(colSizes)),
		Colors:       splitCell(get(colColors)),
		Images:       splitCell(get(colImages)),
	}
	if row.Name == "" {
		return row, errors.New("name is required")
	}
	if row.CategorySlug == "" {
		return row, errors.New("category is required")
	}

	if v := get(colID); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return row, fmt.Errorf("invalid id %q", v)
		}
		row.ID = uint(id)
	}

	price, err := decimal.NewFromString(get(colPrice))
	if err != nil || price.IsNegative() {
		return row, fmt.Errorf("invalid price %q", get(colPrice))
	}
	row.Price = price
	row.ListPrice = price
	if v := get(colListPrice); v != "" {
		lp, err := decimal.NewFromString(v)
		if err != nil || lp.IsNegative() {
			return row, fmt.Errorf("invalid list price %q", v)
		}
		row.ListPrice = lp
	}

	if v := get(colStock); v != "" {
		// spreadsheets often store integers as "12.0"
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return row, fmt.Errorf("invalid stock %q", v)
		}
		row.CountInStock = int(f)
	}

	if v := get(colPublished); v != "" {
		b, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			return row, fmt.Errorf("invalid published flag %q", v)
		}
		row.IsPublished = b
	}
	return row, nil
}

// apply writes the row onto p, which is new when p.ID is zero
func (r excelRow) apply(p *models.Product, categoryID uint) {
	p.Name = r.Name
	p.CategoryID = categoryID
	p.Brand = r.Brand
	p.Description = r.Description
	p.Price = r.Price
	p.ListPrice = r.ListPrice
	p.CountInStock = r.CountInStock
	p.Sizes = r.Sizes
	p.Colors = r.Colors
	p.IsPublished = r.IsPublished
}

// findImportTarget matches a row to an existing product by id, then by slug. A product
// without an id means the row creates one.
func findImportTarget(tx *gorm.DB, row excelRow) (*models.Product, error) {
	locked := func() *gorm.DB { return tx.Clauses(clause.Locking{Strength: "UPDATE"}) }
	var product models.Product
	if row.ID != 0 {
		err := locked().First(&product, row.ID).Error
		if err == nil {
			return &product, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if row.Slug != "" {
		err := locked().Where("slug = ?", row.Slug).First(&product).Error
		if err == nil {
			return &product, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return &models.Product{}, nil
}

// importRow creates or updates one product and reports whether it was created
func importRow(tx *gorm.DB, row excelRow) (bool, error) {
	var category models.Category
	if err := tx.Where("slug = ?", row.CategorySlug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("%w: %q", ErrUnknownCategory, row.CategorySlug)
		}
		return false, err
	}

	product, err := findImportTarget(tx, row)
	if err != nil {
		return false, err
	}
	created := product.ID == 0
	row.apply(product, category.ID)

	if created || row.Slug != "" && row.Slug != product.Slug {
		s, err := resolveSlug(tx, row.Slug, row.Name, product.ID)
		if err != nil {
			return false, err
		}
		product.Slug = s
	}

	if err := tx.Omit(clause.Associations).Save(product).Error; err != nil {
		return false, err
	}

	if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductTag{}).Error; err != nil {
		return false, err
	}
	if tags := buildTags(row.Tags); len(tags) > 0 {
		for i := range tags {
			tags[i].ProductID = product.ID
		}
		if err := tx.Create(&tags).Error; err != nil {
			return false, err
		}
	}

	// image cells only seed products that have no images yet
	var imageCount int64
	if err := tx.Model(&models.ProductImage{}).Where("product_id = ?", product.ID).Count(&imageCount).Error; err != nil {
		return false, err
	}
	if imageCount == 0 && len(row.Images) > 0 {
		images := make([]models.ProductImage, 0, len(row.Images))
		for i, url := range row.Images {
			images = append(images, models.ProductImage{ProductID: product.ID, URL: url, Position: i})
		}
		if err := tx.Create(&images).Error; err != nil {
			return false, err
		}
	}
	return created, nil
}

// RowError reports why a spreadsheet row was skipped
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// rowErrorMessage is the reason shown for a skipped row. Storage failures are reported
// generically; internal is true when the cause needs logging.
func rowErrorMessage(err error) (msg string, internal bool) {
	switch {
	case errors.Is(err, ErrUnknownCategory), errors.Is(err, ErrSlugTaken), errors.Is(err, ErrEmptySlug):
		return err.Error(), false
	default:
		return "failed to save row", true
	}
}

// POST /admin/products/import-excel (multipart "file")
func ImportProductsFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "Excel file is required")
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			respond.Internal(c, err, "Failed to open Excel file")
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "Failed to parse Excel file")
			return
		}

		if len(xlFile.Sheets) == 0 || len(xlFile.Sheets[0].Rows) < 2 {
			respond.Error(c, http.StatusBadRequest, "Excel file is empty or missing header row")
			return
		}

		sheet := xlFile.Sheets[0]
		createdCount, updatedCount := 0, 0
		rowErrors := []RowError{}

		for i := 1; i < len(sheet.Rows); i++ {
			row := sheet.Rows[i]
			if row == nil {
				continue
			}
			cells := make([]string, len(row.Cells))
			blank := true
			for j, cell := range row.Cells {
				cells[j] = cell.String()
				if strings.TrimSpace(cells[j]) != "" {
					blank = false
				}
			}
			if blank {
				continue
			}

			parsed, err := parseExcelRow(cells)
			if err != nil {
				rowErrors = append(rowErrors, RowError{Row: i + 1, Error: err.Error()})
				continue
			}

			var created bool
			err = db.Transaction(func(tx *gorm.DB) error {
				var err error
				created, err = importRow(tx, parsed)
				return err
			})
			if err != nil {
				msg, internal := rowErrorMessage(err)
				if internal {
					logger.FromGin(c).Error("failed to import product row", zap.Int("row", i+1), zap.Error(err))
				}
				rowErrors = append(rowErrors, RowError{Row: i + 1, Error: msg})
				continue
			}
			if created {
				createdCount++
			} else {
				updatedCount++
			}
		}

		logger.FromGin(c).Info("products imported",
			zap.Int("created", createdCount),
			zap.Int("updated", updatedCount),
			zap.Int("skipped", len(rowErrors)))

		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": createdCount,
			"updated_count": updatedCount,
			"skipped_count": len(rowErrors),
			"errors":        rowErrors,
		})
	}
}
