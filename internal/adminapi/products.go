package adminapi

import (
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/tiendaviva/tienda/internal/domain"
	"github.com/tiendaviva/tienda/internal/webserver"
	"github.com/tiendaviva/tienda/pkg/common"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type productPayload struct {
	Name      string           `json:"name"`
	Price     float64          `json:"price"`
	Image     string           `json:"image"`
	BaseStock int              `json:"baseStock"`
	Status    string           `json:"status"`
	Variants  []variantPayload `json:"variants"`
	Colors    []domain.Color   `json:"colors"`
	Remark    string           `json:"remark"`
}

// variantPayload keeps options raw because older admin clients send them
// either as an ordered list or as a map keyed by option value. The shape is
// normalized here, at the boundary; core logic only ever sees the ordered
// slice form.
type variantPayload struct {
	Name    string              `json:"name"`
	Type    string              `json:"type"`
	Options jsoniter.RawMessage `json:"options"`
}

// registerProductRoutes registers product CRUD and import/export endpoints
func registerProductRoutes() {
	webserver.ApiGET("/crm/products", listProducts)
	webserver.ApiGET("/crm/products/:id", getProduct)
	webserver.ApiPOST("/crm/products", createProduct)
	webserver.ApiPUT("/crm/products/:id", updateProduct)
	webserver.ApiDELETE("/crm/products/:id", deleteProduct)
	webserver.ApiGET("/crm/products/export", exportProductsCSV)
	webserver.ApiPOST("/crm/products/import", importProductsCSV)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Product{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		db = db.Where("name ILIKE ?", "%"+q+"%")
	}
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("status = ?", status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.Product
	if err := db.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if payload.BaseStock < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "baseStock must be >= 0", nil)
	}
	variants, err := normalizeVariants(payload.Variants)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}
	status := payload.Status
	if status == "" {
		status = common.ENABLED
	}

	now := time.Now()
	p := domain.Product{
		ID:        common.UUIDint64(),
		Name:      payload.Name,
		Price:     payload.Price,
		Image:     strings.TrimSpace(payload.Image),
		BaseStock: payload.BaseStock,
		Variants:  variants,
		Colors:    payload.Colors,
		Status:    status,
		Remark:    payload.Remark,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := GetDB(c).Create(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if payload.BaseStock < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "baseStock must be >= 0", nil)
	}
	variants, err := normalizeVariants(payload.Variants)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}

	p.Name = payload.Name
	p.Price = payload.Price
	p.Image = strings.TrimSpace(payload.Image)
	p.BaseStock = payload.BaseStock
	p.Variants = variants
	p.Colors = payload.Colors
	if payload.Status != "" {
		p.Status = payload.Status
	}
	p.Remark = payload.Remark
	p.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Product{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

// normalizeVariants turns the boundary payload into the single ordered
// form the core works with, rejecting duplicate dimensions and negative
// stock
func normalizeVariants(payload []variantPayload) (domain.VariantList, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	seen := map[string]bool{}
	out := make(domain.VariantList, 0, len(payload))
	for _, v := range payload {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			return nil, errors.New("variant name is required")
		}
		if seen[name] {
			return nil, errors.Errorf("duplicate variant %q", name)
		}
		seen[name] = true

		options, err := normalizeOptions(v.Options)
		if err != nil {
			return nil, errors.Wrapf(err, "variant %q", name)
		}
		for _, opt := range options {
			if opt.Stock < 0 {
				return nil, errors.Errorf("variant %q option %q has negative stock", name, opt.Label)
			}
		}
		out = append(out, domain.Variant{Name: name, Type: v.Type, Options: options})
	}
	return out, nil
}

// normalizeOptions accepts both historical shapes: an ordered list, or a
// map keyed by option value. The map form is sorted by key so the result
// is deterministic.
func normalizeOptions(raw jsoniter.RawMessage) ([]domain.VariantOption, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		var options []domain.VariantOption
		if err := json.Unmarshal(raw, &options); err != nil {
			return nil, errors.Wrap(err, "options list")
		}
		return options, nil
	case '{':
		var keyed map[string]domain.VariantOption
		if err := json.Unmarshal(raw, &keyed); err != nil {
			return nil, errors.Wrap(err, "options map")
		}
		keys := make([]string, 0, len(keyed))
		for k := range keyed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		options := make([]domain.VariantOption, 0, len(keyed))
		for _, k := range keys {
			opt := keyed[k]
			if opt.Value == "" {
				opt.Value = k
			}
			options = append(options, opt)
		}
		return options, nil
	default:
		return nil, errors.New("options must be a list or a map")
	}
}

// --- CSV import/export ---

type productCSVRow struct {
	ID        int64   `csv:"id"`
	Name      string  `csv:"name"`
	Price     float64 `csv:"price"`
	BaseStock int     `csv:"base_stock"`
	Status    string  `csv:"status"`
	Variants  string  `csv:"variants_json"`
}

func exportProductsCSV(c echo.Context) error {
	var rows []domain.Product
	if err := GetDB(c).Order("id").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	out := make([]productCSVRow, 0, len(rows))
	for _, p := range rows {
		variants := ""
		if len(p.Variants) > 0 {
			data, err := json.Marshal(p.Variants)
			if err == nil {
				variants = string(data)
			}
		}
		out = append(out, productCSVRow{
			ID: p.ID, Name: p.Name, Price: p.Price,
			BaseStock: p.BaseStock, Status: p.Status, Variants: variants,
		})
	}

	payload, err := gocsv.MarshalString(&out)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to render CSV", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(payload))
}

func importProductsCSV(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "CSV file is required", nil)
	}
	src, err := file.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to open upload", err.Error())
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read upload", err.Error())
	}

	var rows []productCSVRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse CSV", err.Error())
	}

	imported := 0
	now := time.Now()
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" || row.BaseStock < 0 {
			continue
		}
		var variants domain.VariantList
		if row.Variants != "" {
			if err := json.Unmarshal([]byte(row.Variants), &variants); err != nil {
				zap.L().Warn("product import row skipped", zap.String("name", name), zap.Error(err))
				continue
			}
		}
		status := row.Status
		if status == "" {
			status = common.ENABLED
		}
		p := domain.Product{
			ID:        common.UUIDint64(),
			Name:      name,
			Price:     row.Price,
			BaseStock: row.BaseStock,
			Variants:  variants,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := GetDB(c).Create(&p).Error; err != nil {
			zap.L().Warn("product import row skipped", zap.String("name", name), zap.Error(err))
			continue
		}
		imported++
	}
	return ok(c, map[string]interface{}{"imported": imported, "rows": len(rows)})
}
