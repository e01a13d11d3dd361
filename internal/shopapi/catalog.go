package shopapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/tiendaviva/tienda/internal/domain"
	"github.com/tiendaviva/tienda/internal/store"
	"github.com/tiendaviva/tienda/internal/webserver"
	"github.com/tiendaviva/tienda/pkg/common"
)

func registerCatalogRoutes() {
	webserver.PubGET("/shop/products", listCatalog)
	webserver.PubGET("/shop/products/:id", catalogDetail)
	webserver.PubGET("/shop/products/:id/options/:variant", variantOptions)
	webserver.PubPOST("/shop/products/:id/stock", combinationStock)
}

// productView is the shopper-facing projection: each variant only carries
// the options that can still be chosen
type productView struct {
	ID         int64            `json:"id,string"`
	Name       string           `json:"name"`
	Price      float64          `json:"price"`
	Image      string           `json:"image,omitempty"`
	Variants   []domain.Variant `json:"variants,omitempty"`
	Colors     []domain.Color   `json:"colors,omitempty"`
	TotalStock int              `json:"totalStock"`
}

func viewOf(p *domain.Product) productView {
	view := productView{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Image:      p.Image,
		Colors:     p.Colors,
		TotalStock: store.TotalStock(p),
	}
	for _, v := range p.Variants {
		view.Variants = append(view.Variants, domain.Variant{
			Name:    v.Name,
			Type:    v.Type,
			Options: store.OptionsInStock(v),
		})
	}
	return view
}

func listCatalog(c echo.Context) error {
	page := 1
	pageSize := 24
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}

	db := GetDB(c).Model(&domain.Product{}).Where("status = ?", common.ENABLED)
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		db = db.Where("name ILIKE ?", "%"+q+"%")
	}

	var rows []domain.Product
	if err := db.Order("name").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query catalog", err.Error())
	}

	views := make([]productView, 0, len(rows))
	for i := range rows {
		views = append(views, viewOf(&rows[i]))
	}
	return ok(c, views)
}

func catalogDetail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	product, err := products.FetchProduct(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, viewOf(product))
}

func variantOptions(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	product, err := products.FetchProduct(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	options := store.AvailableOptionsForVariant(product.Variants, c.Param("variant"))
	return ok(c, options)
}

type stockQueryPayload struct {
	SelectedVariants map[string]domain.VariantOption `json:"selectedVariants"`
}

// combinationStock answers "how many of this exact combination can be
// sold right now"
func combinationStock(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload stockQueryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse selection", err.Error())
	}
	product, err := products.FetchProduct(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var stock int
	if product.HasVariants() && len(payload.SelectedVariants) > 0 {
		stock = store.CombinationStock(product.Variants, payload.SelectedVariants)
	} else {
		stock = store.TotalStock(product)
	}
	return ok(c, map[string]interface{}{
		"stock":     stock,
		"available": stock > 0,
	})
}
