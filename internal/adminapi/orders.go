package adminapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/tiendaviva/tienda/internal/checkout"
	"github.com/tiendaviva/tienda/internal/domain"
	"github.com/tiendaviva/tienda/internal/webserver"
)

type orderStatusPayload struct {
	Status string `json:"status"`
}

func registerOrderRoutes() {
	webserver.ApiGET("/crm/orders", listOrders)
	webserver.ApiGET("/crm/orders/:id", getOrder)
	webserver.ApiPUT("/crm/orders/:id/status", updateOrderStatus)
	webserver.ApiGET("/crm/orders/export", exportOrdersXLSX)
}

func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Order{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		db = db.Where("order_number ILIKE ? OR customer_name ILIKE ?", "%"+q+"%", "%"+q+"%")
	}
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("status = ?", status)
	}

	// Date filters accept whatever format the front-end sends
	if from := strings.TrimSpace(c.QueryParam("from")); from != "" {
		t, err := dateparse.ParseLocal(from)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unparseable from date", from)
		}
		db = db.Where("created_at >= ?", t)
	}
	if to := strings.TrimSpace(c.QueryParam("to")); to != "" {
		t, err := dateparse.ParseLocal(to)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unparseable to date", to)
		}
		db = db.Where("created_at <= ?", t)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	var rows []domain.Order
	if err := db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var order domain.Order
	if err := GetDB(c).Where("id = ?", id).First(&order).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}
	return ok(c, order)
}

// updateOrderStatus drives the order state machine. Moving into
// "processing" confirms the sale and triggers the stock reduction.
func updateOrderStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload orderStatusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", err.Error())
	}

	order, err := checkoutSvc.TransitionStatus(c.Request().Context(), id, payload.Status)
	if err != nil {
		if errors.Is(err, checkout.ErrInvalidTransition) {
			return fail(c, http.StatusConflict, "INVALID_TRANSITION", err.Error(), nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update order", err.Error())
	}
	return ok(c, order)
}

func exportOrdersXLSX(c echo.Context) error {
	db := GetDB(c).Model(&domain.Order{})
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("status = ?", status)
	}

	var rows []domain.Order
	if err := db.Order("created_at DESC").Limit(5000).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	f := excelize.NewFile()
	sheet := "Sheet1"
	headers := []string{"Order", "Status", "Customer", "Email", "Total", "Items", "Created"}
	for i, h := range headers {
		f.SetCellValue(sheet, fmt.Sprintf("%c1", 'A'+i), h)
	}
	for i, o := range rows {
		r := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r), o.OrderNumber)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", r), o.Status)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", r), o.CustomerName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", r), o.CustomerEmail)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", r), o.Total)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", r), len(o.Items))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", r), o.CreatedAt.Format("2006-01-02 15:04"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to render workbook", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
