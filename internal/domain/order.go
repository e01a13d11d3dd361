package domain

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Order lifecycle states. processOrderStock runs exactly once, on the
// transition into OrderStatusProcessing (the sale-confirmed state).
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusProcessing     = "processing"
	OrderStatusCompleted      = "completed"
	OrderStatusCancelled      = "cancelled"
)

// OrderTransitions lists the allowed status transitions
var OrderTransitions = map[string][]string{
	OrderStatusPendingPayment: {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing:     {OrderStatusCompleted, OrderStatusCancelled},
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to string) bool {
	for _, allowed := range OrderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// OrderItem is a line-item snapshot taken from the cart at checkout time.
// It deliberately copies name and price so later catalog edits do not
// rewrite order history.
type OrderItem struct {
	ProductID        int64                    `json:"productId,string"`
	Name             string                   `json:"name"`
	Price            float64                  `json:"price"`
	Quantity         int                      `json:"quantity"`
	SelectedVariants map[string]VariantOption `json:"selectedVariants,omitempty"`
	SelectedColor    string                   `json:"selectedColor,omitempty"`
}

// OrderItemList is stored as a single jsonb column
type OrderItemList []OrderItem

func (l OrderItemList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *OrderItemList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported order items column type %T", src)
	}
}

type Order struct {
	ID            int64         `json:"id,string" gorm:"primaryKey"`
	OrderNumber   string        `gorm:"size:40;uniqueIndex" json:"order_number"`
	Items         OrderItemList `gorm:"type:jsonb" json:"items"`
	Total         float64       `json:"total"`
	Status        string        `gorm:"size:30;index" json:"status"`
	CustomerName  string        `gorm:"size:200" json:"customer_name"`
	CustomerEmail string        `gorm:"size:200" json:"customer_email"`
	CustomerPhone string        `gorm:"size:50" json:"customer_phone"`
	ShipAddress   string        `gorm:"size:500" json:"ship_address"`
	ShipCity      string        `gorm:"size:100" json:"ship_city"`
	PaymentMethod string        `gorm:"size:50" json:"payment_method"`
	Remark        string        `json:"remark"`
	CreatedAt     time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}
