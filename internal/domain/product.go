package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// VariantOption is one selectable value inside a variant dimension.
// Stock is the per-option counter used whenever the product has variants.
// Hex, Image, Shape and Size are presentation hints only and never
// participate in inventory logic.
type VariantOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Stock int    `json:"stock"`
	Hex   string `json:"hex,omitempty"`
	Image string `json:"image,omitempty"`
	Shape string `json:"shape,omitempty"`
	Size  string `json:"size,omitempty"`
}

// Variant is a product dimension (size, color, image...). Name doubles as
// the dimension identity used by cart selections and selection keys.
type Variant struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Options []VariantOption `json:"options"`
}

// Color is a product-level palette entry. Value is the normalized string
// form (usually a hex code) that cart items store.
type Color struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// VariantList is stored as a single jsonb column so the whole variants
// structure is always written back as one unit.
type VariantList []Variant

func (l VariantList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *VariantList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported variants column type %T", src)
	}
}

// ColorList is the product palette, stored as jsonb.
type ColorList []Color

func (l ColorList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *ColorList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported colors column type %T", src)
	}
}

// Product is a catalog item. BaseStock is only meaningful when Variants is
// empty; otherwise stock lives on the individual options.
type Product struct {
	ID        int64       `json:"id,string" gorm:"primaryKey"`
	Name      string      `gorm:"index" json:"name"`
	Price     float64     `json:"price"`
	Image     string      `gorm:"size:1024" json:"image"`
	BaseStock int         `gorm:"column:base_stock;default:0" json:"baseStock"`
	Variants  VariantList `gorm:"type:jsonb" json:"variants"`
	Colors    ColorList   `gorm:"type:jsonb" json:"colors"`
	Status    string      `gorm:"size:20;index;default:'enabled'" json:"status"`
	Remark    string      `json:"remark"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}

// HasVariants reports whether stock is tracked per option for this product
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}
