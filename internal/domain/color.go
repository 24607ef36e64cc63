package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProductColor is the colour value copied onto a product. It is not a
// reference to Color: renaming a Color does not touch existing products.
type ProductColor struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// UnmarshalJSON accepts the object form {"name","code"} and the legacy
// plain string form. A legacy string starting with '#' is a code,
// anything else is a name.
func (c *ProductColor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ProductColor{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var legacy string
		if err := json.Unmarshal(data, &legacy); err != nil {
			return err
		}
		*c = ColorFromLegacy(legacy)
		return nil
	}

	type plain ProductColor
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = ProductColor{Name: strings.TrimSpace(v.Name), Code: strings.TrimSpace(v.Code)}
	return nil
}

// ColorFromLegacy resolves the plain string colour representation.
func ColorFromLegacy(s string) ProductColor {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return ProductColor{Code: s}
	}
	return ProductColor{Name: s}
}

func (c ProductColor) IsZero() bool {
	return c.Name == "" && c.Code == ""
}

// Color is an entry of the admin-managed colour palette.
type Color struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Value returns the copy stored on products.
func (c *Color) Value() ProductColor {
	return ProductColor{Name: c.Name, Code: c.Code}
}
