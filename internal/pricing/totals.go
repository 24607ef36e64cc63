// Package pricing computes basket and order totals.
//
// Amounts are float64 throughout and rounded to two decimals after the sum,
// so displayed values match what shoppers have always been shown.
package pricing

import (
	"strconv"

	"shoe-storefront/internal/domain"

	"github.com/samber/lo"
)

const (
	// FreeDeliveryThreshold is the subtotal from which delivery is free.
	FreeDeliveryThreshold = 100.0
	// DeliveryFee is charged below the threshold.
	DeliveryFee = 5.0
)

// Line is anything with a unit price and a quantity.
type Line interface {
	UnitPrice() float64
	Units() int
}

// Summary holds the rounded totals of a basket or order.
type Summary struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	Total       float64 `json:"total"`
}

// Formatted renders the summary amounts with two decimals.
func (s Summary) Formatted() map[string]string {
	return map[string]string{
		"subtotal":    FormatAmount(s.Subtotal),
		"deliveryFee": FormatAmount(s.DeliveryFee),
		"total":       FormatAmount(s.Total),
	}
}

// Totals computes subtotal, delivery fee and total for lines.
func Totals[L Line](lines []L) Summary {
	sum := lo.SumBy(lines, func(l L) float64 {
		return l.UnitPrice() * float64(l.Units())
	})

	subtotal := Round2(sum)
	fee := DeliveryFeeFor(subtotal)

	return Summary{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       Round2(subtotal + fee),
	}
}

// BasketTotals is Totals for basket items.
func BasketTotals(items []domain.BasketItem) Summary {
	return Totals(lo.Map(items, func(item domain.BasketItem, _ int) basketLine {
		return basketLine(item)
	}))
}

// OrderTotals is Totals for order items.
func OrderTotals(items []domain.OrderItem) Summary {
	return Totals(lo.Map(items, func(item domain.OrderItem, _ int) orderLine {
		return orderLine(item)
	}))
}

// DeliveryFeeFor returns the fee charged for a rounded subtotal.
func DeliveryFeeFor(subtotal float64) float64 {
	if subtotal >= FreeDeliveryThreshold {
		return 0
	}
	return DeliveryFee
}

// Round2 rounds to two decimals the way a fixed two-decimal rendering does:
// the exact binary value is formatted and parsed back.
func Round2(v float64) float64 {
	r, _ := strconv.ParseFloat(FormatAmount(v), 64)
	return r
}

// FormatAmount renders v with exactly two decimals, e.g. "25.50".
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

type basketLine domain.BasketItem

func (b basketLine) UnitPrice() float64 { return b.Price.Float() }
func (b basketLine) Units() int         { return b.Quantity }

type orderLine domain.OrderItem

func (o orderLine) UnitPrice() float64 { return o.Price.Float() }
func (o orderLine) Units() int         { return o.Quantity }
