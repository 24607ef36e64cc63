package domain

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductColor_DecodesObjectAndLegacyString(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want ProductColor
	}{
		{"object", `{"name":"Black","code":"#000000"}`, ProductColor{Name: "Black", Code: "#000000"}},
		{"legacy code", `"#ffffff"`, ProductColor{Code: "#ffffff"}},
		{"legacy name", `" Red "`, ProductColor{Name: "Red"}},
		{"null", `null`, ProductColor{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var c ProductColor
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &c))
			assert.Equal(t, tc.want, c)
		})
	}
}

// Feature: storefront-api, Property: colour union decoding
func TestProperty_ColorEncodingRoundTripsThroughObjectForm(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("object form always encodes back to the same colour", prop.ForAll(
		func(name, code string) bool {
			in := ProductColor{Name: name, Code: "#" + code}
			data, err := json.Marshal(in)
			if err != nil {
				return false
			}
			var out ProductColor
			if err := json.Unmarshal(data, &out); err != nil {
				return false
			}
			return out == in
		},
		gen.AlphaString(),
		gen.RegexMatch(`[0-9a-f]{6}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestPrice_DecodesStringAndNumber(t *testing.T) {
	var payload struct {
		A Price `json:"a"`
		B Price `json:"b"`
		C Price `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"10.00","b":5.5,"c":""}`), &payload))

	assert.Equal(t, Price(10), payload.A)
	assert.Equal(t, Price(5.5), payload.B)
	assert.Equal(t, Price(0), payload.C)
	assert.Equal(t, "10.00", payload.A.String())

	var bad Price
	assert.Error(t, json.Unmarshal([]byte(`"ten"`), &bad))
}

func TestSizeRefs_AcceptsIDsAndValues(t *testing.T) {
	var refs SizeRefs
	require.NoError(t, json.Unmarshal([]byte(`["7d6f0a3e-2b1c-4f55-9a1e-0c5b3f2d9e11", 42, "43.5", 44.5]`), &refs))

	assert.Equal(t, SizeRefs{"7d6f0a3e-2b1c-4f55-9a1e-0c5b3f2d9e11", "42", "43.5", "44.5"}, refs)

	assert.Error(t, json.Unmarshal([]byte(`"42"`), &refs))
}

func TestOrderStatus_Transitions(t *testing.T) {
	allowed := map[[2]OrderStatus]bool{
		{OrderStatusPending, OrderStatusConfirmed}:   true,
		{OrderStatusPending, OrderStatusCancelled}:   true,
		{OrderStatusConfirmed, OrderStatusDelivered}: true,
	}
	all := []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusDelivered, OrderStatusCancelled}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]OrderStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	assert.Equal(t, []string{OrderActionConfirm, OrderActionCancel}, OrderStatusPending.AllowedActions())
	assert.Equal(t, []string{OrderActionDeliver}, OrderStatusConfirmed.AllowedActions())
	assert.Empty(t, OrderStatusDelivered.AllowedActions())
	assert.Empty(t, OrderStatusCancelled.AllowedActions())
	assert.False(t, OrderStatus("shipped").Valid())
	assert.Len(t, CancellationReasons, 5)
}

func TestProduct_EffectivePriceAndFamily(t *testing.T) {
	p := Product{Price: 120, SellingPrice: 90}
	assert.Equal(t, Price(120), p.EffectivePrice())

	p.Sale = true
	assert.Equal(t, Price(90), p.EffectivePrice())

	assert.Equal(t, p.ID, p.FamilyID())
}
