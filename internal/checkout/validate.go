// Package checkout validates the checkout form before an order is placed.
package checkout

import (
	"sort"
	"strings"

	"shoe-storefront/internal/domain"

	"github.com/samber/lo"
)

// Error keys of ValidationErrors.
const (
	FieldAddress           = "address"
	FieldDeliveryTime      = "deliveryTime"
	FieldSizes             = "sizes"
	FieldPaymentMethod     = "paymentMethod"
	FieldCashAmount        = "cashAmount"
	FieldPhoneNumber       = "phoneNumber"
	FieldPhoneConfirmation = "phoneConfirmation"
)

// DeliveryTimeOptions are the only accepted delivery windows.
var DeliveryTimeOptions = []string{
	"10:00 - 14:00",
	"14:00 - 18:00",
	"18:00 - 22:00",
}

// Form is the checkout request as submitted by the shopper.
type Form struct {
	AddressID     string               `json:"addressId"`
	DeliveryTime  string               `json:"deliveryTime"`
	Sizes         []string             `json:"sizes"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	CashAmount    *domain.Price        `json:"cashAmount,omitempty"`
	PhoneNumber   string               `json:"phoneNumber"`
	PhoneChoice   PhoneChoice          `json:"phoneChoice"`
}

// ValidationErrors maps a form field to a human readable message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := v.Fields()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "checkout validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the failing field names, sorted.
func (v ValidationErrors) Fields() []string {
	keys := lo.Keys(v)
	sort.Strings(keys)
	return keys
}

// SelectedSizes interprets Sizes as a sequence of selections.
func (f *Form) SelectedSizes() []string {
	return ReplaySizes(f.Sizes).IDs()
}

// EffectivePhone is the phone number the order will carry.
func (f *Form) EffectivePhone(storedPhone string) string {
	if storedPhone != "" && f.PhoneChoice == PhoneUseExisting {
		return storedPhone
	}
	return NormalizePhone(f.PhoneNumber)
}

// Validate checks the form. storedPhone is the phone number already on the
// shopper's profile, empty when there is none. The result is empty when the
// order may be submitted.
func Validate(f Form, storedPhone string) ValidationErrors {
	errs := ValidationErrors{}

	if strings.TrimSpace(f.AddressID) == "" {
		errs[FieldAddress] = "Please select a delivery address"
	}

	if !lo.Contains(DeliveryTimeOptions, f.DeliveryTime) {
		errs[FieldDeliveryTime] = "Please choose a delivery time"
	}

	if n := len(f.SelectedSizes()); n < 1 || n > MaxSelectedSizes {
		errs[FieldSizes] = "Please select one or two sizes"
	}

	switch f.PaymentMethod {
	case domain.PaymentMethodCash:
		if f.CashAmount == nil || *f.CashAmount <= 0 {
			errs[FieldCashAmount] = "Please enter the cash amount"
		}
	case domain.PaymentMethodCard:
	default:
		errs[FieldPaymentMethod] = "Please choose a payment method"
	}

	switch {
	case storedPhone != "" && !f.PhoneChoice.Confirmed():
		errs[FieldPhoneConfirmation] = "Please confirm whether to use your saved phone number"
	case storedPhone != "" && f.PhoneChoice == PhoneUseExisting:
	case !ValidLocalPhone(f.PhoneNumber):
		errs[FieldPhoneNumber] = "Please enter a 9-digit phone number"
	}

	return errs
}
