package service

import "errors"

var (
	ErrInvalidTransition          = errors.New("order status transition not allowed")
	ErrCancellationReasonRequired = errors.New("a cancellation reason is required")
	ErrEmptyBasket                = errors.New("basket is empty")
	ErrInvalidQuantity            = errors.New("quantity must be at least 1")
	ErrProductUnavailable         = errors.New("product is not available")
	ErrUnknownSize                = errors.New("unknown size")
	ErrInvalidVariant             = errors.New("invalid product variant")
	ErrVariantNotFound            = errors.New("no variant with this colour")
	ErrInvalidPhone               = errors.New("phone number must have 9 digits")
	ErrInvalidMedia               = errors.New("invalid media type")
)
