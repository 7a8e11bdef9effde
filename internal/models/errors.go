package models

import "errors"

// Common errors used throughout the application
var (
	ErrEventNotFound     = errors.New("event not found")
	ErrTierNotFound      = errors.New("ticket tier not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrLeadNotFound      = errors.New("lead not found")
	ErrCommunityNotFound = errors.New("community not found")
	ErrDiscountNotFound  = errors.New("discount code not found")
	ErrUnauthorized      = errors.New("unauthorized access")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrInsufficientStock = errors.New("insufficient ticket stock")
	ErrPaymentFailed     = errors.New("payment failed")
	ErrTicketingDisabled = errors.New("ticketing is disabled")
)
