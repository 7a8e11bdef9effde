package models

import (
	"errors"
	"regexp"
	"strings"
)

// Email validation regex shared by buyer info and lead records
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// BuyerInfo represents the purchaser details collected at checkout
type BuyerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Validate validates buyer information before checkout may proceed
func (b *BuyerInfo) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return errors.New("buyer name is required")
	}

	if len(b.Name) > 255 {
		return errors.New("buyer name must be less than 255 characters")
	}

	if b.Email == "" {
		return errors.New("buyer email is required")
	}

	if len(b.Email) > 255 {
		return errors.New("buyer email must be less than 255 characters")
	}

	if !emailRegex.MatchString(b.Email) {
		return errors.New("buyer email format is invalid")
	}

	return nil
}
