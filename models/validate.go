package models

import (
	"github.com/shopspring/decimal"

	"salon-server/types"
)

// Validator is implemented by models with checks struct tags cannot express.
type Validator interface {
	Validate() error
}

func nonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return types.NewValidation("%s must not be negative", field)
	}
	return nil
}
