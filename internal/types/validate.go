package types

import (
	"fmt"
	"strings"
)

// FieldError names a single rejected instruction field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field error of one instruction so the
// caller can report them all at once instead of one round-trip per field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "invalid trade instruction"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "invalid trade instruction: " + strings.Join(parts, "; ")
}

// ValidateInstruction checks every field and returns the full error list;
// an empty slice means the instruction is acceptable.
func ValidateInstruction(in TradeInstruction) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(in.Ticker) == "" {
		errs = append(errs, FieldError{Field: "ticker", Message: "ticker is required"})
	}
	if strings.TrimSpace(in.Strategy) == "" {
		errs = append(errs, FieldError{Field: "strategy", Message: "strategy is required"})
	}
	if strings.TrimSpace(in.ExpDate) == "" {
		errs = append(errs, FieldError{Field: "expDate", Message: "expiration date is required"})
	}
	if in.Action != ActionBuy && in.Action != ActionSell {
		errs = append(errs, FieldError{Field: "action", Message: "action must be BUY or SELL"})
	}
	if in.Price < 0 {
		errs = append(errs, FieldError{Field: "price", Message: "price must not be negative"})
	}
	if in.Quantity <= 0 {
		errs = append(errs, FieldError{Field: "quantity", Message: "quantity must be a positive integer"})
	}
	if strings.TrimSpace(in.Date) == "" {
		errs = append(errs, FieldError{Field: "date", Message: "trade date is required"})
	}
	return errs
}
