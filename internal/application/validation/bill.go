package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/garyjia/billed/internal/domain/entity"
)

// ErrInvalidBill wraps every bill validation failure
var ErrInvalidBill = errors.New("invalid bill")

// BillValidator checks bills before the bills resource stores them
type BillValidator struct {
	validate *validator.Validate
}

// NewBillValidator creates a validator with the bill-specific rules registered
func NewBillValidator() *BillValidator {
	v := validator.New()
	_ = v.RegisterValidation("expensetype", func(fl validator.FieldLevel) bool {
		return entity.IsExpenseType(fl.Field().String())
	})
	_ = v.RegisterValidation("billstatus", func(fl validator.FieldLevel) bool {
		return entity.BillStatus(fl.Field().String()).IsValid()
	})
	return &BillValidator{validate: v}
}

// Validate returns an error wrapping ErrInvalidBill naming each failing field
func (bv *BillValidator) Validate(bill *entity.Bill) error {
	err := bv.validate.Struct(bill)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidBill, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidBill, strings.Join(msgs, ", "))
}
