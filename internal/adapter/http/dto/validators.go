package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var txHashRe = regexp.MustCompile(`^0x[0-9a-fA-F]{6,64}$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("tx_hash", validateTxHash)
		_ = v.RegisterValidation("positive_decimal", validatePositiveDecimal)
	}
}

// validateTxHash accepts 0x-prefixed hex transfer hashes.
func validateTxHash(fl validator.FieldLevel) bool {
	return txHashRe.MatchString(fl.Field().String())
}

// validatePositiveDecimal accepts decimal strings strictly greater than zero.
func validatePositiveDecimal(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive()
}
