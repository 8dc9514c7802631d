package handlers

import (
	"log/slog"
	"sync"

	"github.com/SscSPs/finance_ledger/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// RegisterValidators adds the custom binding tags used by the request DTOs.
// Safe to call more than once.
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			slog.Warn("Gin validator engine is not go-playground/validator; custom tags not registered")
			return
		}
		if err := v.RegisterValidation("frequency", validateFrequency); err != nil {
			slog.Error("Failed to register frequency validator", slog.String("error", err.Error()))
		}
		if err := v.RegisterValidation("currency_code", validateCurrencyCode); err != nil {
			slog.Error("Failed to register currency_code validator", slog.String("error", err.Error()))
		}
	})
}

func validateFrequency(fl validator.FieldLevel) bool {
	return domain.Frequency(fl.Field().String()).Valid()
}

// validateCurrencyCode accepts three ASCII letters in either case; services upper-case them.
func validateCurrencyCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}
