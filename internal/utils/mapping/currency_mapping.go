package mapping

import (
	"github.com/SscSPs/currency_converter/internal/core/domain"
	"github.com/SscSPs/currency_converter/internal/models"
)

// ToModelCurrency converts a domain Currency to a model Currency
func ToModelCurrency(d domain.Currency) models.Currency {
	return models.Currency{
		Code:      d.Code,
		Name:      d.Name,
		Symbol:    d.Symbol,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt,
	}
}

// ToDomainCurrency converts a model Currency to a domain Currency
func ToDomainCurrency(m models.Currency) domain.Currency {
	return domain.Currency{
		Code:       m.Code,
		Name:       m.Name,
		Symbol:     m.Symbol,
		IsActive:   m.IsActive,
		Timestamps: domain.Timestamps{CreatedAt: m.CreatedAt},
	}
}

// ToDomainCurrencySlice converts a slice of model Currencies to a slice of domain Currencies
func ToDomainCurrencySlice(ms []models.Currency) []domain.Currency {
	ds := make([]domain.Currency, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCurrency(m)
	}
	return ds
}
