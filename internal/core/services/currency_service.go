package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/currency_converter/internal/apperrors"
	"github.com/SscSPs/currency_converter/internal/core/domain"
	portsrepo "github.com/SscSPs/currency_converter/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/currency_converter/internal/core/ports/services"
)

type CurrencyService struct {
	BaseService
	currencyRepo portsrepo.CurrencyReader
}

var _ portssvc.CurrencySvcFacade = (*CurrencyService)(nil)

func NewCurrencyService(currencyRepo portsrepo.CurrencyReader) *CurrencyService {
	return &CurrencyService{currencyRepo: currencyRepo}
}

func (s *CurrencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, domain.NormalizeCode(currencyCode))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("currency %s not found", currencyCode))
		}
		s.LogError(ctx, err, "Failed to get currency", slog.String("currency_code", currencyCode))
		return nil, fmt.Errorf("failed to get currency by code in service: %w", err)
	}
	return currency, nil
}

func (s *CurrencyService) ListCurrencies(ctx context.Context, activeOnly bool) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx, activeOnly)
	if err != nil {
		s.LogError(ctx, err, "Failed to list currencies")
		return nil, fmt.Errorf("failed to list currencies in service: %w", err)
	}
	// Return empty slice if no currencies found, not nil
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}

func (s *CurrencyService) CurrencyExists(ctx context.Context, currencyCode string) (bool, error) {
	exists, err := s.currencyRepo.CurrencyExists(ctx, domain.NormalizeCode(currencyCode))
	if err != nil {
		return false, fmt.Errorf("failed to check currency in service: %w", err)
	}
	return exists, nil
}
