package mapping

import (
	"github.com/SscSPs/currency_converter/internal/core/domain"
	"github.com/SscSPs/currency_converter/internal/models"
)

func ToModelAPIKey(d domain.APIKey) models.APIKey {
	return models.APIKey{
		ID:              d.ID,
		KeyHash:         d.KeyHash,
		Name:            d.Name,
		RequestsPerHour: d.RequestsPerHour,
		IsActive:        d.IsActive,
		ExpiresAt:       d.ExpiresAt,
		CreatedAt:       d.CreatedAt,
	}
}

func ToDomainAPIKey(m models.APIKey) domain.APIKey {
	return domain.APIKey{
		ID:              m.ID,
		KeyHash:         m.KeyHash,
		Name:            m.Name,
		RequestsPerHour: m.RequestsPerHour,
		IsActive:        m.IsActive,
		ExpiresAt:       m.ExpiresAt,
		CreatedAt:       m.CreatedAt,
	}
}

func ToModelAPIKeyUsage(d domain.APIKeyUsage) models.APIKeyUsage {
	return models.APIKeyUsage{
		ID:          d.ID,
		APIKeyID:    d.APIKeyID,
		RequestTime: d.RequestTime,
		IPAddress:   d.IPAddress,
		Endpoint:    d.Endpoint,
		StatusCode:  d.StatusCode,
	}
}
