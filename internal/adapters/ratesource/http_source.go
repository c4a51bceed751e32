package ratesource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/SscSPs/currency_converter/internal/core/domain"
	"github.com/SscSPs/currency_converter/internal/core/ports/providers"
)

// HTTPSourceConfig holds the remote endpoints of an HTTP rate provider.
type HTTPSourceConfig struct {
	RealTimeEndpoint   string
	HistoricalEndpoint string
	APIKey             string
	Timeout            time.Duration
}

// HTTPSource fetches rates from a remote JSON API.
type HTTPSource struct {
	cfg    HTTPSourceConfig
	client *http.Client
	logger *slog.Logger
}

var _ providers.RateSource = (*HTTPSource)(nil)

// NewHTTPSource creates an HTTPSource. A nil client gets one with cfg.Timeout.
func NewHTTPSource(cfg HTTPSourceConfig, client *http.Client, logger *slog.Logger) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPSource{cfg: cfg, client: client, logger: logger}
}

func (s *HTTPSource) GetRealTime(ctx context.Context, base string) (*providers.RealTimeRates, error) {
	q := url.Values{}
	q.Set("base", domain.NormalizeCode(base))

	var out providers.RealTimeRates
	if err := s.get(ctx, s.cfg.RealTimeEndpoint, q, &out); err != nil {
		return nil, err
	}
	if out.Rates == nil {
		return nil, providers.NewRateSourceError(providers.KindMalformedResponse, http.StatusOK, errors.New("response has no rates"))
	}
	return &out, nil
}

func (s *HTTPSource) GetHistorical(ctx context.Context, base, target string, start, end time.Time) (*providers.HistoricalRates, error) {
	q := url.Values{}
	q.Set("base", domain.NormalizeCode(base))
	q.Set("target", domain.NormalizeCode(target))
	q.Set("start_date", start.Format(domain.DateLayout))
	q.Set("end_date", end.Format(domain.DateLayout))

	var out providers.HistoricalRates
	if err := s.get(ctx, s.cfg.HistoricalEndpoint, q, &out); err != nil {
		return nil, err
	}
	if out.Rates == nil {
		return nil, providers.NewRateSourceError(providers.KindMalformedResponse, http.StatusOK, errors.New("response has no rates"))
	}
	return &out, nil
}

func (s *HTTPSource) get(ctx context.Context, endpoint string, q url.Values, dest any) error {
	if endpoint == "" {
		return providers.NewRateSourceError(providers.KindServiceUnavailable, 0, errors.New("endpoint not configured"))
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return providers.NewRateSourceError(providers.KindServiceUnavailable, 0, fmt.Errorf("invalid endpoint: %w", err))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return providers.NewRateSourceError(providers.KindServiceUnavailable, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("apikey", s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return providers.NewRateSourceError(providers.KindTransient, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("External rate source returned error status",
			slog.String("endpoint", endpoint), slog.Int("status", resp.StatusCode))
		_, _ = io.Copy(io.Discard, resp.Body)
		return providers.NewRateSourceError(classifyStatus(resp.StatusCode), resp.StatusCode, nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return providers.NewRateSourceError(providers.KindMalformedResponse, resp.StatusCode, err)
	}
	return nil
}

func classifyStatus(status int) providers.ErrorKind {
	switch {
	case status == http.StatusTooManyRequests:
		return providers.KindRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return providers.KindUnauthorized
	case status == http.StatusNotFound || status == http.StatusBadRequest:
		return providers.KindNotFound
	case status == http.StatusRequestTimeout || status >= 500:
		return providers.KindServiceUnavailable
	default:
		return providers.KindMalformedResponse
	}
}
