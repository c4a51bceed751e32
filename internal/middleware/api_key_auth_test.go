package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/currency_converter/internal/core/domain"
	"github.com/SscSPs/currency_converter/internal/middleware"
	"github.com/SscSPs/currency_converter/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockAPIKeySvc struct {
	mock.Mock
}

func (m *MockAPIKeySvc) IsValid(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockAPIKeySvc) CheckQuota(ctx context.Context, key, ip string) (bool, error) {
	args := m.Called(ctx, key, ip)
	return args.Bool(0), args.Error(1)
}

func (m *MockAPIKeySvc) RecordUsage(ctx context.Context, key, ip, endpoint string, statusCode int) {
	m.Called(ctx, key, ip, endpoint, statusCode)
}

func (m *MockAPIKeySvc) Admit(ctx context.Context, key, ip string) (*domain.APIKey, domain.Admission, error) {
	args := m.Called(ctx, key, ip)
	var apiKey *domain.APIKey
	if args.Get(0) != nil {
		apiKey = args.Get(0).(*domain.APIKey)
	}
	return apiKey, args.Get(1).(domain.Admission), args.Error(2)
}

func (m *MockAPIKeySvc) RecordKeyUsage(ctx context.Context, apiKey *domain.APIKey, ip, endpoint string, statusCode int) {
	m.Called(ctx, apiKey, ip, endpoint, statusCode)
}

type APIKeyAuthTestSuite struct {
	suite.Suite
	svc    *MockAPIKeySvc
	router *gin.Engine
}

func (suite *APIKeyAuthTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.svc = new(MockAPIKeySvc)
	suite.router = gin.New()
	suite.router.Use(middleware.APIKeyAuth(suite.svc))
	suite.router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	suite.router.GET("/api/v1/currencies", func(c *gin.Context) {
		key, _ := middleware.GetAPIKeyFromContext(c)
		c.JSON(http.StatusOK, gin.H{"key": key})
	})
	suite.router.GET("/api/v1/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "nope"})
	})
}

func (suite *APIKeyAuthTestSuite) do(path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if key != "" {
		req.Header.Set(middleware.APIKeyHeader, key)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *APIKeyAuthTestSuite) TestDecisionsAreCounted() {
	counter := metrics.AdmissionDecisions.WithLabelValues("missing_key")
	before := testutil.ToFloat64(counter)

	suite.do("/api/v1/currencies", "")
	suite.do("/api/v1/currencies", "")

	suite.Equal(before+2, testutil.ToFloat64(counter))
}

func (suite *APIKeyAuthTestSuite) TestPublicRouteBypassesGate() {
	w := suite.do("/health", "")
	suite.Equal(http.StatusOK, w.Code)
	suite.svc.AssertNotCalled(suite.T(), "Admit", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *APIKeyAuthTestSuite) TestMissingKey() {
	w := suite.do("/api/v1/currencies", "")
	suite.Equal(http.StatusUnauthorized, w.Code)

	var body map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("API key is required", body["error"])
	suite.EqualValues(http.StatusUnauthorized, body["statusCode"])
	suite.NotEmpty(body["timestamp"])
}

func (suite *APIKeyAuthTestSuite) TestInvalidKey() {
	suite.svc.On("Admit", mock.Anything, "bad", "192.0.2.1").Return(nil, domain.AdmissionInvalidKey, nil).Once()

	w := suite.do("/api/v1/currencies", "bad")
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.svc.AssertNotCalled(suite.T(), "RecordKeyUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *APIKeyAuthTestSuite) TestQuotaExceeded() {
	suite.svc.On("Admit", mock.Anything, "k", "192.0.2.1").
		Return(&domain.APIKey{ID: 7}, domain.AdmissionQuotaExceeded, nil).Once()

	w := suite.do("/api/v1/currencies", "k")
	suite.Equal(http.StatusTooManyRequests, w.Code)
	suite.svc.AssertExpectations(suite.T())
	suite.svc.AssertNotCalled(suite.T(), "RecordKeyUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *APIKeyAuthTestSuite) TestAdmissionError() {
	suite.svc.On("Admit", mock.Anything, "k", "192.0.2.1").Return(nil, domain.AdmissionInvalidKey, assert.AnError).Once()

	w := suite.do("/api/v1/currencies", "k")
	suite.Equal(http.StatusInternalServerError, w.Code)
}

func (suite *APIKeyAuthTestSuite) TestAllowedRecordsFinalStatus() {
	apiKey := &domain.APIKey{ID: 7, Name: "k", RequestsPerHour: 10, IsActive: true}
	suite.svc.On("Admit", mock.Anything, "k", "192.0.2.1").Return(apiKey, domain.AdmissionAllowed, nil).Twice()
	suite.svc.On("RecordKeyUsage", mock.Anything, apiKey, "192.0.2.1", "/api/v1/currencies", http.StatusOK).Once()
	suite.svc.On("RecordKeyUsage", mock.Anything, apiKey, "192.0.2.1", "/api/v1/missing", http.StatusNotFound).Once()

	w := suite.do("/api/v1/currencies", "k")
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"key":"k"}`, w.Body.String())

	w = suite.do("/api/v1/missing", "k")
	suite.Equal(http.StatusNotFound, w.Code)

	suite.svc.AssertExpectations(suite.T())
	// The key is resolved once per request.
	suite.svc.AssertNumberOfCalls(suite.T(), "Admit", 2)
	suite.svc.AssertNotCalled(suite.T(), "IsValid", mock.Anything, mock.Anything)
	suite.svc.AssertNotCalled(suite.T(), "RecordUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *APIKeyAuthTestSuite) TestPanickingHandlerStillRecords() {
	apiKey := &domain.APIKey{ID: 7}
	suite.svc.On("Admit", mock.Anything, "k", "192.0.2.1").Return(apiKey, domain.AdmissionAllowed, nil).Once()
	suite.svc.On("RecordKeyUsage", mock.Anything, apiKey, "192.0.2.1", "/api/v1/boom", http.StatusInternalServerError).Once()

	router := gin.New()
	router.Use(gin.Recovery(), middleware.APIKeyAuth(suite.svc))
	router.GET("/api/v1/boom", func(c *gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/boom", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set(middleware.APIKeyHeader, "k")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.svc.AssertExpectations(suite.T())
}

func TestAPIKeyAuthTestSuite(t *testing.T) {
	suite.Run(t, new(APIKeyAuthTestSuite))
}
