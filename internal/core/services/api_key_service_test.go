package services_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/currency_converter/internal/apperrors"
	"github.com/SscSPs/currency_converter/internal/core/domain"
	"github.com/SscSPs/currency_converter/internal/core/services"
	"github.com/SscSPs/currency_converter/internal/repositories/memory"
	"github.com/SscSPs/currency_converter/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type APIKeyServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	repo    *memory.APIKeyRepository
	service *services.APIKeyService
}

func (suite *APIKeyServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	suite.repo = memory.NewAPIKeyRepository()
	suite.service = services.NewAPIKeyService(suite.repo, func() time.Time { return suite.now })
}

func (suite *APIKeyServiceTestSuite) saveKey(plain string, perHour int, active bool, expiresAt *time.Time) {
	suite.Require().NoError(suite.repo.SaveAPIKey(suite.ctx, domain.APIKey{
		KeyHash:         utils.HashAPIKey(plain),
		Name:            plain,
		RequestsPerHour: perHour,
		IsActive:        active,
		ExpiresAt:       expiresAt,
	}))
}

func (suite *APIKeyServiceTestSuite) TestIsValid() {
	past := suite.now.Add(-time.Minute)
	future := suite.now.Add(time.Hour)
	suite.saveKey("good", 10, true, nil)
	suite.saveKey("inactive", 10, false, nil)
	suite.saveKey("expired", 10, true, &past)
	suite.saveKey("expires-later", 10, true, &future)

	cases := map[string]bool{
		"good":          true,
		"inactive":      false,
		"expired":       false,
		"expires-later": true,
		"unknown":       false,
		"":              false,
	}
	for key, want := range cases {
		got, err := suite.service.IsValid(suite.ctx, key)
		suite.Require().NoError(err)
		suite.Equal(want, got, "key %q", key)
	}
}

func (suite *APIKeyServiceTestSuite) TestCheckQuota_Boundary() {
	const limit = 5
	suite.saveKey("k", limit, true, nil)

	for i := 1; i <= limit; i++ {
		ok, err := suite.service.CheckQuota(suite.ctx, "k", "10.0.0.1")
		suite.Require().NoError(err)
		suite.True(ok, "request %d must be accepted", i)
		suite.service.RecordUsage(suite.ctx, "k", "10.0.0.1", "/api/v1/convert", 200)
	}

	ok, err := suite.service.CheckQuota(suite.ctx, "k", "10.0.0.1")
	suite.Require().NoError(err)
	suite.False(ok, "request %d must be rejected", limit+1)
}

func (suite *APIKeyServiceTestSuite) TestCheckQuota_SlidingWindow() {
	suite.saveKey("k", 2, true, nil)
	suite.service.RecordUsage(suite.ctx, "k", "ip", "/a", 200)
	suite.now = suite.now.Add(30 * time.Minute)
	suite.service.RecordUsage(suite.ctx, "k", "ip", "/a", 200)

	ok, err := suite.service.CheckQuota(suite.ctx, "k", "ip")
	suite.Require().NoError(err)
	suite.False(ok)

	// The first request leaves the trailing hour 60m after it was made.
	suite.now = suite.now.Add(30*time.Minute + time.Second)
	ok, err = suite.service.CheckQuota(suite.ctx, "k", "ip")
	suite.Require().NoError(err)
	suite.True(ok)
}

func (suite *APIKeyServiceTestSuite) TestCheckQuota_UnknownKey() {
	ok, err := suite.service.CheckQuota(suite.ctx, "nope", "ip")
	suite.NoError(err)
	suite.False(ok)
}

func (suite *APIKeyServiceTestSuite) TestCheckQuota_StoreError() {
	repo := new(MockAPIKeyRepository)
	repo.On("FindByHash", mock.Anything, utils.HashAPIKey("k")).
		Return(&domain.APIKey{ID: 7, RequestsPerHour: 1, IsActive: true}, nil).Once()
	repo.On("CountUsageSince", mock.Anything, int64(7), suite.now.Add(-domain.QuotaWindow)).
		Return(0, assert.AnError).Once()
	service := services.NewAPIKeyService(repo, func() time.Time { return suite.now })

	_, err := service.CheckQuota(suite.ctx, "k", "ip")
	suite.ErrorIs(err, assert.AnError)
	repo.AssertExpectations(suite.T())
}

func (suite *APIKeyServiceTestSuite) TestRecordUsage_SwallowsErrors() {
	repo := new(MockAPIKeyRepository)
	repo.On("FindByHash", mock.Anything, utils.HashAPIKey("k")).
		Return(&domain.APIKey{ID: 7, RequestsPerHour: 1, IsActive: true}, nil).Once()
	repo.On("InsertUsage", mock.Anything, mock.MatchedBy(func(u domain.APIKeyUsage) bool {
		return u.APIKeyID == 7 && u.StatusCode == 404 && u.Endpoint == "/api/v1/convert" && u.IPAddress == "1.2.3.4"
	})).Return(assert.AnError).Once()
	service := services.NewAPIKeyService(repo, func() time.Time { return suite.now })

	suite.NotPanics(func() {
		service.RecordUsage(suite.ctx, "k", "1.2.3.4", "/api/v1/convert", 404)
	})
	repo.AssertExpectations(suite.T())
}

func (suite *APIKeyServiceTestSuite) TestAdmit_ResolvesKeyOnce() {
	repo := new(MockAPIKeyRepository)
	stored := &domain.APIKey{ID: 7, Name: "k", RequestsPerHour: 3, IsActive: true}
	repo.On("FindByHash", mock.Anything, utils.HashAPIKey("k")).Return(stored, nil).Once()
	repo.On("CountUsageSince", mock.Anything, int64(7), suite.now.Add(-domain.QuotaWindow)).Return(0, nil).Once()
	repo.On("InsertUsage", mock.Anything, mock.MatchedBy(func(u domain.APIKeyUsage) bool {
		return u.APIKeyID == 7 && u.StatusCode == 200
	})).Return(nil).Once()
	service := services.NewAPIKeyService(repo, func() time.Time { return suite.now })

	apiKey, decision, err := service.Admit(suite.ctx, "k", "ip")
	suite.Require().NoError(err)
	suite.Equal(domain.AdmissionAllowed, decision)
	service.RecordKeyUsage(suite.ctx, apiKey, "ip", "/api/v1/convert", 200)

	repo.AssertExpectations(suite.T())
	repo.AssertNumberOfCalls(suite.T(), "FindByHash", 1)
}

func (suite *APIKeyServiceTestSuite) TestAdmit_RejectsUnusableKeys() {
	past := suite.now.Add(-time.Minute)
	suite.saveKey("expired", 10, true, &past)
	suite.saveKey("inactive", 10, false, nil)

	for _, key := range []string{"expired", "inactive", "unknown", ""} {
		_, decision, err := suite.service.Admit(suite.ctx, key, "ip")
		suite.Require().NoError(err)
		suite.Equal(domain.AdmissionInvalidKey, decision, "key %q", key)
	}
}

func (suite *APIKeyServiceTestSuite) TestAdmit_BurstCannotOvershootQuota() {
	const limit = 5
	suite.saveKey("k", limit, true, nil)

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 4*limit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, decision, err := suite.service.Admit(suite.ctx, "k", "ip")
			if err == nil && decision == domain.AdmissionAllowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	suite.Equal(int32(limit), allowed.Load())
}

func (suite *APIKeyServiceTestSuite) TestAdmit_RecordingKeepsSlotCounted() {
	suite.saveKey("k", 2, true, nil)

	first, decision, err := suite.service.Admit(suite.ctx, "k", "ip")
	suite.Require().NoError(err)
	suite.Equal(domain.AdmissionAllowed, decision)
	_, decision, err = suite.service.Admit(suite.ctx, "k", "ip")
	suite.Require().NoError(err)
	suite.Equal(domain.AdmissionAllowed, decision)

	// Both slots are taken while the requests are still running.
	_, decision, err = suite.service.Admit(suite.ctx, "k", "ip")
	suite.Require().NoError(err)
	suite.Equal(domain.AdmissionQuotaExceeded, decision)

	// Recording moves a slot from pending to stored, it does not free it.
	suite.service.RecordKeyUsage(suite.ctx, first, "ip", "/a", 200)
	_, decision, err = suite.service.Admit(suite.ctx, "k", "ip")
	suite.Require().NoError(err)
	suite.Equal(domain.AdmissionQuotaExceeded, decision)
	suite.Equal(1, suite.repo.UsageCount(first.ID))

	// Once the recorded request leaves the window its slot frees up.
	suite.now = suite.now.Add(domain.QuotaWindow + time.Second)
	_, decision, err = suite.service.Admit(suite.ctx, "k", "ip")
	suite.Require().NoError(err)
	suite.Equal(domain.AdmissionAllowed, decision)
}

func (suite *APIKeyServiceTestSuite) TestIssueAPIKey() {
	plain, err := suite.service.IssueAPIKey(suite.ctx, "partner", 250, nil)
	suite.Require().NoError(err)
	suite.True(strings.HasPrefix(plain, "cc_"))
	suite.Len(plain, len("cc_")+48)

	stored, err := suite.repo.FindByHash(suite.ctx, utils.HashAPIKey(plain))
	suite.Require().NoError(err)
	suite.Equal("partner", stored.Name)
	suite.Equal(250, stored.RequestsPerHour)
	suite.True(stored.IsActive)

	valid, err := suite.service.IsValid(suite.ctx, plain)
	suite.NoError(err)
	suite.True(valid)

	other, err := suite.service.IssueAPIKey(suite.ctx, "partner-2", 250, nil)
	suite.Require().NoError(err)
	suite.NotEqual(plain, other)
}

func (suite *APIKeyServiceTestSuite) TestIssueAPIKey_Rejects() {
	_, err := suite.service.IssueAPIKey(suite.ctx, "", 10, nil)
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.IssueAPIKey(suite.ctx, "zero", 0, nil)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestAPIKeyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(APIKeyServiceTestSuite))
}
