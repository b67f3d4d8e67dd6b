package supplier_test

import (
	"testing"

	"github.com/jcooky/go-din"
	"github.com/nexuscore/negotiator/entity"
	"github.com/nexuscore/negotiator/errors"
	"github.com/nexuscore/negotiator/internal/db"
	"github.com/nexuscore/negotiator/internal/mytesting"
	"github.com/nexuscore/negotiator/llm"
	"github.com/nexuscore/negotiator/supplier"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type IntelligenceTestSuite struct {
	mytesting.Suite

	intelligence supplier.Intelligence
	mock         *llm.MockClient
	DB           *gorm.DB
}

func (s *IntelligenceTestSuite) SetupTest() {
	s.Suite.SetupTest()

	s.mock = llm.NewMockClient()
	din.SetT[llm.Client](s.Container, s.mock)

	s.intelligence = din.MustGetT[supplier.Intelligence](s.Container)
	s.DB = din.MustGet[*gorm.DB](s.Container, db.Key)
}

func (s *IntelligenceTestSuite) createSupplier(name, lei string) *entity.Supplier {
	sup := entity.Supplier{Name: name, LEI: lei}
	s.Require().NoError(s.DB.Create(&sup).Error)
	return &sup
}

func (s *IntelligenceTestSuite) TestUnknownSupplier() {
	_, err := s.intelligence.UpdateRiskProfile(s.Context, 9999)
	s.Require().ErrorIs(err, errors.ErrNotFound)
}

func (s *IntelligenceTestSuite) TestHealthySupplier() {
	sup := s.createSupplier("Acme Metals", "549300ABCDEF12345678")

	profile, err := s.intelligence.UpdateRiskProfile(s.Context, sup.ID)
	s.Require().NoError(err)

	s.Require().Equal(85, profile.FinancialStressScore)
	s.Require().False(profile.SanctionsFlag)
	s.Require().Zero(profile.AdverseMediaCount)

	// stress 85, neutral sentiment: (100-85)*0.6 + 50*0.4
	s.Require().InDelta(29.0, profile.RiskScore, 0.01)

	var reloaded entity.Supplier
	s.Require().NoError(s.DB.First(&reloaded, sup.ID).Error)
	s.Require().InDelta(29.0, reloaded.RiskScore, 0.01)
}

func (s *IntelligenceTestSuite) TestFinanciallyStressedSupplier() {
	sup := s.createSupplier("Shaky Industries", "999000XYZ")

	profile, err := s.intelligence.UpdateRiskProfile(s.Context, sup.ID)
	s.Require().NoError(err)

	s.Require().Equal(25, profile.FinancialStressScore)
	s.Require().InDelta(65.0, profile.RiskScore, 0.01)
}

func (s *IntelligenceTestSuite) TestAdverseMediaIsCounted() {
	sup := s.createSupplier("Risky Logistics", "549300ABCDEF12345678")

	profile, err := s.intelligence.UpdateRiskProfile(s.Context, sup.ID)
	s.Require().NoError(err)
	s.Require().Equal(2, profile.AdverseMediaCount)
}

func (s *IntelligenceTestSuite) TestSanctionedSupplierPinsScore() {
	sup := s.createSupplier("Sanctioned Trading Co", "549300ABCDEF12345678")

	profile, err := s.intelligence.UpdateRiskProfile(s.Context, sup.ID)
	s.Require().NoError(err)

	s.Require().True(profile.SanctionsFlag)
	s.Require().InDelta(100.0, profile.RiskScore, 0.01)
}

func (s *IntelligenceTestSuite) TestAnalysisFailureFallsBackToMonitor() {
	sup := s.createSupplier("Acme Metals", "549300ABCDEF12345678")

	s.mock.Err = errors.New("model unavailable")

	profile, err := s.intelligence.UpdateRiskProfile(s.Context, sup.ID)
	s.Require().NoError(err)
	s.Require().Equal("MONITOR", profile.RecommendedAction)
}

func TestIntelligence(t *testing.T) {
	suite.Run(t, new(IntelligenceTestSuite))
}
