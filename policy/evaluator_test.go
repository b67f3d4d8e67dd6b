package policy_test

import (
	"testing"

	"github.com/jcooky/go-din"
	"github.com/nexuscore/negotiator/entity"
	"github.com/nexuscore/negotiator/errors"
	"github.com/nexuscore/negotiator/internal/db"
	"github.com/nexuscore/negotiator/internal/mytesting"
	"github.com/nexuscore/negotiator/llm"
	"github.com/nexuscore/negotiator/policy"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type EvaluatorTestSuite struct {
	mytesting.Suite

	evaluator policy.Evaluator
	mock      *llm.MockClient
	DB        *gorm.DB
}

func (s *EvaluatorTestSuite) SetupTest() {
	s.Suite.SetupTest()

	s.mock = llm.NewMockClient()
	din.SetT[llm.Client](s.Container, s.mock)

	s.evaluator = din.MustGetT[policy.Evaluator](s.Container)
	s.DB = din.MustGet[*gorm.DB](s.Container, db.Key)
}

func (s *EvaluatorTestSuite) TestSkippedWithoutActivePolicy() {
	result, err := s.evaluator.Evaluate(s.Context, "Liability is unlimited.")
	s.Require().NoError(err)
	s.Require().Equal(policy.StatusSkipped, result.Status)
	s.Require().Empty(s.mock.Calls)
}

func (s *EvaluatorTestSuite) TestEvaluateAgainstActivePolicy() {
	s.Require().NoError(s.DB.Create(&entity.Policy{
		Name:        "Procurement Standard",
		Version:     "1.2",
		TextContent: "Liability must be capped at 12 months of fees.",
		IsActive:    true,
	}).Error)

	s.mock.ObjectPayload = `{"status": "NON_COMPLIANT", "score": 20, "reasoning": "uncapped liability", "flagged_issues": ["liability"]}`

	result, err := s.evaluator.Evaluate(s.Context, "Liability is unlimited.")
	s.Require().NoError(err)
	s.Require().Equal(policy.StatusNonCompliant, result.Status)
	s.Require().Equal(20, result.Score)
	s.Require().Equal([]string{"liability"}, result.FlaggedIssues)

	// The policy and the clause both reach the model, clearly fenced.
	s.Require().Len(s.mock.Calls, 1)
	s.Require().Contains(s.mock.Calls[0], "Liability must be capped at 12 months of fees.")
	s.Require().Contains(s.mock.Calls[0], "--- CONTRACT SEGMENT ---")
	s.Require().Contains(s.mock.Calls[0], "Liability is unlimited.")
}

func (s *EvaluatorTestSuite) TestFailsSafeOnModelError() {
	s.Require().NoError(s.DB.Create(&entity.Policy{
		Name:        "Procurement Standard",
		Version:     "1.2",
		TextContent: "Liability must be capped.",
		IsActive:    true,
	}).Error)

	s.mock.Err = errors.New("model unavailable")

	result, err := s.evaluator.Evaluate(s.Context, "Some clause.")
	s.Require().NoError(err)
	s.Require().Equal(policy.StatusNeedsReview, result.Status)
	s.Require().Equal(0, result.Score)
}

func TestEvaluator(t *testing.T) {
	suite.Run(t, new(EvaluatorTestSuite))
}
