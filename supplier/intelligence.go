package supplier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jcooky/go-din"
	"github.com/mokiat/gog"
	"github.com/nexuscore/negotiator/entity"
	"github.com/nexuscore/negotiator/errors"
	"github.com/nexuscore/negotiator/internal/db"
	"github.com/nexuscore/negotiator/internal/mylog"
	"github.com/nexuscore/negotiator/llm"
	"gorm.io/gorm"
)

type (
	RiskProfile struct {
		SupplierID uint

		FinancialStressScore int
		CreditRating         string
		SanctionsFlag        bool
		SanctionsListMatch   string
		NewsSentimentScore   float64
		AdverseMediaCount    int
		RiskSummary          string
		RecommendedAction    string

		// 0 (safe) to 100 (critical), also written back to the
		// supplier record.
		RiskScore float64
	}

	riskAssessment struct {
		NewsSentimentScore float64 `json:"news_sentiment_score" jsonschema:"minimum=-1,maximum=1"`
		RiskSummary        string  `json:"risk_summary"`
		RecommendedAction  string  `json:"recommended_action" jsonschema:"enum=HOLD,enum=MONITOR,enum=PROCEED"`
	}

	// Intelligence gathers external data and synthesizes a supplier
	// risk profile, persisting the blended score on the supplier.
	Intelligence interface {
		UpdateRiskProfile(ctx context.Context, supplierID uint) (*RiskProfile, error)
	}

	intelligence struct {
		logger   *mylog.Logger
		db       *gorm.DB
		llm      llm.Client
		provider DataProvider
	}
)

var _ Intelligence = (*intelligence)(nil)

const analysisSystemPrompt = "You are an expert supplier risk manager. " +
	"Analyze the provided raw data (financials, news, sanctions) and output a risk assessment."

func (s *intelligence) analyze(ctx context.Context, financials *FinancialHealth, news []NewsItem, compliance *ComplianceCheck) riskAssessment {
	rawFinancials, _ := json.Marshal(financials)
	rawCompliance, _ := json.Marshal(compliance)
	rawNews, _ := json.Marshal(news)

	userContent := fmt.Sprintf(
		"--- FINANCIALS ---\n%s\n--- COMPLIANCE ---\n%s\n--- NEWS HEADLINES ---\n%s",
		rawFinancials, rawCompliance, rawNews,
	)

	var assessment riskAssessment
	if err := s.llm.GenerateObject(ctx, analysisSystemPrompt, []llm.Message{{Role: llm.RoleUser, Content: userContent}}, &assessment); err != nil {
		s.logger.Error("risk analysis failed", mylog.Err(err))
		return riskAssessment{
			RiskSummary:       "automated analysis failed",
			RecommendedAction: "MONITOR",
		}
	}
	return assessment
}

func (s *intelligence) UpdateRiskProfile(ctx context.Context, supplierID uint) (*RiskProfile, error) {
	_, tx := db.OpenSession(ctx, s.db)

	var sup entity.Supplier
	if r := tx.Find(&sup, supplierID); r.Error != nil {
		return nil, errors.Wrapf(r.Error, "failed to find supplier")
	} else if r.RowsAffected == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "supplier %d not found", supplierID)
	}

	lei := sup.LEI
	if lei == "" {
		lei = "000000000"
	}

	financials, err := s.provider.GetFinancialHealth(ctx, lei)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch financial health")
	}
	news, err := s.provider.GetMarketNews(ctx, sup.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch market news")
	}
	compliance, err := s.provider.CheckCompliance(ctx, sup.Name, "US")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check compliance")
	}

	assessment := s.analyze(ctx, financials, news, compliance)

	// Blend: financial stress weighted over sentiment; a sanctions match
	// pins the score at critical.
	finRisk := float64(100 - financials.StressScore)
	sentimentRisk := (1.0 - assessment.NewsSentimentScore) * 50
	combined := finRisk*0.6 + sentimentRisk*0.4
	if compliance.SanctionsFlag {
		combined = 100.0
	}
	combined = min(max(combined, 0.0), 100.0)

	adverse := gog.Select(news, func(n NewsItem) bool {
		return n.Sentiment == "negative"
	})

	profile := &RiskProfile{
		SupplierID:           sup.ID,
		FinancialStressScore: financials.StressScore,
		CreditRating:         financials.CreditRating,
		SanctionsFlag:        compliance.SanctionsFlag,
		SanctionsListMatch:   compliance.ListMatch,
		NewsSentimentScore:   assessment.NewsSentimentScore,
		AdverseMediaCount:    len(adverse),
		RiskSummary:          assessment.RiskSummary,
		RecommendedAction:    assessment.RecommendedAction,
		RiskScore:            combined,
	}

	if err := tx.Model(&sup).Update("risk_score", combined).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to update supplier risk score")
	}

	return profile, nil
}

func init() {
	din.RegisterT(func(c *din.Container) (DataProvider, error) {
		return NewMockProvider(), nil
	})

	din.RegisterT(func(c *din.Container) (Intelligence, error) {
		logger, err := din.Get[*slog.Logger](c, mylog.Key)
		if err != nil {
			return nil, err
		}

		return &intelligence{
			logger:   logger,
			db:       din.MustGet[*gorm.DB](c, db.Key),
			llm:      din.MustGetT[llm.Client](c),
			provider: din.MustGetT[DataProvider](c),
		}, nil
	})
}
