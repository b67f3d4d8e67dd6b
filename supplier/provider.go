package supplier

import (
	"context"
	"strings"
)

type (
	FinancialHealth struct {
		// 1-100, 100 is safe.
		StressScore  int    `json:"financial_stress_score"`
		CreditRating string `json:"credit_rating"`
		RiskClass    string `json:"risk_class"`
	}

	NewsItem struct {
		Title     string `json:"title"`
		Source    string `json:"source"`
		Sentiment string `json:"sentiment"`
	}

	ComplianceCheck struct {
		SanctionsFlag bool   `json:"sanctions_flag"`
		ListMatch     string `json:"list_match,omitempty"`
	}

	// DataProvider is the external intelligence boundary (financials,
	// news, sanctions lists).
	DataProvider interface {
		GetFinancialHealth(ctx context.Context, lei string) (*FinancialHealth, error)
		GetMarketNews(ctx context.Context, companyName string) ([]NewsItem, error)
		CheckCompliance(ctx context.Context, companyName, countryCode string) (*ComplianceCheck, error)
	}

	// mockProvider generates deterministic scenarios from triggers in
	// the company name or identifier, for development and tests.
	mockProvider struct{}
)

var _ DataProvider = (*mockProvider)(nil)

func NewMockProvider() DataProvider {
	return &mockProvider{}
}

func (p *mockProvider) GetFinancialHealth(_ context.Context, lei string) (*FinancialHealth, error) {
	if strings.HasPrefix(lei, "999") {
		return &FinancialHealth{
			StressScore:  25,
			CreditRating: "CC",
			RiskClass:    "High",
		}, nil
	}
	return &FinancialHealth{
		StressScore:  85,
		CreditRating: "5A1",
		RiskClass:    "Low",
	}, nil
}

func (p *mockProvider) GetMarketNews(_ context.Context, companyName string) ([]NewsItem, error) {
	switch {
	case strings.Contains(companyName, "Risky") || strings.Contains(companyName, "Volatile"):
		return []NewsItem{
			{Title: companyName + " faces class action lawsuit over fraud", Source: "MockNews", Sentiment: "negative"},
			{Title: "CEO of " + companyName + " steps down amid scandal", Source: "MockNews", Sentiment: "negative"},
		}, nil
	case strings.Contains(companyName, "Green"):
		return []NewsItem{
			{Title: companyName + " wins sustainability award", Source: "MockNews", Sentiment: "positive"},
			{Title: companyName + " expands into new markets", Source: "MockNews", Sentiment: "positive"},
		}, nil
	default:
		return nil, nil
	}
}

func (p *mockProvider) CheckCompliance(_ context.Context, companyName, countryCode string) (*ComplianceCheck, error) {
	switch countryCode {
	case "KP", "RU", "IR":
		return &ComplianceCheck{SanctionsFlag: true, ListMatch: "OFAC SDN List"}, nil
	}
	if strings.Contains(companyName, "Sanctioned") {
		return &ComplianceCheck{SanctionsFlag: true, ListMatch: "OFAC SDN List"}, nil
	}
	return &ComplianceCheck{}, nil
}
