package llm

import (
	"context"
	"encoding/json"
)

// MockClient returns canned content. The object payload is a superset of
// the structured outputs used across the pipeline so any out type picks up
// safe defaults, mirroring the prototype's mock provider.
type MockClient struct {
	TextReply     string
	ObjectPayload string

	// Calls records the user-visible content of each invocation, oldest
	// first, for test assertions.
	Calls []string

	Err error
}

var _ Client = (*MockClient)(nil)

func NewMockClient() *MockClient {
	return &MockClient{
		TextReply: "This is a mock response from the negotiation agent. Configure a real LLM provider for dynamic content.",
		ObjectPayload: `{
			"decision": "COUNTER",
			"reasoning": "Mock analysis: the clause was flagged for review requiring a counter-proposal.",
			"status": "NEEDS_REVIEW",
			"score": 50,
			"flagged_issues": [],
			"news_sentiment_score": 0,
			"risk_summary": "Mock risk summary.",
			"recommended_action": "MONITOR"
		}`,
	}
}

func (m *MockClient) record(system string, messages []Message) {
	call := system
	for _, msg := range messages {
		call += "\n" + msg.Content
	}
	m.Calls = append(m.Calls, call)
}

func (m *MockClient) GenerateText(_ context.Context, system string, messages []Message) (string, error) {
	m.record(system, messages)
	if m.Err != nil {
		return "", m.Err
	}
	return m.TextReply, nil
}

func (m *MockClient) GenerateObject(_ context.Context, system string, messages []Message, out any) error {
	m.record(system, messages)
	if m.Err != nil {
		return m.Err
	}
	return json.Unmarshal([]byte(m.ObjectPayload), out)
}
