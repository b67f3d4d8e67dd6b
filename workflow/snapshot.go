package workflow

import (
	"time"

	"github.com/nexuscore/negotiator/entity"
	"github.com/samber/lo"
)

type (
	SnapshotMessage struct {
		Role      string    `json:"role"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"created_at"`
	}

	SnapshotContext struct {
		Strategy  string `json:"strategy"`
		Reasoning string `json:"reasoning"`
		Redline   string `json:"redline,omitempty"`
	}

	// ThreadSnapshot is the consistent read model served to polling
	// clients. CurrentContext is nil unless the thread is paused.
	ThreadSnapshot struct {
		ID             uint              `json:"id"`
		Status         string            `json:"status"`
		ContractTitle  string            `json:"contract_title"`
		RiskScore      float64           `json:"risk_score"`
		Messages       []SnapshotMessage `json:"messages"`
		CurrentContext *SnapshotContext  `json:"current_context"`
		LastUpdate     time.Time         `json:"last_update"`
	}
)

func newSnapshot(thread *entity.Thread, contractTitle string, riskScore float64) *ThreadSnapshot {
	snapshot := &ThreadSnapshot{
		ID:            thread.ID,
		Status:        thread.Status,
		ContractTitle: contractTitle,
		RiskScore:     riskScore,
		LastUpdate:    thread.UpdatedAt,
		Messages: lo.Map(thread.Messages, func(msg entity.Message, _ int) SnapshotMessage {
			return SnapshotMessage{
				Role:      msg.Role,
				Content:   msg.Content,
				CreatedAt: msg.CreatedAt,
			}
		}),
	}

	if pending := thread.PendingContext(); pending != nil {
		snapshot.CurrentContext = &SnapshotContext{
			Strategy:  pending.Strategy,
			Reasoning: pending.Reasoning,
			Redline:   pending.Redline,
		}
	}

	return snapshot
}
