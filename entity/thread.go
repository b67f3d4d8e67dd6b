package entity

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ThreadStatusActive    = "active"
	ThreadStatusPaused    = "paused"
	ThreadStatusCompleted = "completed"
)

// Thread is one negotiation's persistent state. All mutation goes through
// the workflow manager; CurrentContext is non-nil iff Status is paused.
type Thread struct {
	gorm.Model

	Status     string `gorm:"default:active"`
	ContractID uint
	SupplierID uint

	CurrentContext datatypes.JSONType[*DecisionContext]

	// Feedback from a rejected resume, consumed by the next turn.
	PendingFeedback string

	Messages []Message `gorm:"foreignKey:ThreadID"`
}

// DecisionContext is a candidate action produced by the turn executor,
// held on the thread while it awaits a human decision.
type DecisionContext struct {
	Strategy  string  `json:"strategy"`
	Reasoning string  `json:"reasoning"`
	Redline   string  `json:"redline,omitempty"`
	Message   string  `json:"message"`
	Risk      float64 `json:"risk"`
	TurnID    string  `json:"turn_id"`
}

func (t *Thread) PendingContext() *DecisionContext {
	return t.CurrentContext.Data()
}
