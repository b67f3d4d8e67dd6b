package gate_test

import (
	"testing"

	"github.com/nexuscore/negotiator/entity"
	"github.com/nexuscore/negotiator/gate"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	g := gate.NewGate(70)

	tests := []struct {
		name      string
		candidate entity.DecisionContext
		want      gate.Outcome
	}{
		{
			name:      "conversational low risk commits directly",
			candidate: entity.DecisionContext{Message: "Noted, we will review.", Risk: 10},
			want:      gate.OutcomeCommitDirectly,
		},
		{
			name:      "redline always requires approval",
			candidate: entity.DecisionContext{Message: "Counter.", Redline: "Liability capped at 12 months fees.", Risk: 0},
			want:      gate.OutcomeRequireApproval,
		},
		{
			name:      "risk above threshold requires approval",
			candidate: entity.DecisionContext{Message: "Accept.", Risk: 71},
			want:      gate.OutcomeRequireApproval,
		},
		{
			name:      "risk at threshold commits directly",
			candidate: entity.DecisionContext{Message: "Accept.", Risk: 70},
			want:      gate.OutcomeCommitDirectly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, g.Evaluate(&tt.candidate))
		})
	}
}
