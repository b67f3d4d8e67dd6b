package gate

import (
	"github.com/jcooky/go-din"
	"github.com/nexuscore/negotiator/config"
	"github.com/nexuscore/negotiator/entity"
)

type Outcome int

const (
	OutcomeCommitDirectly Outcome = iota
	OutcomeRequireApproval
)

type (
	// Gate decides whether a candidate action needs human sign-off
	// before it may be committed to a thread. Every turn passes through
	// it, including simulated counterparty turns.
	Gate interface {
		Evaluate(candidate *entity.DecisionContext) Outcome
	}

	gate struct {
		riskThreshold float64
	}
)

var _ Gate = (*gate)(nil)

func NewGate(riskThreshold float64) Gate {
	return &gate{riskThreshold: riskThreshold}
}

// Evaluate requires approval for any document modification and for any
// candidate whose self-reported risk exceeds the threshold. Purely
// conversational responses commit directly.
func (g *gate) Evaluate(candidate *entity.DecisionContext) Outcome {
	if candidate.Redline != "" {
		return OutcomeRequireApproval
	}
	if candidate.Risk > g.riskThreshold {
		return OutcomeRequireApproval
	}
	return OutcomeCommitDirectly
}

func init() {
	din.RegisterT(func(c *din.Container) (Gate, error) {
		conf, err := din.GetT[*config.CoreConfig](c)
		if err != nil {
			return nil, err
		}
		return NewGate(conf.ApprovalRiskThreshold), nil
	})
}
