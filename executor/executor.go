package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jcooky/go-din"
	"github.com/nexuscore/negotiator/entity"
	"github.com/nexuscore/negotiator/errors"
	"github.com/nexuscore/negotiator/internal/mylog"
	"github.com/nexuscore/negotiator/llm"
	"github.com/nexuscore/negotiator/policy"
	"github.com/nexuscore/negotiator/supplier"
	"github.com/samber/lo"
)

const (
	DecisionAccept  = "ACCEPT"
	DecisionReject  = "REJECT"
	DecisionCounter = "COUNTER"
)

type (
	// Executor produces one candidate action for a thread. Each
	// invocation gets a fresh turn id; deduplication on retry belongs to
	// the orchestration layer.
	Executor interface {
		Execute(ctx context.Context, thread *entity.Thread, history []entity.Message, input string, priorFeedback string) (*entity.DecisionContext, error)
	}

	executor struct {
		logger       *mylog.Logger
		llm          llm.Client
		policy       policy.Evaluator
		intelligence supplier.Intelligence
	}

	strategyReply struct {
		Decision  string  `json:"decision" jsonschema:"enum=ACCEPT,enum=REJECT,enum=COUNTER"`
		Reasoning string  `json:"reasoning"`
		Risk      float64 `json:"risk" jsonschema:"minimum=0,maximum=100"`
	}
)

var _ Executor = (*executor)(nil)

const strategySystemPrompt = "You are the chief negotiator. Decide whether to ACCEPT, REJECT, or COUNTER " +
	"a contract clause based on policy compliance and supplier risk.\n" +
	"RULES:\n" +
	"1. If the policy status is NON_COMPLIANT, you MUST REJECT or COUNTER.\n" +
	"2. If supplier risk is high (score > 70), be more protective.\n" +
	"3. Report your own risk estimate for the proposed action on a 0-100 scale."

const draftSystemPrompt = "You are an expert legal drafter. Rewrite the clause to address the issues."

// historyWindow bounds how much conversation is replayed into the prompt.
const historyWindow = 20

func (e *executor) Execute(ctx context.Context, thread *entity.Thread, history []entity.Message, input string, priorFeedback string) (*entity.DecisionContext, error) {
	turnID := uuid.NewString()
	logger := e.logger.With("thread", thread.ID, "turn", turnID)

	policyResult, err := e.policy.Evaluate(ctx, input)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExecutorUnavailable, "policy analysis failed: %v", err)
	}

	profile, err := e.intelligence.UpdateRiskProfile(ctx, thread.SupplierID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			// Threads may predate supplier onboarding; risk then rests
			// on the model's own estimate.
			profile = &supplier.RiskProfile{RiskSummary: "no supplier intelligence available"}
		} else {
			return nil, errors.Wrapf(errors.ErrExecutorUnavailable, "risk analysis failed: %v", err)
		}
	}

	rawPolicy, _ := json.Marshal(policyResult)
	rawProfile, _ := json.Marshal(profile)

	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}

	userContent, err := renderTemplate(strategyTmpl, strategyPromptValues{
		Clause:       input,
		PolicyReport: string(rawPolicy),
		RiskReport:   string(rawProfile),
		Feedback:     priorFeedback,
		History:      recent,
	})
	if err != nil {
		return nil, err
	}

	var reply strategyReply
	if err := e.llm.GenerateObject(ctx, strategySystemPrompt, []llm.Message{{Role: llm.RoleUser, Content: userContent}}, &reply); err != nil {
		return nil, errors.Wrapf(errors.ErrExecutorUnavailable, "strategy synthesis failed: %v", err)
	}

	if !lo.Contains([]string{DecisionAccept, DecisionReject, DecisionCounter}, reply.Decision) {
		return nil, errors.Wrapf(errors.ErrExecutorRejected, "capability declined to decide (decision=%q)", reply.Decision)
	}

	logger.Debug("strategy decided", "decision", reply.Decision, "risk", reply.Risk)

	candidate := &entity.DecisionContext{
		Strategy:  reply.Decision,
		Reasoning: reply.Reasoning,
		Risk:      max(reply.Risk, profile.RiskScore),
		TurnID:    turnID,
	}

	if reply.Decision == DecisionAccept {
		candidate.Message = fmt.Sprintf("Result: %s\nReasoning: %s", reply.Decision, reply.Reasoning)
		return candidate, nil
	}

	draftContent, err := renderTemplate(draftTmpl, draftPromptValues{
		Clause:    input,
		Reasoning: reply.Reasoning,
	})
	if err != nil {
		return nil, err
	}

	redline, err := e.llm.GenerateText(ctx, draftSystemPrompt, []llm.Message{{Role: llm.RoleUser, Content: draftContent}})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExecutorUnavailable, "drafting failed: %v", err)
	}

	candidate.Redline = redline
	candidate.Message = fmt.Sprintf("Proposed Redline (%s):\n%s\n\nReasoning: %s", reply.Decision, redline, reply.Reasoning)

	return candidate, nil
}

func init() {
	din.RegisterT(func(c *din.Container) (Executor, error) {
		logger, err := din.Get[*slog.Logger](c, mylog.Key)
		if err != nil {
			return nil, err
		}

		return &executor{
			logger:       logger,
			llm:          din.MustGetT[llm.Client](c),
			policy:       din.MustGetT[policy.Evaluator](c),
			intelligence: din.MustGetT[supplier.Intelligence](c),
		}, nil
	})
}
