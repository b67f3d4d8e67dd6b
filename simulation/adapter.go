package simulation

import (
	"context"
	"log/slog"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jcooky/go-din"
	"github.com/nexuscore/negotiator/config"
	"github.com/nexuscore/negotiator/entity"
	"github.com/nexuscore/negotiator/errors"
	"github.com/nexuscore/negotiator/internal/mylog"
	"github.com/nexuscore/negotiator/llm"
)

type (
	// Adapter plays the counterparty side of a thread using an authored
	// persona. It is stateless; the conversation is replayed per call.
	Adapter interface {
		SimulateCounterparty(ctx context.Context, personaID string, history []entity.Message, latestProposal string) (string, error)
	}

	adapter struct {
		logger      *mylog.Logger
		llm         llm.Client
		personasDir string
	}
)

var _ Adapter = (*adapter)(nil)

var personaTmpl = template.Must(template.New("persona").Funcs(sprig.FuncMap()).Parse(`You are {{ .Name }}, a supplier representing a company.
Your negotiation style is: {{ .Style }}.
Your tone is: {{ .NegotiationTone }}.

Your Goals:
{{- range .Goals }}
- {{ . | trim }}
{{- end }}

Your Constraints (Non-negotiable):
{{- range .Constraints }}
- {{ . | trim }}
{{- end }}

Instructions:
1. Read the latest proposal from the buyer.
2. If it meets your goals, accept it.
3. If it violates constraints, reject it firmly.
4. Otherwise, counter-propose to move closer to your goals.
5. Keep responses concise (under 100 words) and purely conversational.`))

func (a *adapter) SimulateCounterparty(ctx context.Context, personaID string, history []entity.Message, latestProposal string) (string, error) {
	persona, err := LoadPersona(a.personasDir, personaID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := personaTmpl.Execute(&sb, persona); err != nil {
		return "", errors.Wrapf(err, "failed to render persona prompt")
	}

	messages := make([]llm.Message, 0, len(history)+1)
	for _, msg := range history {
		role := llm.RoleUser
		if msg.Role == entity.RoleSupplier {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: msg.Content})
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: "Latest Proposal/Message: " + latestProposal,
	})

	reply, err := a.llm.GenerateText(ctx, sb.String(), messages)
	if err != nil {
		return "", errors.Wrapf(err, "failed to simulate persona %q", personaID)
	}

	a.logger.Debug("simulated counterparty turn", "persona", personaID)

	return reply, nil
}

func init() {
	din.RegisterT(func(c *din.Container) (Adapter, error) {
		logger, err := din.Get[*slog.Logger](c, mylog.Key)
		if err != nil {
			return nil, err
		}
		conf, err := din.GetT[*config.CoreConfig](c)
		if err != nil {
			return nil, err
		}

		return &adapter{
			logger:      logger,
			llm:         din.MustGetT[llm.Client](c),
			personasDir: conf.PersonasDir,
		}, nil
	})
}
