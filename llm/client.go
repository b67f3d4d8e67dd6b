package llm

import (
	"context"

	"github.com/jcooky/go-din"
	"github.com/nexuscore/negotiator/config"
	"github.com/nexuscore/negotiator/errors"
	"github.com/nexuscore/negotiator/internal/mylog"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type (
	Message struct {
		Role    string
		Content string
	}

	// Client is the reasoning capability boundary. GenerateObject
	// constrains the reply to the JSON schema derived from out's type
	// and unmarshals into out.
	Client interface {
		GenerateText(ctx context.Context, system string, messages []Message) (string, error)
		GenerateObject(ctx context.Context, system string, messages []Message, out any) error
	}
)

func NewClient(conf *config.LLMConfig, logger *mylog.Logger) (Client, error) {
	switch conf.Provider {
	case "openai":
		if conf.OpenAIAPIKey == "" {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "openai provider requires OPENAI_API_KEY")
		}
		return newOpenAIClient(conf.OpenAIAPIKey, conf.OpenAIModel), nil
	case "anthropic":
		if conf.AnthropicAPIKey == "" {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "anthropic provider requires ANTHROPIC_API_KEY")
		}
		return newAnthropicClient(conf.AnthropicAPIKey, conf.AnthropicModel), nil
	case "", "mock":
		logger.Warn("using mock llm client, configure LLM_PROVIDER for dynamic content")
		return NewMockClient(), nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown llm provider %q", conf.Provider)
	}
}

func init() {
	din.RegisterT(func(c *din.Container) (Client, error) {
		conf, err := din.GetT[*config.LLMConfig](c)
		if err != nil {
			return nil, err
		}
		logger, err := din.Get[*mylog.Logger](c, mylog.Key)
		if err != nil {
			return nil, err
		}

		return NewClient(conf, logger)
	})
}
