package config

import (
	"github.com/jcooky/go-din"
)

type LLMConfig struct {
	// mock, openai or anthropic
	Provider string `env:"LLM_PROVIDER"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL"`
}

func init() {
	din.RegisterT(func(c *din.Container) (*LLMConfig, error) {
		conf := &LLMConfig{
			Provider:       "mock",
			OpenAIModel:    "gpt-4o-mini",
			AnthropicModel: "claude-3-7-sonnet-latest",
		}
		return conf, resolveConfig(conf, c.Env == din.EnvTest)
	})
}
