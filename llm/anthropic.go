package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/nexuscore/negotiator/errors"
)

type anthropicClient struct {
	client anthropic.Client
	model  string
}

var _ Client = (*anthropicClient)(nil)

func newAnthropicClient(apiKey, model string) *anthropicClient {
	return &anthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *anthropicClient) complete(ctx context.Context, system string, messages []Message) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 2048,
		Messages:  convertAnthropicMessages(messages),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", errors.Wrapf(err, "anthropic completion failed")
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		sb.WriteString(block.Text)
	}
	return sb.String(), nil
}

func (c *anthropicClient) GenerateText(ctx context.Context, system string, messages []Message) (string, error) {
	return c.complete(ctx, system, messages)
}

func (c *anthropicClient) GenerateObject(ctx context.Context, system string, messages []Message, out any) error {
	schema, err := SchemaFor(out)
	if err != nil {
		return err
	}

	raw, err := c.complete(ctx, system+"\n\n"+schemaInstruction(schema), messages)
	if err != nil {
		return err
	}

	return decodeObject(raw, out)
}

func convertAnthropicMessages(messages []Message) []anthropic.MessageParam {
	converted := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		block := anthropic.NewTextBlock(msg.Content)
		switch msg.Role {
		case RoleAssistant:
			converted = append(converted, anthropic.NewAssistantMessage(block))
		default:
			converted = append(converted, anthropic.NewUserMessage(block))
		}
	}
	return converted
}
