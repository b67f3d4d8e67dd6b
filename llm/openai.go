package llm

import (
	"context"

	"github.com/nexuscore/negotiator/errors"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openaiClient struct {
	client *openai.Client
	model  string
}

var _ Client = (*openaiClient)(nil)

func newOpenAIClient(apiKey, model string) *openaiClient {
	return &openaiClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *openaiClient) complete(ctx context.Context, system string, messages []Message, jsonMode bool) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.F(openai.ChatModel(c.model)),
		Messages: openai.F(convertOpenAIMessages(system, messages)),
	}
	if jsonMode {
		params.ResponseFormat = openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
			openai.ChatCompletionNewParamsResponseFormat{
				Type: openai.F(openai.ChatCompletionNewParamsResponseFormatTypeJSONObject),
			},
		)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errors.Wrapf(err, "openai completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.Wrapf(errors.ErrInternal, "openai returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *openaiClient) GenerateText(ctx context.Context, system string, messages []Message) (string, error) {
	return c.complete(ctx, system, messages, false)
}

func (c *openaiClient) GenerateObject(ctx context.Context, system string, messages []Message, out any) error {
	schema, err := SchemaFor(out)
	if err != nil {
		return err
	}

	raw, err := c.complete(ctx, system+"\n\n"+schemaInstruction(schema), messages, true)
	if err != nil {
		return err
	}

	return decodeObject(raw, out)
}

func convertOpenAIMessages(system string, messages []Message) []openai.ChatCompletionMessageParamUnion {
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		converted = append(converted, openai.SystemMessage(system))
	}
	for _, msg := range messages {
		switch msg.Role {
		case RoleAssistant:
			converted = append(converted, openai.AssistantMessage(msg.Content))
		default:
			converted = append(converted, openai.UserMessage(msg.Content))
		}
	}
	return converted
}
