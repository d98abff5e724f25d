package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/dairinin/pkg/llms"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/dairinin/pkg/llms", "anthropic")

var (
	ErrEmptyResponse          = errors.New("anthropic: no response")
	ErrMissingToken           = errors.New("anthropic: missing API key, set it in the ANTHROPIC_API_KEY environment variable")
	ErrUnsupportedMessageType = errors.New("anthropic: unsupported message type")
	ErrEmptyMessage           = errors.New("anthropic: empty message content")
)

const (
	DefaultModel     = "claude-3-7-sonnet-20250219"
	DefaultMaxTokens = 1000
	DefaultBaseURL   = "https://api.anthropic.com"
)

type LLM struct {
	Client  *anthropic.Client
	Options *Options
}

var _ llms.Model = (*LLM)(nil)

// New creates a new Anthropic LLM client using the official Anthropic SDK.
//
// If no token is provided via options, it will attempt to read the API key
// from the ANTHROPIC_API_KEY environment variable.
// The client performs a single attempt per request, retries are disabled.
//
// Example usage:
//
//	llm, err := anthropic.New(
//	    anthropic.WithToken("your-api-key"),
//	    anthropic.WithModel("claude-3-7-sonnet-20250219"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := llm.GenerateContent(ctx, messages)
func New(opts ...Option) (*LLM, error) {
	options := &Options{
		Token:      os.Getenv(TokenEnvVarName),
		Model:      DefaultModel,
		MaxTokens:  DefaultMaxTokens,
		BaseURL:    DefaultBaseURL,
		HttpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(options)
	}

	if len(options.Token) == 0 {
		return nil, ErrMissingToken
	}
	if options.Model == "" {
		return nil, errors.New("anthropic: model is required")
	}

	c, err := newClient(options)
	if err != nil {
		return nil, errors.Wrap(err, "anthropic: failed to create client")
	}
	return &LLM{
		Client:  c,
		Options: options,
	}, nil
}

func newClient(options *Options) (*anthropic.Client, error) {
	sdkOpts := []option.RequestOption{
		option.WithAPIKey(options.Token),
		option.WithMaxRetries(0),
	}

	// no deadline unless configured, a request waits for the model
	if options.RequestTimeout > 0 {
		sdkOpts = append(sdkOpts, option.WithRequestTimeout(options.RequestTimeout))
	}

	if options.BaseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(options.BaseURL))
	}

	if options.HttpClient != nil {
		sdkOpts = append(sdkOpts, option.WithHTTPClient(options.HttpClient))
	}

	client := anthropic.NewClient(sdkOpts...)

	return &client, nil
}

// GetName implements the Model interface.
func (o *LLM) GetName() string {
	return o.Options.Model
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderAnthropic
}

// GenerateContent implements the Model interface.
//
// Example usage:
//
//	resp, err := llm.GenerateContent(ctx,
//	    []llms.Message{llms.UserMessage("Hello, how are you?")},
//	    llms.WithSystemPrompt("You are a helpful assistant"),
//	    llms.WithMaxTokens(1000),
//	)
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{
		Model:     o.Options.Model,
		MaxTokens: o.Options.MaxTokens,
	}
	for _, opt := range options {
		opt(&opts)
	}
	return GenerateMessagesContent(ctx, o, messages, &opts)
}

// GenerateMessagesContent builds the request parameters, sends a single
// Messages API request and converts the reply into content blocks.
func GenerateMessagesContent(ctx context.Context, o *LLM, messages []llms.Message, opts *llms.CallOptions) (*llms.ContentResponse, error) {
	sdkMessages, err := ProcessMessages(messages)
	if err != nil {
		return nil, errors.Wrap(err, "anthropic: failed to process messages")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(values.StringsCoalesce(opts.Model, o.Options.Model)),
		Messages:  sdkMessages,
		MaxTokens: values.NumbersCoalesce(int64(opts.MaxTokens), DefaultMaxTokens),
	}

	if opts.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: opts.SystemPrompt,
			},
		}
	}

	if userID, ok := opts.Metadata[llms.MetadataUserID].(string); ok && userID != "" {
		params.Metadata = anthropic.MetadataParam{
			UserID: anthropic.String(userID),
		}
	}

	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}

	tools := ToTools(opts.Tools)
	if opts.WebSearchMaxUses > 0 {
		tools = append(tools, WebSearchTool(opts.WebSearchMaxUses))
	}
	if len(tools) > 0 {
		params.Tools = tools
	}

	result, err := o.Client.Messages.New(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "anthropic: failed to create message")
	}
	if result == nil {
		return nil, ErrEmptyResponse
	}

	return ToContentResponse(result)
}

// ToContentResponse converts the SDK message into the provider neutral
// response, keeping the block order.
func ToContentResponse(result *anthropic.Message) (*llms.ContentResponse, error) {
	resp := &llms.ContentResponse{
		ID:         result.ID,
		Model:      string(result.Model),
		StopReason: string(result.StopReason),
		Usage: llms.Usage{
			InputTokens:  result.Usage.InputTokens,
			OutputTokens: result.Usage.OutputTokens,
		},
		Blocks: make([]llms.ContentBlock, 0, len(result.Content)),
	}

	for _, contentBlock := range result.Content {
		switch content := contentBlock.AsAny().(type) {
		case anthropic.ThinkingBlock:
			resp.Blocks = append(resp.Blocks, llms.ThinkingBlock{
				Thinking:  content.Thinking,
				Signature: content.Signature,
			})
		case anthropic.TextBlock:
			resp.Blocks = append(resp.Blocks, llms.TextBlock{
				Text: content.Text,
			})
		case anthropic.ToolUseBlock:
			input, err := json.Marshal(content.Input)
			if err != nil {
				return nil, errors.Wrap(err, "anthropic: failed to marshal tool use arguments")
			}
			resp.Blocks = append(resp.Blocks, llms.ToolUseBlock{
				ID:    content.ID,
				Name:  content.Name,
				Input: input,
			})
		default:
			logger.KV(xlog.DEBUG,
				"status", "unmodeled_block",
				"type", contentBlock.Type,
			)
			resp.Blocks = append(resp.Blocks, llms.OtherBlock{
				Type: contentBlock.Type,
				Raw:  json.RawMessage(contentBlock.RawJSON()),
			})
		}
	}

	return resp, nil
}

// ToTools converts LLM tool definitions to Anthropic SDK tool parameters.
//
// Properties of the JSON schema are copied from the ordered map into a
// regular map expected by the SDK.
// Returns nil if no tools are provided, which is handled gracefully by the API.
func ToTools(tools []llms.Tool) []anthropic.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}

	sdkTools := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		if tool.Function == nil {
			continue
		}

		inputSchema := anthropic.ToolInputSchemaParam{
			Type: "object",
		}

		if params := tool.Function.Parameters; params != nil {
			if params.Properties != nil {
				properties := make(map[string]any)
				for pair := params.Properties.Oldest(); pair != nil; pair = pair.Next() {
					properties[pair.Key] = pair.Value
				}
				inputSchema.Properties = properties
			}
			if len(params.Required) > 0 {
				inputSchema.Required = params.Required
			}
		}

		sdkTools = append(sdkTools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Function.Name,
				Description: anthropic.String(tool.Function.Description),
				InputSchema: inputSchema,
			},
		})
	}
	if len(sdkTools) == 0 {
		return nil
	}
	return sdkTools
}

// WebSearchTool returns the Anthropic hosted web search tool.
func WebSearchTool(maxUses int) anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{
		OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{
			MaxUses: anthropic.Int(int64(maxUses)),
		},
	}
}

// ProcessMessages converts transcript messages to Anthropic SDK message parameters.
func ProcessMessages(messages []llms.Message) ([]anthropic.MessageParam, error) {
	chatMessages := make([]anthropic.MessageParam, 0, len(messages))
	for i, msg := range messages {
		if strings.TrimSpace(msg.Content) == "" {
			return nil, errors.WithMessagef(ErrEmptyMessage, "anthropic: message %d", i)
		}
		switch msg.Role {
		case llms.RoleUser:
			chatMessages = append(chatMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case llms.RoleAssistant:
			chatMessages = append(chatMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			return nil, errors.WithMessagef(ErrUnsupportedMessageType, "anthropic: %v", msg.Role)
		}
	}
	return chatMessages, nil
}
