package call

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/wolfman30/apptline/internal/appointments"
	"github.com/wolfman30/apptline/pkg/logging"
)

// The remote model is instructed to reply with exactly one of three literal
// tokens; anything else degrades to an unrecognized intent.
const resolverSystemPrompt = `You are a polite call center assistant confirming an appointment. Respond naturally and briefly. Ask to confirm, reschedule, or cancel. Based on user response: If they say confirm or yes, respond with exactly "CONFIRMED". If they say cancel or no, respond with exactly "CANCELLED". If they want to reschedule, extract new date/time and respond with exactly "RESCHEDULED to YYYY-MM-DD at HH:MM". Do not add extra text. End conversation after action.`

var rescheduledReplyPattern = regexp.MustCompile(`RESCHEDULED to (\d{4}-\d{2}-\d{2}) at (\d{2}:\d{2})`)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AIIntentResolver classifies a user turn through a remote chat-completion
// backend. It is an alternate backend for intent resolution; the shipped
// dialogue flow uses ParseIntent and only consults this when explicitly
// enabled.
type AIIntentResolver struct {
	client chatClient
	model  string
	logger *logging.Logger
}

// NewAIIntentResolver builds a resolver against an OpenAI-compatible API
// such as OpenRouter.
func NewAIIntentResolver(apiKey, baseURL, model string, logger *logging.Logger) *AIIntentResolver {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return NewAIIntentResolverWithClient(openai.NewClientWithConfig(cfg), model, logger)
}

// NewAIIntentResolverWithClient allows injecting a stub client for tests.
func NewAIIntentResolverWithClient(client chatClient, model string, logger *logging.Logger) *AIIntentResolver {
	if client == nil {
		panic("call: chat client required")
	}
	if model == "" {
		model = "openai/gpt-3.5-turbo"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AIIntentResolver{client: client, model: model, logger: logger}
}

// Resolve sends the fixed prompt plus the user's reply and maps the model's
// answer back onto an Intent. A malformed reply is not an error: it comes
// back as IntentUnrecognized so the dialogue can fall through to its generic
// acknowledgment.
func (r *AIIntentResolver) Resolve(ctx context.Context, appt appointments.Appointment, userText string) (Intent, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: resolverSystemPrompt},
			{Role: openai.ChatMessageRoleAssistant, Content: fmt.Sprintf(
				"Hello, calling to confirm your appointment for %s on %s at %s. Confirm, reschedule, or cancel?",
				appt.Title, appt.Date, appt.StartTime,
			)},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
		MaxTokens:   150,
		Temperature: 0.7,
	})
	if err != nil {
		return Intent{}, fmt.Errorf("call: completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Intent{Kind: IntentUnrecognized}, nil
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	switch {
	case strings.Contains(reply, "CONFIRMED"):
		return Intent{Kind: IntentConfirm}, nil
	case strings.Contains(reply, "CANCELLED"):
		return Intent{Kind: IntentCancel}, nil
	case strings.Contains(reply, "RESCHEDULED"):
		if m := rescheduledReplyPattern.FindStringSubmatch(reply); m != nil {
			return Intent{Kind: IntentReschedule, Date: m[1], Time: m[2]}, nil
		}
	}

	r.logger.Warn("unexpected completion reply", "reply", reply)
	return Intent{Kind: IntentUnrecognized}, nil
}
