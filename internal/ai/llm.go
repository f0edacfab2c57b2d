package ai

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"ashare-trader/internal/errors"
	"ashare-trader/internal/models"
)

const systemPrompt = "你是一位专业的中国A股交易员。请仅输出JSON格式的交易决策。"

// Completer is the narrow LLM surface the source needs; satisfied by
// the real client and by test fakes.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAIClient implements Completer over any OpenAI-compatible endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client. baseURL may point at any
// OpenAI-compatible provider; empty uses the OpenAI default.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete sends a system+user exchange and returns the reply text.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", errors.NewAgentError("openai", "completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.NewAgentError("openai", "completion", errors.ErrDecisionUnparseable)
	}
	return resp.Choices[0].Message.Content, nil
}

// Recorder persists prompt/response exchanges; satisfied by the ledger.
type Recorder interface {
	RecordConversation(ctx context.Context, modelID int64, prompt, response string) error
}

// LLMSource asks an OpenAI-compatible endpoint for per-symbol
// decisions. Unparseable replies degrade to an empty decision set
// (all hold) rather than failing the cycle.
type LLMSource struct {
	completer Completer
	recorder  Recorder
	modelID   int64
	lotSize   int
	logger    zerolog.Logger
}

// NewLLMSource creates an LLM decision source. recorder may be nil.
func NewLLMSource(completer Completer, recorder Recorder, modelID int64, lotSize int, logger zerolog.Logger) *LLMSource {
	if lotSize <= 0 {
		lotSize = 100
	}
	return &LLMSource{
		completer: completer,
		recorder:  recorder,
		modelID:   modelID,
		lotSize:   lotSize,
		logger:    logger,
	}
}

func (s *LLMSource) Name() string { return "llm" }

// Decide builds the prompt, calls the endpoint and normalizes the
// reply. Transport errors propagate; parse failures do not.
func (s *LLMSource) Decide(ctx context.Context, view View) (map[string]models.Decision, error) {
	prompt := BuildPrompt(view)

	reply, err := s.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		if err := s.recorder.RecordConversation(ctx, s.modelID, prompt, reply); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to record conversation")
		}
	}

	decisions, err := s.parse(reply, view)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Decision reply unparseable, holding everything")
		return map[string]models.Decision{}, nil
	}
	return decisions, nil
}

func (s *LLMSource) parse(reply string, view View) (map[string]models.Decision, error) {
	text, ok := extractJSON(reply)
	if !ok {
		return nil, errors.ErrDecisionUnparseable
	}

	var raw map[string]models.Decision
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, errors.Wrap(errors.ErrDecisionUnparseable, err.Error())
	}

	decisions := make(map[string]models.Decision, len(raw))
	for symbol, d := range raw {
		if !inUniverse(symbol, view.Symbols) {
			continue
		}
		d.Symbol = symbol
		decisions[symbol] = s.normalize(d, view)
	}
	return decisions, nil
}

// normalize clamps one raw decision to tradeable shape: lot-rounded
// buy quantities, holdings-bounded sells, confidence in [0,1].
func (s *LLMSource) normalize(d models.Decision, view View) models.Decision {
	if d.Confidence < 0 {
		d.Confidence = 0
	}
	if d.Confidence > 1 {
		d.Confidence = 1
	}

	switch d.Action {
	case models.DecisionActionBuy:
		d.Signal = models.SignalLLMBuy
		d.Quantity = d.Quantity / s.lotSize * s.lotSize
		if d.Quantity < s.lotSize {
			return holdDecision(d.Symbol, "buy below one lot")
		}
	case models.DecisionActionSell:
		d.Signal = models.SignalLLMSell
		pos := view.Portfolio.Position(d.Symbol)
		if pos == nil {
			return holdDecision(d.Symbol, "sell with no position")
		}
		if d.Quantity <= 0 || d.Quantity > pos.Quantity {
			d.Quantity = pos.Quantity
		}
	case models.DecisionActionHold:
		d.Signal = models.SignalHold
		d.Quantity = 0
	default:
		return holdDecision(d.Symbol, "unknown signal "+d.Action)
	}
	return d
}

func inUniverse(symbol string, universe []string) bool {
	for _, s := range universe {
		if s == symbol {
			return true
		}
	}
	return false
}
