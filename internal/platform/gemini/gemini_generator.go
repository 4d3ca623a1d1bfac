package gemini

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/phrazzld/flashcard-api/internal/config"
	"github.com/phrazzld/flashcard-api/internal/generation"
	"google.golang.org/genai"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

const (
	defaultMaxRetries     = 3
	defaultRetryDelay     = 2 * time.Second
	defaultRequestTimeout = 30 * time.Second

	systemInstruction = "You write accurate, concise study material and always answer with valid JSON."
)

// contentGenerator is the subset of *genai.Models used by GeminiGenerator.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements generation.Generator with the Gemini API.
type GeminiGenerator struct {
	logger  *slog.Logger
	models  contentGenerator
	model   string
	prompts *template.Template

	maxRetries     int
	retryDelay     time.Duration
	requestTimeout time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a generator backed by a Gemini API client.
func NewGeminiGenerator(ctx context.Context, log *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newGeminiGenerator(client.Models, log, cfg)
}

func newGeminiGenerator(models contentGenerator, log *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	prompts, err := loadPrompts(cfg.PromptTemplatePath)
	if err != nil {
		return nil, err
	}

	g := &GeminiGenerator{
		logger:         log.With(slog.String("component", "gemini_generator")),
		models:         models,
		model:          cfg.ModelName,
		prompts:        prompts,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     time.Duration(cfg.RetryDelaySeconds) * time.Second,
		requestTimeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:          sleepContext,
	}
	if g.maxRetries < 0 {
		g.maxRetries = defaultMaxRetries
	}
	if g.retryDelay <= 0 {
		g.retryDelay = defaultRetryDelay
	}
	if g.requestTimeout <= 0 {
		g.requestTimeout = defaultRequestTimeout
	}
	return g, nil
}

// loadPrompts parses the embedded templates. A non-empty overridePath
// replaces generate_cards.tmpl.
func loadPrompts(overridePath string) (*template.Template, error) {
	tmpl, err := template.ParseFS(promptFS, "prompts/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse embedded prompts: %v", generation.ErrInvalidConfig, err)
	}
	if overridePath == "" {
		return tmpl, nil
	}

	content, err := os.ReadFile(overridePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
			generation.ErrInvalidConfig, overridePath, err)
	}
	if _, err := tmpl.New("generate_cards.tmpl").Parse(string(content)); err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", generation.ErrInvalidConfig, err)
	}
	return tmpl, nil
}

// GenerateCards asks the model for count cards about text.
func (g *GeminiGenerator) GenerateCards(ctx context.Context, text string, count int) ([]generation.GeneratedCard, error) {
	if strings.TrimSpace(text) == "" {
		return nil, generation.ErrEmptyText
	}
	count = generation.ClampCount(count)

	prompt, err := g.render("generate_cards.tmpl", cardsPromptData{Text: text, Count: count})
	if err != nil {
		return nil, err
	}

	var resp cardsResponse
	if err := g.call(ctx, prompt, &resp); err != nil {
		return nil, err
	}

	cards := make([]generation.GeneratedCard, 0, len(resp.Cards))
	for i, c := range resp.Cards {
		card := generation.GeneratedCard{
			Front: strings.TrimSpace(c.Front),
			Back:  strings.TrimSpace(c.Back),
			Hint:  strings.TrimSpace(c.Hint),
			Tags:  normalizeTags(c.Tags, 0),
		}
		if !card.Valid() {
			g.logger.WarnContext(ctx, "dropping incomplete card from response", slog.Int("index", i))
			continue
		}
		cards = append(cards, card)
		if len(cards) == count {
			break
		}
	}
	if len(cards) == 0 {
		return nil, invalidResponse("no usable cards in response")
	}

	g.logger.InfoContext(ctx, "generated cards",
		slog.Int("requested", count),
		slog.Int("returned", len(cards)))
	return cards, nil
}

// ImproveCard asks the model to rewrite a card.
func (g *GeminiGenerator) ImproveCard(ctx context.Context, front, back, instruction string) (*generation.GeneratedCard, error) {
	if strings.TrimSpace(front) == "" && strings.TrimSpace(back) == "" {
		return nil, generation.ErrEmptyText
	}

	prompt, err := g.render("improve_card.tmpl", improvePromptData{
		Front:       front,
		Back:        back,
		Instruction: strings.TrimSpace(instruction),
	})
	if err != nil {
		return nil, err
	}

	var resp improveResponse
	if err := g.call(ctx, prompt, &resp); err != nil {
		return nil, err
	}

	card := &generation.GeneratedCard{
		Front: strings.TrimSpace(resp.Front),
		Back:  strings.TrimSpace(resp.Back),
	}
	if !card.Valid() {
		return nil, invalidResponse("improved card is missing a side")
	}
	return card, nil
}

// SuggestTags asks the model for up to MaxSuggestedTags tags.
func (g *GeminiGenerator) SuggestTags(ctx context.Context, front, back string) ([]string, error) {
	if strings.TrimSpace(front) == "" && strings.TrimSpace(back) == "" {
		return nil, generation.ErrEmptyText
	}

	prompt, err := g.render("suggest_tags.tmpl", tagsPromptData{Front: front, Back: back, MaxTags: MaxSuggestedTags})
	if err != nil {
		return nil, err
	}

	var resp tagsResponse
	if err := g.call(ctx, prompt, &resp); err != nil {
		return nil, err
	}

	tags := normalizeTags(resp.Tags, MaxSuggestedTags)
	if len(tags) == 0 {
		return nil, invalidResponse("no tags in response")
	}
	return tags, nil
}

func (g *GeminiGenerator) render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := g.prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("%w: failed to execute prompt template %s: %v", generation.ErrGenerationFailed, name, err)
	}
	return buf.String(), nil
}

// call sends prompt and decodes the JSON reply into out, retrying
// transient failures with exponential backoff.
func (g *GeminiGenerator) call(ctx context.Context, prompt string, out interface{}) error {
	temperature := float32(0.4)
	reqConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}

		text, err := g.attempt(ctx, prompt, reqConfig)
		if err == nil {
			if err := json.Unmarshal([]byte(text), out); err != nil {
				return invalidResponse("failed to parse JSON response: %v", err)
			}
			return nil
		}

		lastErr = err
		log := g.logger.With(slog.Int("attempt", attempt+1), slog.Int("max_attempts", g.maxRetries+1))
		if isPermanent(err) {
			log.WarnContext(ctx, "permanent model error, not retrying", slog.String("error", err.Error()))
			return err
		}
		if attempt == g.maxRetries {
			break
		}

		delay := g.backoff(attempt)
		log.InfoContext(ctx, "retrying model call",
			slog.String("error", err.Error()),
			slog.Duration("delay", delay))
		if err := g.sleep(ctx, delay); err != nil {
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}
	}

	return fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
		generation.ErrTransientFailure, g.maxRetries, lastErr)
}

func (g *GeminiGenerator) attempt(ctx context.Context, prompt string, reqConfig *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.requestTimeout)
	defer cancel()

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), reqConfig)
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

// responseText extracts the first candidate's text or classifies why
// there is none.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", invalidResponse("nil response")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: %v", generation.ErrInvalidResponse, errNoCandidates)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: response blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", invalidResponse("empty content in response")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	text := stripCodeFence(sb.String())
	if text == "" {
		return "", invalidResponse("empty text in response")
	}
	return text, nil
}

// backoff returns retryDelay * 2^attempt scaled by a jitter factor in [0.5, 1).
func (g *GeminiGenerator) backoff(attempt int) time.Duration {
	g.rngMu.Lock()
	jitter := 0.5 + g.rng.Float64()*0.5
	g.rngMu.Unlock()
	return time.Duration(float64(g.retryDelay) * math.Pow(2, float64(attempt)) * jitter)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stripCodeFence removes a surrounding ```json fence some models add even
// in JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// normalizeTags lowercases tags, replaces whitespace with hyphens and drops
// duplicates. limit <= 0 means no limit.
func normalizeTags(tags []string, limit int) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.Join(strings.Fields(strings.ToLower(t)), "-")
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
