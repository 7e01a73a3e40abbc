// Package summary asks a generative model with web search for a structured
// three-section book summary.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	domainerrors "github.com/listenupapp/shelfboard/internal/errors"
	"github.com/listenupapp/shelfboard/internal/id"
)

// FailurePrefix starts every failure message returned by SummaryText.
const FailurePrefix = "AI analysis failed"

// DefaultModel and DefaultTemperature match the dashboard's production settings.
const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultTemperature = float32(0.3)
)

// Generator is the slice of the genai API the client uses.
// *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config configures the model call.
type Config struct {
	APIKey string
	Model  string
	// Temperature nil means DefaultTemperature; zero is a valid setting.
	Temperature *float32
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == nil {
		c.Temperature = genai.Ptr(DefaultTemperature)
	}
	return c
}

// Client generates summaries. A nil *Client is valid and reports
// CodeAINotConfigured from every call without contacting anything.
type Client struct {
	gen         Generator
	model       string
	temperature float32
	logger      *slog.Logger
	now         func() time.Time
}

// NewClient wraps a generator.
func NewClient(gen Generator, cfg Config, logger *slog.Logger) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		gen:         gen,
		model:       cfg.Model,
		temperature: *cfg.Temperature,
		logger:      logger,
		now:         time.Now,
	}
}

// Dial creates a Gemini API client for cfg. An empty API key yields a nil
// client and no error.
func Dial(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  cfg.APIKey,
	})
	if err != nil {
		return nil, domainerrors.AIService(err, "failed to create Gemini client")
	}
	return NewClient(gc.Models, cfg, logger), nil
}

// Model returns the model name used for generation.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// Summarize makes exactly one generation request for the book.
func (c *Client) Summarize(ctx context.Context, title, category string) (*Result, error) {
	if c == nil {
		return nil, domainerrors.ErrAINotConfigured
	}
	if strings.TrimSpace(title) == "" {
		return nil, domainerrors.Validation("title is required")
	}

	requestID, err := id.Generate(id.PrefixSummary)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate request id")
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(c.temperature),
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	start := c.now()
	resp, err := c.gen.GenerateContent(ctx, c.model, genai.Text(userPrompt(title, category)), config)
	if err != nil {
		c.logger.Warn("summary generation failed",
			"request_id", requestID,
			"title", title,
			"error", err,
		)
		return nil, domainerrors.AIService(err, "summary generation failed")
	}

	text := ""
	if resp != nil {
		text = strings.TrimSpace(resp.Text())
	}
	if text == "" {
		return nil, domainerrors.AIService(nil, "model returned an empty summary")
	}

	preamble, sections := parseSections(text)
	missing, unexpected := checkSections(preamble, sections)

	result := &Result{
		RequestID:   requestID,
		Title:       title,
		Category:    category,
		Model:       c.model,
		Markdown:    text,
		Sections:    sections,
		Complete:    len(missing) == 0 && len(unexpected) == 0,
		Missing:     missing,
		Unexpected:  unexpected,
		GeneratedAt: c.now(),
	}

	c.logger.Info("summary generated",
		"request_id", requestID,
		"title", title,
		"complete", result.Complete,
		"unexpected", len(unexpected),
		"duration", c.now().Sub(start),
	)
	return result, nil
}

// SummaryText returns the summary markdown, or a message starting with
// FailurePrefix. It never returns an error.
func (c *Client) SummaryText(ctx context.Context, title, category string) string {
	result, err := c.Summarize(ctx, title, category)
	if err != nil {
		return FailureText(err)
	}
	return result.Markdown
}

// FailureText formats err as a SummaryText failure message.
func FailureText(err error) string {
	return fmt.Sprintf("%s: %v", FailurePrefix, err)
}

// IsFailureText reports whether s is a SummaryText failure message.
func IsFailureText(s string) bool {
	return strings.HasPrefix(s, FailurePrefix)
}

// Provider lazily builds one Client per process and hands the same one to
// every caller until Reset.
type Provider struct {
	cfg    Config
	logger *slog.Logger
	dial   func(context.Context, Config, *slog.Logger) (*Client, error)

	// fixed is set by NewStaticProvider and replaces dialing.
	fixed *Client

	mu     sync.Mutex
	client *Client
	ready  bool
}

// NewProvider returns a provider that dials Gemini on first use.
func NewProvider(cfg Config, logger *slog.Logger) *Provider {
	return &Provider{cfg: cfg, logger: logger, dial: Dial}
}

// NewStaticProvider hands out an already built client. A nil client behaves
// like a provider with no API key.
func NewStaticProvider(c *Client, logger *slog.Logger) *Provider {
	return &Provider{logger: logger, fixed: c}
}

// Configured reports whether summaries can be generated.
func (p *Provider) Configured() bool {
	return p.cfg.APIKey != "" || p.fixed != nil
}

// Client returns the shared client, creating it on the first call.
// Without a credential it returns nil and no error. A failed dial is not
// remembered, so the next call tries again.
func (p *Provider) Client(ctx context.Context) (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return p.client, nil
	}

	switch {
	case p.fixed != nil:
		p.client = p.fixed
	case p.cfg.APIKey == "":
		p.logger.Warn("summary client disabled: no API key configured")
		p.client = nil
	default:
		c, err := p.dial(ctx, p.cfg, p.logger)
		if err != nil {
			return nil, err
		}
		p.logger.Info("summary client ready", "model", c.Model())
		p.client = c
	}
	p.ready = true
	return p.client, nil
}

// Reset discards the shared client so the next call builds a new one.
func (p *Provider) Reset() {
	p.mu.Lock()
	p.client = nil
	p.ready = false
	p.mu.Unlock()
}
