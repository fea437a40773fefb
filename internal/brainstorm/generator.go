package brainstorm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/ideaforge/internal/models"
)

// DefaultTimeout bounds a single model call
const DefaultTimeout = 120 * time.Second

// ErrEmptyReply is returned when the model reply holds no usable ideas
var ErrEmptyReply = errors.New("model returned no ideas")

// Completer runs a completion against the selected provider
type Completer interface {
	Generate(ctx context.Context, cfg models.LLMConfig, prompt, systemPrompt string) (string, error)
}

// Renderer produces the deterministic template result
type Renderer interface {
	Render(c models.Context) (*models.Result, error)
}

// Generator turns a context into ideas, preferring the selected model and
// falling back to templates on any model failure
type Generator struct {
	completer Completer
	renderer  Renderer
	timeout   time.Duration
}

// NewGenerator creates a generator
func NewGenerator(completer Completer, renderer Renderer, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Generator{
		completer: completer,
		renderer:  renderer,
		timeout:   timeout,
	}
}

// Generate returns ideas for c. The only error is an invalid context;
// model failures produce a template result carrying a warning.
func (g *Generator) Generate(ctx context.Context, c models.Context, cfg models.LLMConfig) (*models.Result, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid context: %w", err)
	}

	if !cfg.HasSelection() {
		slog.Debug("no model selected, using templates", "bucket", c.Bucket())
		return g.renderer.Render(c)
	}

	cfg = cfg.Normalize()
	result, err := g.generateWithModel(ctx, c, cfg)
	if err == nil {
		return result, nil
	}

	slog.Warn("llm generation failed, using template fallback",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"error", err,
	)

	fallback, renderErr := g.renderer.Render(c)
	if renderErr != nil {
		return nil, renderErr
	}
	fallback.Warning = fmt.Sprintf("LLM generation failed: %s. Using template fallback.", err)
	return fallback, nil
}

func (g *Generator) generateWithModel(ctx context.Context, c models.Context, cfg models.LLMConfig) (*models.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	reply, err := g.completer.Generate(ctx, cfg, BuildPrompt(c), SystemPrompt)
	if err != nil {
		return nil, err
	}

	understanding, ideas, err := ParseReply(reply)
	if err != nil {
		return nil, err
	}

	slog.Info("ideas generated by model",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"ideas", len(ideas),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &models.Result{
		ID:            uuid.New().String(),
		Understanding: understanding,
		Ideas:         ideas,
		Source:        models.SourceLLM,
		Bucket:        c.Bucket(),
		Provider:      cfg.Provider,
		Model:         cfg.Model,
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

type replyIdea struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Effort      string `json:"effort"`
	Impact      string `json:"impact"`
}

type reply struct {
	Understanding string      `json:"understanding"`
	Ideas         []replyIdea `json:"ideas"`
}

// ParseReply extracts the JSON object from a model reply. Text around the
// object is ignored, ideas without a title are dropped, and unrecognised
// ratings fall back to the index-based ones.
func ParseReply(text string) (string, []models.Idea, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", nil, fmt.Errorf("model reply is not JSON")
	}

	var r reply
	if err := json.Unmarshal([]byte(text[start:end+1]), &r); err != nil {
		return "", nil, fmt.Errorf("failed to parse model reply: %w", err)
	}

	ideas := make([]models.Idea, 0, len(r.Ideas))
	for _, ri := range r.Ideas {
		title := strings.TrimSpace(ri.Title)
		if title == "" {
			continue
		}
		i := len(ideas)
		ideas = append(ideas, models.Idea{
			ID:          strconv.Itoa(i),
			Title:       title,
			Description: strings.TrimSpace(ri.Description),
			Priority:    levelOr(ri.Priority, models.PriorityAt(i)),
			Effort:      levelOr(ri.Effort, models.EffortAt(i)),
			Impact:      levelOr(ri.Impact, models.ImpactAt(i)),
		})
	}
	if len(ideas) == 0 {
		return "", nil, ErrEmptyReply
	}

	return strings.TrimSpace(r.Understanding), ideas, nil
}

func levelOr(s string, fallback models.Level) models.Level {
	if l, ok := models.ParseLevel(s); ok {
		return l
	}
	return fallback
}
