// Package sqlgen turns natural-language questions into SQL through a
// single LLM call. Feedback metrics and prior successful examples are
// folded into the prompt; the model's answer is returned verbatim after
// markdown fence stripping. There are no retries: a failed or empty
// generation is surfaced as ErrGenerationFailed and the caller decides
// what to do.
package sqlgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/sqlmind/sqlmind/internal/log"
)

// ErrGenerationFailed marks an unusable generation: the model call
// errored or produced empty output.
var ErrGenerationFailed = errors.New("sql generation failed")

// DefaultTimeout bounds one model call.
const DefaultTimeout = 30 * time.Second

// defaultRequestsPerMinute paces outbound model calls.
const defaultRequestsPerMinute = 60

// Config tunes the generator.
type Config struct {
	Timeout           time.Duration
	RequestsPerMinute int

	// Temperature is passed to every model call. Zero keeps output
	// deterministic, which is what SQL generation wants.
	Temperature float64
}

// Generator produces SQL for natural-language questions.
type Generator struct {
	g           *genkit.Genkit
	modelName   string
	limiter     *rate.Limiter
	timeout     time.Duration
	temperature float64
	logger      log.Logger
}

// New creates a generator bound to one model, named in full provider
// form, e.g. "googleai/gemini-2.5-flash".
func New(g *genkit.Genkit, modelName string, cfg Config, logger log.Logger) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = defaultRequestsPerMinute
	}
	return &Generator{
		g:           g,
		modelName:   modelName,
		limiter:     rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Generate makes one model call for the request and returns the cleaned
// SQL text. The request's metrics and examples shape the prompt; beyond
// that they do not alter behavior.
func (gen *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if err := gen.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, gen.timeout)
	defer cancel()

	prompt := buildPrompt(req)
	resp, err := genkit.Generate(ctx, gen.g,
		ai.WithModelName(gen.modelName),
		ai.WithConfig(&ai.GenerationCommonConfig{Temperature: gen.temperature}),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	sql := stripFences(resp.Text())
	if sql == "" {
		return "", fmt.Errorf("%w: model returned empty output", ErrGenerationFailed)
	}

	gen.logger.Debug("sql generated",
		"question", req.Question,
		"level", req.Metrics.Level,
		"examples", len(req.Examples))
	return sql, nil
}
