package assist

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/hupe1980/livecad/internal/util"
	"github.com/hupe1980/livecad/logging"
	"github.com/hupe1980/livecad/model"
)

var (
	// ErrLimitExceeded is returned once the configured number of model calls
	// is used up.
	ErrLimitExceeded = errors.New("assistant call limit exceeded")
	// ErrEmptySuggestion is returned when the model answered without code.
	ErrEmptySuggestion = errors.New("assistant returned no code")
)

// DefaultInstructions is the system prompt sent with every request.
const DefaultInstructions = `You write Starlark statements for a parametric CAD script.
Available builtins: vec3(x, y, z), box(size) or box(min, max), translate(mesh, offset),
solid(*visuals, position=vec3), link(a, b, distance=None), kinematic(links, fixed=[...]),
and the constants O, X, Y, Z.
Answer with code only. Reuse the existing variables when it makes sense.`

// DefaultPrompt is the user prompt template.
const DefaultPrompt = `{{if .Names}}Existing variables: {{join ", " .Names}}
{{end}}{{if .Script}}Current script:
{{.Script}}
{{end}}Request: {{.Request}}`

// Options configures a Generator.
type Options struct {
	Logger       logging.Logger
	Instructions string
	Prompt       string
	// MaxCalls bounds the model calls of the generator. Zero means unlimited.
	MaxCalls int
	// IncludeScript sends the full script text along with the names.
	IncludeScript bool
}

// Generator produces script statements from natural language requests.
type Generator struct {
	model   model.Model
	opts    Options
	limiter *Limiter
}

// New creates a generator backed by m.
func New(m model.Model, optFns ...func(o *Options)) *Generator {
	opts := Options{
		Logger:       logging.NoOpLogger{},
		Instructions: DefaultInstructions,
		Prompt:       DefaultPrompt,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{model: m, opts: opts, limiter: NewLimiter(opts.MaxCalls)}
}

// Limiter exposes the call counter.
func (g *Generator) Limiter() *Limiter { return g.limiter }

// Suggest asks the model for code fulfilling request. names are the
// variables of the script, script its text.
func (g *Generator) Suggest(ctx context.Context, request string, names []string, script string) (string, error) {
	ctx, span := otel.Tracer("livecad/assist").Start(ctx, "assist.Suggest")
	defer span.End()
	span.SetAttributes(
		attribute.String("model", g.model.Info().Name),
		attribute.Int("names", len(names)),
	)

	code, err := g.suggest(ctx, request, names, script)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("code.length", len(code)))
	return code, nil
}

func (g *Generator) suggest(ctx context.Context, request string, names []string, script string) (string, error) {
	if strings.TrimSpace(request) == "" {
		return "", fmt.Errorf("empty request")
	}
	if err := g.limiter.Increment(); err != nil {
		return "", err
	}

	data := map[string]any{"Request": request, "Names": names}
	if g.opts.IncludeScript {
		data["Script"] = script
	}
	prompt, err := util.RenderTemplate(g.opts.Prompt, data)
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	start := time.Now()
	resp, err := model.Collect(ctx, g.model, model.Request{
		Instructions: g.opts.Instructions,
		Messages:     []model.Message{{Role: model.RoleUser, Text: prompt}},
	})
	g.opts.Logger.Debug("assistant call", "model", g.model.Info().Name, "duration", time.Since(start), "error", err)
	if err != nil {
		return "", fmt.Errorf("assistant model: %w", err)
	}

	code := ExtractCode(resp.Text)
	if code == "" {
		return "", ErrEmptySuggestion
	}
	return code, nil
}

var fence = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*[ \t]*\n(.*?)```")

// ExtractCode returns the content of the markdown code fences of text, or
// the trimmed text when it has none.
func ExtractCode(text string) string {
	blocks := fence.FindAllStringSubmatch(text, -1)
	if len(blocks) == 0 {
		return strings.TrimSpace(text)
	}
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if s := strings.TrimSpace(b[1]); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}
