package sanitizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/policy"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/svgdom"
)

// MediaType is the media type of every clean output.
const MediaType = "image/svg+xml"

// looseSVGTag is the precondition every input must meet before parsing.
var looseSVGTag = regexp.MustCompile(`(?i)<(?:[a-z_][a-z0-9_.-]*:)?svg[\s/>]`)

// Result is the outcome of one sanitization call. Exactly one of Output and
// Rejection is set.
type Result struct {
	// Output is the clean document.
	Output []byte

	// Rejection explains why the input was refused.
	Rejection *Rejection

	// Stats describe what the walker changed. They are zero for inputs
	// rejected before the walk.
	Stats Stats

	// InputBytes and OutputBytes are the sizes before and after.
	InputBytes  int
	OutputBytes int

	// Minified is true when Output went through the minifier.
	Minified bool

	// Duration is the wall time of the call.
	Duration time.Duration
}

// Clean reports whether the input was accepted.
func (r Result) Clean() bool { return r.Rejection == nil }

// Err returns the rejection as an error, or nil when clean.
func (r Result) Err() error {
	if r.Rejection == nil {
		return nil
	}
	return r.Rejection
}

// Engine sanitizes SVG documents with a fixed table and limits. It holds no
// per-call state and is safe for concurrent use.
type Engine struct {
	table    *policy.Table
	limits   svgdom.Limits
	logger   *slog.Logger
	minifier *minify.M
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy sets the table. A nil table means policy.Default().
func WithPolicy(table *policy.Table) Option {
	return func(e *Engine) {
		e.table = table
	}
}

// WithLimits sets the parser limits.
func WithLimits(limits svgdom.Limits) Option {
	return func(e *Engine) {
		e.limits = limits
	}
}

// WithLogger sets the logger. Rejections are logged at Info, accepted
// files at Debug.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMinify enables minification of clean output. Minified bytes are
// verified again like any other output.
func WithMinify(enabled bool) Option {
	return func(e *Engine) {
		if !enabled {
			e.minifier = nil
			return
		}
		m := minify.New()
		m.AddFunc(MediaType, svg.Minify)
		e.minifier = m
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{limits: svgdom.DefaultLimits()}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Policy returns the table the engine applies.
func (e *Engine) Policy() *policy.Table {
	if e.table != nil {
		return e.table
	}
	if policy.DefaultErr() != nil {
		return nil
	}
	return policy.Default()
}

// SanitizeUntrustedSVG sanitizes data with table and default limits.
func SanitizeUntrustedSVG(ctx context.Context, data []byte, table *policy.Table) Result {
	return New(WithPolicy(table)).Sanitize(ctx, data)
}

// Available returns nil when the default table can be built, and a
// sanitizer_unavailable rejection otherwise. Hosts must not advertise SVG
// support while this fails.
func Available() error {
	if err := policy.DefaultErr(); err != nil {
		return Reject(ReasonSanitizerUnavailable, "default policy", err)
	}
	return nil
}

// Sanitize runs the full pipeline over data. It never returns input bytes
// that were not produced by the serializer and accepted by Verify.
func (e *Engine) Sanitize(ctx context.Context, data []byte) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("sanitizer panic", "panic", fmt.Sprint(r))
			res = Result{Rejection: Reject(ReasonSanitizerUnavailable, "internal error", fmt.Errorf("panic: %v", r))}
		}
		res.InputBytes = len(data)
		res.OutputBytes = len(res.Output)
		res.Duration = time.Since(start)
		e.logResult(res)
	}()

	table := e.Policy()
	if table == nil {
		return Result{Rejection: Reject(ReasonSanitizerUnavailable, "default policy", policy.DefaultErr())}
	}
	if err := ctx.Err(); err != nil {
		return Result{Rejection: Reject(ReasonCanceled, "", err)}
	}
	if len(data) == 0 {
		return Result{Rejection: Reject(ReasonNotSVG, "empty input", nil)}
	}
	if !looseSVGTag.Match(data) {
		return Result{Rejection: Reject(ReasonNotSVG, "no svg tag", nil)}
	}

	doc, err := svgdom.ParseContext(ctx, data, e.limits)
	if err != nil {
		return Result{Rejection: fromParseError(err)}
	}

	stats, err := Walk(ctx, doc, table)
	if err != nil {
		return Result{Stats: stats, Rejection: Reject(ReasonCanceled, "", err)}
	}
	if doc.Root == nil {
		return Result{Stats: stats, Rejection: Reject(ReasonNoRootSVGElement, "root removed by policy", nil)}
	}

	out := doc.Serialize()
	minified := false
	if e.minifier != nil {
		if m, err := e.minifier.Bytes(MediaType, out); err != nil {
			e.logger.Warn("minify failed, keeping canonical output", "error", err)
		} else {
			out, minified = m, true
		}
	}

	if err := Verify(out); err != nil {
		var rej *Rejection
		if !errors.As(err, &rej) {
			rej = Reject(ReasonSanitizerUnavailable, "verifier", err)
		}
		return Result{Stats: stats, Rejection: rej}
	}
	return Result{Output: out, Stats: stats, Minified: minified}
}

func (e *Engine) logResult(res Result) {
	if res.Rejection != nil {
		e.logger.Info("svg rejected",
			"reason", string(res.Rejection.Reason),
			"detail", res.Rejection.Detail,
			"bytes", res.InputBytes,
			"duration", res.Duration,
		)
		return
	}
	e.logger.Debug("svg sanitized",
		"bytes_in", res.InputBytes,
		"bytes_out", res.OutputBytes,
		"elements_removed", res.Stats.ElementsRemoved,
		"attributes_removed", res.Stats.AttributesRemoved,
		"nodes_stripped", res.Stats.NodesStripped,
		"minified", res.Minified,
		"duration", res.Duration,
	)
}

// fromParseError maps parser failures onto rejection reasons.
func fromParseError(err error) *Rejection {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Reject(ReasonCanceled, "", err)
	}
	switch svgdom.KindOf(err) {
	case svgdom.KindNoRootSVG:
		return Reject(ReasonNoRootSVGElement, "", err)
	case svgdom.KindTooDeep:
		return Reject(ReasonTooDeep, "", err)
	case svgdom.KindTooLarge:
		return Reject(ReasonTooLarge, "", err)
	default:
		return Reject(ReasonNotWellFormed, "", err)
	}
}
