package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/pitist/mi-orquestador-mvp/api/schemas"
)

const tracerName = "github.com/pitist/mi-orquestador-mvp/internal/audit"

// MaxFindings is the largest number of findings a single audit can produce.
const MaxFindings = 3

// Result is the outcome of one simulated audit.
type Result struct {
	AuditID     string            `json:"audit_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Findings    []schemas.Finding `json:"findings"`
	Report      string            `json:"report"`
}

// Generator produces randomized, synthetic audit results. It holds no state
// across invocations; a single Generator can serve concurrent callers as
// long as its RandomSource is safe for concurrent use (the default is).
type Generator struct {
	rnd    RandomSource
	now    func() time.Time
	newID  func() string
	tracer trace.Tracer
	logger *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithRandomSource replaces the default process-wide random source.
func WithRandomSource(src RandomSource) Option {
	return func(g *Generator) { g.rnd = src }
}

// WithClock sets the clock used to timestamp reports.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithIDFunc sets the function used to mint audit IDs.
func WithIDFunc(newID func() string) Option {
	return func(g *Generator) { g.newID = newID }
}

// WithTracer sets the tracer used for the audit span.
func WithTracer(t trace.Tracer) Option {
	return func(g *Generator) { g.tracer = t }
}

// NewGenerator creates a Generator. A nil logger is replaced with a no-op one.
func NewGenerator(logger *zap.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Generator{
		rnd:    globalSource{},
		now:    time.Now,
		newID:  uuid.NewString,
		tracer: otel.Tracer(tracerName),
		logger: logger.Named("audit"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs one simulated audit: it draws zero to MaxFindings findings,
// sorts them by severity and renders the report, marking each finding
// mitigated on the way. It cannot fail.
func (g *Generator) Generate(ctx context.Context) Result {
	_, span := g.tracer.Start(ctx, "audit.generate")
	defer span.End()

	res := Result{
		AuditID:     g.newID(),
		GeneratedAt: g.now(),
	}
	logger := g.logger.With(zap.String("audit_id", res.AuditID))
	logger.Info("Initiating security audit (simulated)")

	res.Findings = g.draw(logger)
	span.SetAttributes(
		attribute.String("audit.id", res.AuditID),
		attribute.Int("audit.findings", len(res.Findings)),
	)

	if len(res.Findings) == 0 {
		logger.Info("No new critical vulnerabilities detected")
		res.Report = NoFindingsReport
		return res
	}

	logger.Info("Evaluating and prioritizing vulnerabilities", zap.Int("count", len(res.Findings)))
	Prioritize(res.Findings)
	res.Report = RenderReport(res.GeneratedAt, res.Findings, logger)

	logger.Info("Audit report", zap.String("report", res.Report))
	logger.Info("Transformation and closure process completed (simulated)")
	return res
}

// draw generates the raw findings in generation order. The draw sequence per
// finding is severity, type, module, method.
func (g *Generator) draw(logger *zap.Logger) []schemas.Finding {
	n := g.rnd.IntN(MaxFindings + 1)
	findings := make([]schemas.Finding, 0, n)

	for i := 0; i < n; i++ {
		severity := severities[weightedIndex(g.rnd, severityWeights)]
		vulnType := choose(g.rnd, typesBySeverity[severity])
		module := choose(g.rnd, modules)
		method := choose(g.rnd, MethodsFor(module))

		f := schemas.Finding{
			ID:       i + 1,
			Module:   module,
			Method:   method,
			Type:     vulnType,
			Severity: severity,
			Status:   schemas.StatusIdentified,
		}
		findings = append(findings, f)

		logger.Warn("Vulnerability found",
			zap.String("type", f.Type),
			zap.String("severity", string(f.Severity)),
			zap.String("location", f.Module+"::"+f.Method),
		)
	}
	return findings
}
