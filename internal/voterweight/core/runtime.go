// Package core is the machinery every voter weight plugin shares: running an
// operation as one ledger unit of work, the output record lifecycle, realm
// authority and token owner checks, and the reporting that follows a commit.
package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"voterweight/internal/events"
	"voterweight/internal/ledger"
	"voterweight/internal/platform/metrics"
	"voterweight/internal/voterweight/models"
	"voterweight/pkg/domain"
	dErrors "voterweight/pkg/domain-errors"
	"voterweight/pkg/platform/sentinel"
	"voterweight/pkg/requestcontext"
)

// Plugin identifies one deployed plugin program.
type Plugin struct {
	Name      string
	ProgramID domain.Pubkey
}

// Runtime runs the operations of one plugin.
type Runtime struct {
	plugin    Plugin
	ledger    *ledger.Ledger
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher events.Publisher
	tracer    trace.Tracer
}

type Option func(*Runtime)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runtime) {
		r.metrics = m
	}
}

// WithPublisher sets where weight events go after a commit.
func WithPublisher(p events.Publisher) Option {
	return func(r *Runtime) {
		r.publisher = p
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(r *Runtime) {
		r.tracer = t
	}
}

// NewRuntime constructs a Runtime for plugin over l.
func NewRuntime(plugin Plugin, l *ledger.Ledger, opts ...Option) (*Runtime, error) {
	if l == nil {
		return nil, errors.New("ledger is required")
	}
	if plugin.Name == "" || plugin.ProgramID.IsZero() {
		return nil, errors.New("plugin name and program id are required")
	}
	r := &Runtime{
		plugin: plugin,
		ledger: l,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer("voterweight/" + plugin.Name)
	}
	return r, nil
}

func (r *Runtime) Plugin() Plugin { return r.plugin }

func (r *Runtime) ProgramID() domain.Pubkey { return r.plugin.ProgramID }

func (r *Runtime) Logger() *slog.Logger { return r.logger }

// Op is the state of one running operation: the unit of work plus what the
// operation wants reported once it commits.
type Op struct {
	*ledger.UnitOfWork

	name    string
	program domain.Pubkey
	events  []events.Event
	assets  int
	attrs   []any
}

// Name is the operation name used for metrics and spans.
func (o *Op) Name() string { return o.name }

// CountAssets records n receipts, assets or token accounts as counted.
func (o *Op) CountAssets(n int) { o.assets += n }

// Audit adds attributes to the audit line written after commit.
func (o *Op) Audit(attrs ...any) { o.attrs = append(o.attrs, attrs...) }

// VoterWeightRecordChanged queues an event describing rec at address.
func (o *Op) VoterWeightRecordChanged(kind events.Kind, address domain.Pubkey, rec *models.VoterWeightRecord) {
	owner := rec.GoverningTokenOwner
	o.events = append(o.events, events.Event{
		Kind:                kind,
		Record:              address,
		Realm:               rec.Realm,
		GoverningTokenMint:  rec.GoverningTokenMint,
		GoverningTokenOwner: &owner,
		Weight:              rec.VoterWeight,
		Expiry:              rec.VoterWeightExpiry,
		Action:              rec.WeightAction,
		Target:              rec.WeightActionTarget,
	})
}

// MaxVoterWeightRecordChanged queues an event describing rec at address.
func (o *Op) MaxVoterWeightRecordChanged(kind events.Kind, address domain.Pubkey, rec *models.MaxVoterWeightRecord) {
	o.events = append(o.events, events.Event{
		Kind:               kind,
		Record:             address,
		Realm:              rec.Realm,
		GoverningTokenMint: rec.GoverningTokenMint,
		Weight:             rec.MaxVoterWeight,
		Expiry:             rec.MaxVoterWeightExpiry,
	})
}

// RegistrarConfigured queues an event for a created or reconfigured registrar.
func (o *Op) RegistrarConfigured(address domain.Pubkey, id models.RegistrarIdentity) {
	o.events = append(o.events, events.Event{
		Kind:               events.KindRegistrarConfigured,
		Record:             address,
		Realm:              id.Realm,
		GoverningTokenMint: id.GoverningTokenMint,
	})
}

// Execute runs fn as one atomic unit of work holding the locks for
// lockKeys. On success the queued events are published and an audit line is
// written; on failure nothing is written and the rejection is counted by
// reason.
func (r *Runtime) Execute(ctx context.Context, name string, lockKeys []domain.Pubkey, fn func(ctx context.Context, op *Op) error) error {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, r.plugin.Name+"."+name,
		trace.WithAttributes(
			attribute.String("voterweight.plugin", r.plugin.Name),
			attribute.String("voterweight.operation", name),
		),
	)
	defer span.End()

	var op *Op
	err := r.ledger.Update(ctx, lockKeys, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		op = &Op{UnitOfWork: uow, name: name, program: r.plugin.ProgramID}
		return fn(ctx, op)
	})
	r.metrics.ObserveOperation(r.plugin.Name, time.Since(start))

	if err != nil {
		err = translateLedgerError(err)
		reason := failureReason(err)
		r.metrics.IncrementFailure(r.plugin.Name, reason)
		if dErrors.HasCode(err, dErrors.CodeDuplicateUse) {
			r.metrics.IncrementDuplicateRejection(r.plugin.Name)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		r.logger.WarnContext(ctx, "voter weight operation rejected",
			"plugin", r.plugin.Name,
			"operation", name,
			"reason", reason,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return err
	}

	r.metrics.IncrementUpdate(r.plugin.Name, name)
	r.metrics.AddAssetsCounted(r.plugin.Name, op.assets)
	span.SetAttributes(attribute.Int64("voterweight.slot", int64(op.Slot())))
	r.publish(ctx, op)
	LogAudit(ctx, r.logger, name, append(op.attrs, "plugin", r.plugin.Name, "slot", op.Slot(), "assets_counted", op.assets)...)
	return nil
}

// View runs fn against committed state without writing anything.
func (r *Runtime) View(ctx context.Context, fn func(ctx context.Context, uow *ledger.UnitOfWork) error) error {
	return translateLedgerError(r.ledger.View(ctx, fn))
}

// publish delivers the queued events. The commit already happened, so a
// failed publish is logged and counted but never fails the operation.
func (r *Runtime) publish(ctx context.Context, op *Op) {
	if r.publisher == nil || len(op.events) == 0 {
		return
	}
	requestID := requestcontext.RequestID(ctx)
	occurredAt := requestcontext.Now(ctx)
	for i := range op.events {
		op.events[i].ID = uuid.NewString()
		op.events[i].Plugin = r.plugin.Name
		op.events[i].Operation = op.name
		op.events[i].Slot = op.Slot()
		op.events[i].RequestID = requestID
		op.events[i].OccurredAt = occurredAt
	}
	if err := r.publisher.Publish(ctx, op.events...); err != nil {
		r.metrics.IncrementEventsPublished("failed")
		r.logger.ErrorContext(ctx, "failed to publish voter weight events",
			"plugin", r.plugin.Name,
			"operation", op.name,
			"count", len(op.events),
			"error", err,
		)
		return
	}
	r.metrics.IncrementEventsPublished("published")
}

// LogAudit writes a structured audit line enriched with the request id,
// signer and client taken from ctx.
func LogAudit(ctx context.Context, logger *slog.Logger, event string, attrs ...any) {
	if logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	if signer, ok := requestcontext.Signer(ctx); ok {
		attrs = append(attrs, "signer", signer.String())
	}
	if client := requestcontext.Client(ctx); client != "" {
		attrs = append(attrs, "client", client)
	}
	args := append(attrs, "event", event, "log_type", "audit")
	logger.InfoContext(ctx, event, args...)
}

// translateLedgerError maps store failures that escaped an operation to the
// domain taxonomy. Domain errors pass through untouched.
func translateLedgerError(err error) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return ErrConcurrentCreate.WithCause(err)
	case errors.Is(err, sentinel.ErrConflict):
		return ErrConcurrentUpdate.WithCause(err)
	case errors.Is(err, sentinel.ErrNotFound):
		return ErrAccountNotFound.WithCause(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation cancelled")
	default:
		return ErrLedgerUnavailable.WithCause(err)
	}
}

func failureReason(err error) string {
	if reason := dErrors.ReasonOf(err); reason != "" {
		return reason
	}
	return string(dErrors.CodeOf(err))
}
