// internal/app/console/bulk/bulk.go

// Package bulk applies one operator action to every record in a selection.
//
// Mutations fan out one gateway call per record and never stop on the first
// failure. Outcomes are data: a Result lists what succeeded and what failed
// with a reason. Partial success is never rolled back. When anything
// succeeded the executor asks for one full refresh before returning so the
// caller sees the state the mutation produced.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wanderhub/travelhub/internal/app/console/gateway"
	"github.com/wanderhub/travelhub/internal/app/console/resource"
	"github.com/wanderhub/travelhub/internal/app/system/auditlog"
	"github.com/wanderhub/travelhub/internal/app/system/htmlsanitize"
	"github.com/wanderhub/travelhub/internal/app/system/mailer"
	"github.com/wanderhub/travelhub/internal/app/system/metrics"
	"github.com/wanderhub/travelhub/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultConcurrency bounds the per-record fan-out.
const DefaultConcurrency = 8

var (
	ErrEmptySelection = errors.New("nothing selected")
	ErrUnknownOp      = errors.New("unknown bulk operation")
	ErrNoComposer     = errors.New("no email composer configured")
)

// Refresher runs a full aggregate refresh and waits for it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Executor runs bulk operations. It is safe for concurrent use.
type Executor struct {
	gw        gateway.Gateway
	refresher Refresher
	composer  mailer.Composer
	limit     int
	limiter   *rate.Limiter
	validate  *validator.Validate
	log       *zap.Logger
	metrics   *metrics.Console
	audit     *auditlog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithConcurrency bounds how many mutations run at once. n <= 0 keeps the
// default.
func WithConcurrency(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithRate paces mutations to perSec calls per second. Zero disables pacing.
func WithRate(perSec float64) Option {
	return func(e *Executor) {
		if perSec > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
		}
	}
}

func WithComposer(c mailer.Composer) Option {
	return func(e *Executor) { e.composer = c }
}

func WithMetrics(m *metrics.Console) Option {
	return func(e *Executor) { e.metrics = m }
}

func WithAudit(a *auditlog.Logger) Option {
	return func(e *Executor) { e.audit = a }
}

// New returns an executor. refresher may be nil, in which case no
// follow-up refresh is requested.
func New(gw gateway.Gateway, refresher Refresher, logger *zap.Logger, opts ...Option) *Executor {
	e := &Executor{
		gw:        gw,
		refresher: refresher,
		composer:  mailer.Mailto{},
		limit:     DefaultConcurrency,
		validate:  validator.New(),
		log:       logger,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Execute runs req. The returned error covers only requests that could not
// start (empty selection, unsupported operation, compose handoff failure);
// per-record failures are reported in the Result.
func (e *Executor) Execute(ctx context.Context, req Request) (Result, error) {
	res := Result{
		ID:       uuid.NewString(),
		Resource: req.Resource,
		Op:       req.Op.Kind,
	}

	spec, err := e.check(req)
	if err != nil {
		return res, err
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Bulk(), e.log, "bulk "+string(req.Op.Kind))
	defer cancel()

	if req.Op.Kind == KindComposeEmail {
		return e.compose(ctx, spec, req, res)
	}
	return e.mutate(ctx, spec, req, res)
}

func (e *Executor) check(req Request) (resource.Spec, error) {
	spec, ok := resource.Lookup(req.Resource)
	if !ok {
		return spec, gateway.NewError(gateway.KindNotFound, req.Resource, "", "", fmt.Errorf("unknown resource"))
	}
	if len(req.IDs) == 0 {
		return spec, ErrEmptySelection
	}
	switch req.Op.Kind {
	case KindDelete:
		if !spec.Supports(resource.OpDelete) {
			return spec, unsupported(req.Resource, resource.OpDelete)
		}
	case KindSetStatus:
		if !spec.Supports(resource.OpTransition) {
			return spec, unsupported(req.Resource, resource.OpTransition)
		}
		if err := gateway.CheckStatus(spec, "", req.Op.Value); err != nil {
			return spec, err
		}
	case KindComposeEmail:
		if spec.ContactField == "" {
			return spec, gateway.NewError(gateway.KindValidation, req.Resource, "", "",
				fmt.Errorf("%s has no contact address: %w", req.Resource, gateway.ErrUnsupported))
		}
		if e.composer == nil {
			return spec, ErrNoComposer
		}
	default:
		return spec, fmt.Errorf("%w: %q", ErrUnknownOp, req.Op.Kind)
	}
	return spec, nil
}

func unsupported(name resource.Name, op resource.Op) error {
	return gateway.NewError(gateway.KindValidation, name, op, "", gateway.ErrUnsupported)
}

// mutate fans out one call per id. Every goroutine returns nil so the group
// never cancels its peers; outcomes land in their selection slot.
func (e *Executor) mutate(ctx context.Context, spec resource.Spec, req Request, res Result) (Result, error) {
	errs := make([]error, len(req.IDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for i, id := range req.IDs {
		g.Go(func() error {
			errs[i] = e.apply(gctx, spec, req.Op, id)
			return nil
		})
	}
	_ = g.Wait()

	res.Attempted = len(req.IDs)
	for i, id := range req.IDs {
		outcome := "succeeded"
		if err := errs[i]; err != nil {
			outcome = "failed"
			res.Failed = append(res.Failed, failure(id, err))
		} else {
			res.Succeeded = append(res.Succeeded, id)
		}
		e.metrics.BulkRecord(string(spec.Name), string(req.Op.Kind), outcome)
		e.auditRecord(ctx, spec.Name, req.Op, id, errs[i])
	}

	e.log.Info("bulk operation finished",
		zap.String("bulk_id", res.ID),
		zap.String("resource", string(spec.Name)),
		zap.String("op", string(req.Op.Kind)),
		zap.Int("succeeded", len(res.Succeeded)),
		zap.Int("failed", len(res.Failed)))
	e.audit.BulkCompleted(ctx, string(spec.Name), string(req.Op.Kind), len(res.Succeeded), len(res.Failed))

	if len(res.Succeeded) > 0 && e.refresher != nil {
		if err := e.refresher.Refresh(ctx); err != nil {
			res.RefreshError = err.Error()
			e.log.Warn("post-bulk refresh failed", zap.String("bulk_id", res.ID), zap.Error(err))
		} else {
			res.Refreshed = true
		}
	}
	return res, nil
}

func (e *Executor) apply(ctx context.Context, spec resource.Spec, op Operation, id string) error {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return gateway.NewError(gateway.KindNetwork, spec.Name, "", id, err)
		}
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Mutate())
	defer cancel()

	switch op.Kind {
	case KindDelete:
		return e.gw.Delete(ctx, spec.Name, id)
	case KindSetStatus:
		_, err := e.gw.Transition(ctx, spec.Name, id, op.Value)
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownOp, op.Kind)
}

func (e *Executor) auditRecord(ctx context.Context, name resource.Name, op Operation, id string, err error) {
	switch op.Kind {
	case KindDelete:
		e.audit.RecordDeleted(ctx, string(name), id, err)
	case KindSetStatus:
		e.audit.StatusChanged(ctx, string(name), id, op.Value, err)
	}
}

// compose resolves recipients from the selected records and hands them to
// the composer. Records are not mutated and no refresh is requested.
func (e *Executor) compose(ctx context.Context, spec resource.Spec, req Request, res Result) (Result, error) {
	byID := make(map[string]gateway.Record, len(req.Records))
	for _, r := range req.Records {
		byID[r.ID()] = r
	}

	res.Attempted = len(req.IDs)
	var recipients []string
	seen := make(map[string]bool)
	for _, id := range req.IDs {
		rec, ok := byID[id]
		if !ok {
			res.Failed = append(res.Failed, Failure{ID: id, Kind: gateway.KindNotFound, Message: "record no longer exists"})
			continue
		}
		addr := strings.TrimSpace(rec.Str(spec.ContactField))
		if err := e.validate.Var(addr, "required,email"); err != nil {
			res.Failed = append(res.Failed, Failure{ID: id, Kind: gateway.KindValidation, Message: "invalid email address"})
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
		key := strings.ToLower(addr)
		if seen[key] {
			continue
		}
		seen[key] = true
		recipients = append(recipients, addr)
	}

	if len(recipients) == 0 {
		return res, mailer.ErrNoRecipients
	}

	handoff, err := e.composer.Compose(ctx, mailer.Message{
		Recipients: recipients,
		Subject:    strings.TrimSpace(req.Op.Subject),
		Body:       htmlsanitize.PlainText(req.Op.Body),
	})
	if err != nil {
		return res, err
	}
	res.Handoff = &handoff

	e.log.Info("email handed off",
		zap.String("bulk_id", res.ID),
		zap.String("resource", string(spec.Name)),
		zap.Int("recipients", handoff.Recipients),
		zap.Int("batches", len(handoff.Links)),
		zap.Int("skipped", len(res.Failed)))
	e.audit.EmailComposed(ctx, string(spec.Name), handoff.Recipients, len(handoff.Links))
	return res, nil
}
