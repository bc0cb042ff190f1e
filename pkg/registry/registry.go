// Package registry implements the agent registration pipeline: resolve the
// card URL, fetch, validate, and persist through a storage backend.
package registry

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/agentdir/pkg/agentcard"
	agentdirerrors "github.com/jllopis/agentdir/pkg/errors"
	"github.com/jllopis/agentdir/pkg/store"
	"github.com/jllopis/agentdir/pkg/telemetry"
)

// Registry orchestrates the card lifecycle over a swappable storage backend.
// It holds no card state of its own; every operation round-trips through the
// backend. The remote URL is the source of truth: both register and update
// re-fetch the card rather than accepting a caller-supplied body.
type Registry struct {
	store   store.Store
	client  *http.Client
	metrics *telemetry.RegistryMetrics
	tracer  trace.Tracer
}

// Option configures a Registry.
type Option func(*Registry)

// WithHTTPClient overrides the card fetch client (mainly for tests).
func WithHTTPClient(client *http.Client) Option {
	return func(r *Registry) { r.client = client }
}

// WithMetrics enables operation metrics.
func WithMetrics(metrics *telemetry.RegistryMetrics) Option {
	return func(r *Registry) { r.metrics = metrics }
}

// New creates a Registry over the given store.
func New(s store.Store, opts ...Option) *Registry {
	r := &Registry{
		store:  s,
		tracer: otel.Tracer("agentdir/registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register resolves url to a card URL, fetches and validates the card, and
// stores it under its name. A colliding name fails with ALREADY_EXISTS and
// leaves the stored card untouched.
func (r *Registry) Register(ctx context.Context, url string) (agentcard.Card, error) {
	ctx, span := r.tracer.Start(ctx, "registry.register",
		trace.WithAttributes(attribute.String("agent.url", url)))
	defer span.End()

	card, err := r.fetchCard(ctx, url)
	if err != nil {
		return nil, r.fail(ctx, span, "register", err)
	}
	stored, err := r.store.Create(ctx, card)
	if err != nil {
		return nil, r.fail(ctx, span, "register", err)
	}
	r.metrics.RecordOperation(ctx, "register", nil)
	slog.InfoContext(ctx, "agent registered", "name", stored.Name(), "url", stored.URL())
	return stored, nil
}

// List returns every registered card. Order is unspecified.
func (r *Registry) List(ctx context.Context) ([]agentcard.Card, error) {
	ctx, span := r.tracer.Start(ctx, "registry.list")
	defer span.End()

	cards, err := r.store.List(ctx)
	if err != nil {
		return nil, r.fail(ctx, span, "list", err)
	}
	r.metrics.RecordOperation(ctx, "list", nil)
	return cards, nil
}

// Get returns the card registered under name. Absence is a normal outcome.
func (r *Registry) Get(ctx context.Context, name string) (agentcard.Card, bool, error) {
	ctx, span := r.tracer.Start(ctx, "registry.get",
		trace.WithAttributes(attribute.String("agent.name", name)))
	defer span.End()

	card, ok, err := r.store.Get(ctx, name)
	if err != nil {
		return nil, false, r.fail(ctx, span, "get", err)
	}
	r.metrics.RecordOperation(ctx, "get", nil)
	return card, ok, nil
}

// Update re-fetches the card for name and replaces the stored copy. When url
// is empty the stored card's own URL is the fetch source. An unknown name
// returns absent without fetching anything; a fetched card whose name differs
// from the key fails validation so an update can never rename or write
// through to a different key.
func (r *Registry) Update(ctx context.Context, name, url string) (agentcard.Card, bool, error) {
	ctx, span := r.tracer.Start(ctx, "registry.update",
		trace.WithAttributes(attribute.String("agent.name", name)))
	defer span.End()

	existing, ok, err := r.store.Get(ctx, name)
	if err != nil {
		return nil, false, r.fail(ctx, span, "update", err)
	}
	if !ok {
		r.metrics.RecordOperation(ctx, "update", nil)
		return nil, false, nil
	}

	source := url
	if source == "" {
		source = existing.URL()
	}
	card, err := r.fetchCard(ctx, source)
	if err != nil {
		return nil, false, r.fail(ctx, span, "update", err)
	}
	if card.Name() != name {
		err := agentdirerrors.Newf(agentdirerrors.CodeInvalidCard,
			"fetched card is named %q, not %q; updates cannot rename an agent",
			card.Name(), name)
		return nil, false, r.fail(ctx, span, "update", err)
	}

	replaced, ok, err := r.store.Replace(ctx, name, card)
	if err != nil {
		return nil, false, r.fail(ctx, span, "update", err)
	}
	r.metrics.RecordOperation(ctx, "update", nil)
	if ok {
		slog.InfoContext(ctx, "agent updated", "name", name)
	}
	return replaced, ok, nil
}

// Delete removes the card registered under name. Deleting an absent name is
// a no-op, reported through the boolean.
func (r *Registry) Delete(ctx context.Context, name string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "registry.delete",
		trace.WithAttributes(attribute.String("agent.name", name)))
	defer span.End()

	deleted, err := r.store.Delete(ctx, name)
	if err != nil {
		return false, r.fail(ctx, span, "delete", err)
	}
	r.metrics.RecordOperation(ctx, "delete", nil)
	if deleted {
		slog.InfoContext(ctx, "agent deleted", "name", name)
	}
	return deleted, nil
}

// fetchCard resolves, fetches, and validates an agent card from url.
func (r *Registry) fetchCard(ctx context.Context, url string) (agentcard.Card, error) {
	resolved := agentcard.ResolveCardURL(url)
	start := time.Now()
	doc, err := agentcard.Fetch(ctx, r.client, resolved)
	r.metrics.RecordFetch(ctx, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return agentcard.ValidateCard(doc)
}

func (r *Registry) fail(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	r.metrics.RecordOperation(ctx, op, err)
	slog.WarnContext(ctx, "registry operation failed", "operation", op, "error", err)
	return err
}
