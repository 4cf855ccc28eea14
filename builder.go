package authcore

import (
	"context"
	"errors"
)

// Builder assembles a [Controller] from its collaborators. Configure it
// during initialization and call [Builder.Build] once; a Builder is not
// safe for concurrent use and is single-shot.
type Builder struct {
	config    Config
	store     Store
	service   Service
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration wholesale. Zero-value
// fields are filled with defaults at Build time.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore sets the session store the controller persists identities to.
// Required.
func (b *Builder) WithStore(s Store) *Builder {
	b.store = s
	return b
}

// WithService sets the authentication service collaborator. Required.
func (b *Builder) WithService(s Service) *Builder {
	b.service = s
	return b
}

// WithAuditSink sets the destination for audit events. Events are delivered
// asynchronously; a nil sink with auditing enabled falls back to [NoOpSink].
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles counter collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the assembled collaborators and returns a Controller in
// the Loading phase. Call [Controller.Init] to resolve startup.
func (b *Builder) Build() (*Controller, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.store == nil {
		return nil, errors.New("session store required")
	}
	if b.service == nil {
		return nil, errors.New("auth service required")
	}

	lifeCtx, lifeCancel := context.WithCancel(context.Background())

	c := &Controller{
		config:     cfg,
		store:      b.store,
		service:    b.service,
		state:      State{Phase: PhaseLoading},
		lifeCtx:    lifeCtx,
		lifeCancel: lifeCancel,
	}
	c.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	c.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return c, nil
}
