// Package extension provides a Forge extension entry point for fabric.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/fabric"
	"github.com/xraph/fabric/api"
	"github.com/xraph/fabric/plugin"
	"github.com/xraph/fabric/store"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "fabric"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Multi-tenant entity, relationship, and access-control core"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the fabric engine as a Forge extension.
type Extension struct {
	config     Config
	eng        *fabric.Engine
	apiHandler *api.API
	logger     *slog.Logger
	engineOpts []fabric.Option
	plugins    []plugin.Plugin
}

// New creates a fabric Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Engine returns the underlying fabric engine.
func (e *Extension) Engine() *fabric.Engine { return e.eng }

// API returns the API handler.
func (e *Extension) API() *api.API { return e.apiHandler }

// Register implements [forge.Extension]. It initializes the engine,
// registers it in the DI container, and optionally registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	// Register the engine in the DI container.
	if err := vessel.Provide(fapp.Container(), func() (*fabric.Engine, error) {
		return e.eng, nil
	}); err != nil {
		return fmt.Errorf("fabric: register engine in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := make([]fabric.Option, 0, len(e.engineOpts)+len(e.plugins)+2)
	opts = append(opts, fabric.WithLogger(logger))

	// Try to resolve a store from the DI container; option-provided stores
	// override it below.
	if s, err := forge.Inject[store.Store](fapp.Container()); err == nil {
		opts = append(opts, fabric.WithStore(s))
	}

	if e.config.MaxTraversalDepth > 0 {
		cfg := fabric.DefaultConfig()
		cfg.MaxTraversalDepth = e.config.MaxTraversalDepth
		opts = append(opts, fabric.WithConfig(cfg))
	}

	// User-provided options last so they win over anything derived above.
	opts = append(opts, e.engineOpts...)

	for _, x := range e.plugins {
		opts = append(opts, fabric.WithPlugin(x))
	}

	eng, err := fabric.NewEngine(opts...)
	if err != nil {
		return fmt.Errorf("fabric: create engine: %w", err)
	}
	e.eng = eng

	e.apiHandler = api.New(eng, fapp.Router())

	if !e.config.DisableRoutes {
		if err := e.apiHandler.RegisterRoutes(fapp.Router()); err != nil {
			return fmt.Errorf("fabric: register routes: %w", err)
		}
	}

	return nil
}

// Start begins the fabric engine and runs migrations if enabled.
func (e *Extension) Start(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("fabric: extension not initialized")
	}

	if !e.config.DisableMigrate {
		s := e.eng.Store()
		if s != nil {
			if err := s.Migrate(ctx); err != nil {
				return fmt.Errorf("fabric: migration failed: %w", err)
			}
		}
	}

	return e.eng.Start(ctx)
}

// Stop gracefully shuts down the fabric engine.
func (e *Extension) Stop(ctx context.Context) error {
	if e.eng == nil {
		return nil
	}
	return e.eng.Stop(ctx)
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("fabric: extension not initialized")
	}
	s := e.eng.Store()
	if s == nil {
		return errors.New("fabric: no store configured")
	}
	return s.Ping(ctx)
}

// Handler returns the HTTP handler for all API routes.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// RegisterRoutes registers all fabric API routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) error {
	if e.apiHandler != nil {
		return e.apiHandler.RegisterRoutes(router)
	}
	return nil
}
