package cli

import (
	"github.com/bnema/streamview/internal/bundle"
	"github.com/bnema/streamview/internal/config"
	"github.com/bnema/streamview/internal/mainloop"
	"github.com/bnema/streamview/internal/pool"
	"github.com/bnema/streamview/internal/renderer"
	"github.com/bnema/streamview/internal/template"
	"github.com/bnema/streamview/pkg/webview"
)

// stack is the headless rendering pipeline the CLI commands run on: one
// dispatcher loop, the bundle cache, the engine factory and the warm pool.
type stack struct {
	loop  *mainloop.Loop
	cache *bundle.Cache
	pool  *pool.Pool
}

// newStack assembles the pipeline from the resolved configuration.
func newStack(app *App) *stack {
	loop := mainloop.New()
	go loop.Run()

	cache := bundle.NewCache(bundleLoader(app.Config),
		bundle.WithBootstrapBuilder(func(entry bundle.Entry) string {
			return template.Build(entry, templateOptions(app.Config))
		}),
	)

	factory := webview.NewHeadlessFactory(loop, webview.HeadlessOptions{
		Render:    renderer.Safe(renderer.NewGoldmark()),
		Highlight: renderer.Highlight,
		Logger:    app.Logger,
	})

	poolCfg := pool.Config{
		TargetSize:     app.Config.Pool.TargetSize,
		VariantTargets: make(map[bundle.Variant]int, len(app.Config.Pool.VariantTargets)),
	}
	for id, target := range app.Config.Pool.VariantTargets {
		if v, err := bundle.ParseVariant(id); err == nil {
			poolCfg.VariantTargets[v] = target
		}
	}

	return &stack{
		loop:  loop,
		cache: cache,
		pool:  pool.New(loop, factory, cache, poolCfg),
	}
}

// bundleLoader prefers on-disk artifacts from the configured bundle
// directory and falls back to the embedded copies per artifact.
func bundleLoader(cfg *config.Config) bundle.Loader {
	if cfg.Bundles.Dir == "" {
		return bundle.EmbeddedLoader{}
	}
	return bundle.OverlayLoader{
		Primary: bundle.FileLoader{Dir: cfg.Bundles.Dir},
		Base:    bundle.EmbeddedLoader{},
	}
}

func templateOptions(cfg *config.Config) template.Options {
	return template.Options{
		ScrollEnabled: cfg.Render.ScrollEnabled,
		ColorScheme:   template.ColorScheme(cfg.Appearance.ColorScheme),
	}
}

func (s *stack) close(app *App) {
	s.pool.Close(app.Context())
	s.loop.Stop()
}
