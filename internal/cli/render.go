package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/bnema/streamview/internal/bundle"
	"github.com/bnema/streamview/internal/hostview"
	"github.com/bnema/streamview/internal/mainloop"
)

var (
	renderVariant  string
	renderAnimate  bool
	renderNoScroll bool
	renderWatch    bool
	renderTimeout  time.Duration

	renderCmd = &cobra.Command{
		Use:   "render [file]",
		Short: "Render a Markdown file through the pooled pipeline",
		Long: `Render a Markdown file end to end: warm the instance pool, attach a
view, deliver the content over the bridge, wait for the height to settle
and print the settled height plus the rendered page body.

Reads from stdin when the file is "-" or omitted.

With --watch the command keeps running and re-delivers the file on every
change, printing the new settled height each time.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRender,
	}
)

func init() {
	renderCmd.Flags().StringVarP(&renderVariant, "variant", "v", "", "bundle variant: minimal, balanced or full (default from config)")
	renderCmd.Flags().BoolVar(&renderAnimate, "animate", false, "mark updates as streaming animations")
	renderCmd.Flags().BoolVar(&renderNoScroll, "no-scroll", false, "embedded mode: hide overflow and report height externally")
	renderCmd.Flags().BoolVarP(&renderWatch, "watch", "w", false, "re-render on file changes until interrupted")
	renderCmd.Flags().DurationVar(&renderTimeout, "timeout", 10*time.Second, "budget for readiness and height settling")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	path := "-"
	if len(args) > 0 {
		path = args[0]
	}
	if renderWatch && path == "-" {
		return fmt.Errorf("--watch needs a file path, not stdin")
	}

	variant, err := resolveVariant(renderVariant)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("animate") {
		app.Config.Render.Animate = renderAnimate
	}
	if renderNoScroll {
		app.Config.Render.ScrollEnabled = false
	}

	content, err := readContent(path)
	if err != nil {
		return err
	}

	ctx := app.Context()
	st := newStack(app)
	defer st.close(app)

	if err := st.pool.WarmUp(ctx, variant); err != nil {
		return fmt.Errorf("warm up pool: %w", err)
	}

	ready := make(chan struct{})
	view, err := hostview.Attach(ctx, st.loop, st.pool, hostview.Options{
		Variant: variant,
		OnReady: func() { close(ready) },
		OnLinkTap: func(uri string) {
			fmt.Fprintln(os.Stderr, app.Theme.Subtle.Render("link intercepted: "+uri))
		},
	})
	if err != nil {
		return err
	}
	defer view.Detach(ctx)

	select {
	case <-ready:
	case <-time.After(renderTimeout):
		return fmt.Errorf("view not ready after %s", renderTimeout)
	}

	view.SetContent(ctx, content, app.Config.Render.Animate)
	height, err := awaitSettledHeight(view, renderTimeout)
	if err != nil {
		return err
	}

	printRenderResult(path, view, height)
	fmt.Println(pageBody(st.loop, view))

	if renderWatch {
		return watchAndRedeliver(ctx, path, view)
	}
	return nil
}

func resolveVariant(flag string) (bundle.Variant, error) {
	id := flag
	if id == "" {
		id = app.Config.DefaultVariant
	}
	return bundle.ParseVariant(id)
}

func readContent(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// awaitSettledHeight polls the view until the reported height stops moving.
// The bridge already runs its own settle loop; this only waits for the
// resulting reports to quiesce on the host side.
func awaitSettledHeight(view *hostview.View, budget time.Duration) (float64, error) {
	const interval = 30 * time.Millisecond
	deadline := time.Now().Add(budget)

	var last float64
	stable := 0
	for time.Now().Before(deadline) {
		time.Sleep(interval)
		h := view.ContentHeight()
		if h > 0 && h == last {
			stable++
			if stable >= 3 {
				return h, nil
			}
		} else {
			stable = 0
		}
		last = h
	}
	return last, fmt.Errorf("height did not settle within %s", budget)
}

// pageBody reads the rendered body markup off the dispatcher loop. Only the
// headless backend exposes it; other backends yield an empty string.
func pageBody(loop mainloop.Dispatcher, view *hostview.View) string {
	type bodyReader interface{ BodyHTML() string }
	reader, ok := view.Engine().(bodyReader)
	if !ok {
		return ""
	}
	done := make(chan string, 1)
	loop.Post(func() { done <- reader.BodyHTML() })
	return <-done
}

func printRenderResult(path string, view *hostview.View, height float64) {
	theme := app.Theme
	fmt.Fprintln(os.Stderr, theme.Title.Render("streamview render"))
	fmt.Fprintf(os.Stderr, "%s %s\n", theme.Key.Render("source:"), theme.Value.Render(path))
	fmt.Fprintf(os.Stderr, "%s %s\n", theme.Key.Render("variant:"), theme.Value.Render(view.Variant().String()))
	fmt.Fprintf(os.Stderr, "%s %s\n", theme.Key.Render("height:"), theme.Value.Render(fmt.Sprintf("%.1fpx", height)))
}

// watchAndRedeliver re-reads the file and pushes it through the existing
// session whenever it changes. Watches the parent directory because editors
// replace files instead of writing them in place.
func watchAndRedeliver(ctx context.Context, path string, view *hostview.View) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	fmt.Fprintln(os.Stderr, app.Theme.Subtle.Render("watching "+path+" (ctrl-c to stop)"))

	var debounce *time.Timer
	redeliver := make(chan struct{}, 1)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(50*time.Millisecond, func() {
				select {
				case redeliver <- struct{}{}:
				default:
				}
			})
		case <-redeliver:
			content, err := readContent(path)
			if err != nil {
				fmt.Fprintln(os.Stderr, app.Theme.ErrorStyle.Render(err.Error()))
				continue
			}
			view.SetContent(ctx, content, app.Config.Render.Animate)
			height, err := awaitSettledHeight(view, renderTimeout)
			if err != nil {
				fmt.Fprintln(os.Stderr, app.Theme.WarningStyle.Render(err.Error()))
				continue
			}
			fmt.Fprintf(os.Stderr, "%s %s\n", app.Theme.Key.Render("height:"), app.Theme.Value.Render(fmt.Sprintf("%.1fpx", height)))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, app.Theme.ErrorStyle.Render("watch: "+err.Error()))
		case <-sig:
			return nil
		}
	}
}
