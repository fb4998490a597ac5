package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/streamview/internal/bridge"
	"github.com/bnema/streamview/internal/bundle"
	"github.com/bnema/streamview/internal/hostview"
)

var (
	benchVariant string
	benchRuns    int

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Compare warm-pool and cold attach latency",
		Long: `Measure how long it takes a view to become ready when attached from
the warm pool versus created on demand, over several runs.`,
		RunE: runBench,
	}
)

func init() {
	benchCmd.Flags().StringVarP(&benchVariant, "variant", "v", "", "bundle variant to benchmark (default from config)")
	benchCmd.Flags().IntVarP(&benchRuns, "runs", "n", 5, "attach cycles per mode")
	rootCmd.AddCommand(benchCmd)
}

func runBench(_ *cobra.Command, _ []string) error {
	variant, err := resolveVariant(benchVariant)
	if err != nil {
		return err
	}
	if benchRuns < 1 {
		return fmt.Errorf("runs must be at least 1")
	}

	ctx := app.Context()
	st := newStack(app)
	defer st.close(app)

	cold, err := benchCold(ctx, st, variant)
	if err != nil {
		return err
	}

	if err := st.pool.WarmUp(ctx, variant); err != nil {
		return fmt.Errorf("warm up pool: %w", err)
	}
	warm, err := benchWarm(ctx, st, variant)
	if err != nil {
		return err
	}

	theme := app.Theme
	fmt.Println(theme.Title.Render("attach latency, " + variant.String() + " variant"))
	printBenchRow("cold", cold)
	printBenchRow("warm", warm)

	if avg(warm) < avg(cold) {
		speedup := float64(avg(cold)) / float64(avg(warm))
		fmt.Println(theme.SuccessStyle.Render(fmt.Sprintf("warm pool is %.1fx faster", speedup)))
	}
	return nil
}

// benchCold measures creation plus readiness without touching the pool
// queue: each run builds a fresh instance and destroys it afterwards so no
// run warms the next.
func benchCold(ctx context.Context, st *stack, variant bundle.Variant) ([]time.Duration, error) {
	durations := make([]time.Duration, 0, benchRuns)
	for i := 0; i < benchRuns; i++ {
		start := time.Now()

		inst, err := st.pool.Create(ctx, variant)
		if err != nil {
			return nil, fmt.Errorf("cold create: %w", err)
		}

		ready := make(chan struct{})
		session := bridge.NewSession(ctx, st.loop, inst.Engine(), inst.Entry(), bridge.Callbacks{
			OnReady: func() { close(ready) },
		})
		session.Attach(ctx)

		select {
		case <-ready:
			durations = append(durations, time.Since(start))
		case <-time.After(10 * time.Second):
			session.Detach(ctx)
			inst.Engine().Destroy()
			return nil, fmt.Errorf("cold attach %d never became ready", i+1)
		}

		session.Detach(ctx)
		inst.Engine().Destroy()
	}
	return durations, nil
}

func benchWarm(ctx context.Context, st *stack, variant bundle.Variant) ([]time.Duration, error) {
	durations := make([]time.Duration, 0, benchRuns)
	for i := 0; i < benchRuns; i++ {
		start := time.Now()

		ready := make(chan struct{})
		view, err := hostview.Attach(ctx, st.loop, st.pool, hostview.Options{
			Variant: variant,
			OnReady: func() { close(ready) },
		})
		if err != nil {
			return nil, fmt.Errorf("warm attach: %w", err)
		}

		select {
		case <-ready:
			durations = append(durations, time.Since(start))
		case <-time.After(10 * time.Second):
			view.Detach(ctx)
			return nil, fmt.Errorf("warm attach %d never became ready", i+1)
		}

		view.Detach(ctx)
	}
	return durations, nil
}

func printBenchRow(label string, durations []time.Duration) {
	theme := app.Theme
	lo, hi := durations[0], durations[0]
	for _, d := range durations[1:] {
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	fmt.Printf("%s %s %s\n",
		theme.Subtitle.Render(fmt.Sprintf("%-5s", label)),
		theme.Value.Render(fmt.Sprintf("avg %8s", avg(durations).Round(time.Microsecond))),
		theme.Subtle.Render(fmt.Sprintf("min %s, max %s", lo.Round(time.Microsecond), hi.Round(time.Microsecond))),
	)
}

func avg(durations []time.Duration) time.Duration {
	var total time.Duration
	for _, d := range durations {
		total += d
	}
	return total / time.Duration(len(durations))
}
