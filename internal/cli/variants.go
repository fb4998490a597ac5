package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/streamview/internal/bundle"
)

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List bundle variants with capabilities and availability",
	RunE:  runVariants,
}

func init() {
	rootCmd.AddCommand(variantsCmd)
}

func runVariants(_ *cobra.Command, _ []string) error {
	theme := app.Theme
	ctx := app.Context()
	cache := bundle.NewCache(bundleLoader(app.Config))

	fmt.Println(theme.Title.Render("bundle variants"))
	for _, v := range bundle.Variants() {
		spec := v.Spec()

		availability := theme.Badge.Render("available")
		if !cache.Available(ctx, v) {
			availability = theme.BadgeMuted.Render("missing")
		}
		marker := " "
		if spec.ID == app.Config.DefaultVariant {
			marker = theme.Highlight.Render("*")
		}

		fmt.Printf("%s %s %s %s\n",
			marker,
			theme.Subtitle.Render(fmt.Sprintf("%-9s", spec.ID)),
			availability,
			theme.Subtle.Render(approxSize(spec.ApproxPayloadBytes)),
		)
		fmt.Printf("   %s\n", theme.Normal.Render(capsSummary(spec.Caps)))
	}
	fmt.Println(theme.Subtle.Render("* default variant"))
	return nil
}

func capsSummary(caps bundle.Capabilities) string {
	parts := []string{"markdown"}
	if caps.SyntaxHighlighting {
		parts = append(parts, "syntax highlighting")
	}
	if caps.Math {
		parts = append(parts, "math")
	}
	if caps.Diagrams {
		parts = append(parts, "diagrams")
	}
	return strings.Join(parts, ", ")
}

func approxSize(bytes int) string {
	if bytes >= 1<<20 {
		return fmt.Sprintf("~%.1f MiB", float64(bytes)/(1<<20))
	}
	return fmt.Sprintf("~%d KiB", bytes>>10)
}
