// Package bundle owns the renderer bundle variants and the process-wide
// resource cache that loads their payloads exactly once.
package bundle

import "fmt"

// Variant selects a build of the in-page renderer, trading payload size
// against feature completeness.
type Variant int

const (
	// VariantMinimal is plain Markdown only.
	VariantMinimal Variant = iota
	// VariantBalanced adds syntax highlighting for fenced code blocks.
	VariantBalanced
	// VariantFull adds math and diagram rendering plus a large companion
	// stylesheet that is injected after first paint.
	VariantFull
)

// Capabilities are the compile-time feature flags of a variant.
type Capabilities struct {
	SyntaxHighlighting bool
	Math               bool
	Diagrams           bool
}

// Spec describes one variant.
type Spec struct {
	ID                 string
	Label              string
	ApproxPayloadBytes int
	Caps               Capabilities
}

var variantSpecs = map[Variant]Spec{
	VariantMinimal: {
		ID:                 "minimal",
		Label:              "Minimal",
		ApproxPayloadBytes: 48 << 10,
	},
	VariantBalanced: {
		ID:                 "balanced",
		Label:              "Balanced",
		ApproxPayloadBytes: 320 << 10,
		Caps:               Capabilities{SyntaxHighlighting: true},
	},
	VariantFull: {
		ID:                 "full",
		Label:              "Full",
		ApproxPayloadBytes: 1536 << 10,
		Caps:               Capabilities{SyntaxHighlighting: true, Math: true, Diagrams: true},
	},
}

// Variants lists all variants in ascending payload size.
func Variants() []Variant {
	return []Variant{VariantMinimal, VariantBalanced, VariantFull}
}

// Spec returns the variant's compile-time description.
func (v Variant) Spec() Spec {
	return variantSpecs[v]
}

// String returns the variant identifier.
func (v Variant) String() string {
	if spec, ok := variantSpecs[v]; ok {
		return spec.ID
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// ParseVariant resolves an identifier to a Variant.
func ParseVariant(id string) (Variant, error) {
	for v, spec := range variantSpecs {
		if spec.ID == id {
			return v, nil
		}
	}
	return VariantMinimal, fmt.Errorf("bundle: unknown variant %q", id)
}

// fallbackOrder returns the variants to attempt when loading v, preferred
// first, then smaller variants in descending size order.
func fallbackOrder(v Variant) []Variant {
	switch v {
	case VariantFull:
		return []Variant{VariantFull, VariantBalanced, VariantMinimal}
	case VariantBalanced:
		return []Variant{VariantBalanced, VariantMinimal}
	default:
		return []Variant{VariantMinimal}
	}
}
