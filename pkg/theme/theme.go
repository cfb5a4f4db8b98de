// Package theme holds the visual identity of each semantic layer: label,
// fill and border colors, icon and description.
//
// Themes are configuration, not globals. A [Registry] is built once (usually
// [Default], optionally overlaid from a config file) and passed to the
// container builder.
package theme

import (
	"fmt"
	"maps"
	"slices"
)

// FallbackLayer is the layer whose theme is used for unknown indices.
const FallbackLayer = 3

// Theme describes how a layer container is presented.
type Theme struct {
	Label       string `json:"label" toml:"label" yaml:"label" validate:"required"`
	Color       string `json:"color" toml:"color" yaml:"color" validate:"required"`
	BorderColor string `json:"border_color" toml:"border_color" yaml:"border_color" validate:"required"`
	Icon        string `json:"icon,omitempty" toml:"icon" yaml:"icon"`
	Description string `json:"description,omitempty" toml:"description" yaml:"description"`
}

// Registry maps layer indices to themes. The zero value is empty; Lookup on
// an empty registry returns the zero Theme.
type Registry struct {
	themes   map[int]Theme
	fallback int
}

// NewRegistry returns a registry holding themes. Lookups for indices that
// are not present resolve to the theme at fallback.
func NewRegistry(themes map[int]Theme, fallback int) *Registry {
	r := &Registry{themes: make(map[int]Theme, len(themes)), fallback: fallback}
	maps.Copy(r.themes, themes)
	return r
}

// Lookup returns the theme for layer, or the fallback theme.
func (r *Registry) Lookup(layer int) Theme {
	if r == nil {
		return Theme{}
	}
	if t, ok := r.themes[layer]; ok {
		return t
	}
	return r.themes[r.fallback]
}

// Has reports whether layer has its own theme.
func (r *Registry) Has(layer int) bool {
	if r == nil {
		return false
	}
	_, ok := r.themes[layer]
	return ok
}

// Layers returns the configured layer indices in ascending order.
func (r *Registry) Layers() []int {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.themes))
}

// With returns a copy of r in which overrides replace the themes of the
// same layer. Fields left empty in an override keep the base value.
func (r *Registry) With(overrides map[int]Theme) *Registry {
	out := NewRegistry(r.themes, r.fallback)
	for layer, o := range overrides {
		base := out.themes[layer]
		out.themes[layer] = merge(base, o)
	}
	return out
}

// Validate checks that the fallback layer has a theme.
func (r *Registry) Validate() error {
	if !r.Has(r.fallback) {
		return fmt.Errorf("fallback layer %d has no theme", r.fallback)
	}
	return nil
}

func merge(base, o Theme) Theme {
	if o.Label != "" {
		base.Label = o.Label
	}
	if o.Color != "" {
		base.Color = o.Color
	}
	if o.BorderColor != "" {
		base.BorderColor = o.BorderColor
	}
	if o.Icon != "" {
		base.Icon = o.Icon
	}
	if o.Description != "" {
		base.Description = o.Description
	}
	return base
}
