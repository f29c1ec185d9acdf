// Package templates holds the bank-specific statement renderers and the
// registry that dispatches to them by bank identifier.
package templates

import (
	"context"
	"fmt"
	"sort"

	statement "statement-pdf/internal/statement/domain"
	"statement-pdf/internal/statement/layout"
)

// Env is what a renderer draws with during one render.
type Env struct {
	Doc    *layout.Document
	Assets statement.AssetStore
	Clock  statement.Clock
}

// Renderer turns a statement into document content for one bank.
type Renderer interface {
	Render(ctx context.Context, env *Env, stmt *statement.Statement) error
}

// Entry binds a template identifier to its renderer.
type Entry struct {
	Template statement.BankTemplate
	Renderer Renderer
}

// Registry maps bank identifiers to renderers. It has no mutators and is
// safe for concurrent lookups once constructed.
type Registry struct {
	renderers map[statement.BankTemplate]Renderer
}

// NewRegistry builds a registry, rejecting duplicate or nil entries.
func NewRegistry(entries ...Entry) (*Registry, error) {
	renderers := make(map[statement.BankTemplate]Renderer, len(entries))
	for _, entry := range entries {
		if entry.Template == "" || entry.Renderer == nil {
			return nil, fmt.Errorf("templates: invalid entry for %q", entry.Template)
		}
		if _, exists := renderers[entry.Template]; exists {
			return nil, fmt.Errorf("%w: %s", statement.ErrDuplicateTemplate, entry.Template)
		}
		renderers[entry.Template] = entry.Renderer
	}
	return &Registry{renderers: renderers}, nil
}

// MustNewRegistry is NewRegistry that panics, for package initialization.
func MustNewRegistry(entries ...Entry) *Registry {
	r, err := NewRegistry(entries...)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve returns the renderer for template.
func (r *Registry) Resolve(template statement.BankTemplate) (Renderer, error) {
	if r != nil {
		if renderer, ok := r.renderers[template]; ok {
			return renderer, nil
		}
	}
	return nil, &statement.UnsupportedTemplateError{Template: template}
}

// Templates lists the registered identifiers in sorted order.
func (r *Registry) Templates() []statement.BankTemplate {
	if r == nil {
		return nil
	}
	out := make([]statement.BankTemplate, 0, len(r.renderers))
	for template := range r.renderers {
		out = append(out, template)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var defaultRegistry = MustNewRegistry(
	Entry{Template: statement.TemplateSBI, Renderer: SBI{}},
	Entry{Template: statement.TemplateHDFC, Renderer: HDFC{}},
	Entry{Template: statement.TemplateAXIS, Renderer: Axis{}},
)

// Default returns the process-wide registry, populated at package init.
func Default() *Registry { return defaultRegistry }
