package orchestrator

import (
	"context"
	"fmt"

	"github.com/Mithul-Joseph/mcp-project/chat"
)

// Session is one connected tool provider. Implemented by mcpsession.Session;
// faked in tests.
type Session interface {
	ListTools(ctx context.Context) ([]chat.ToolDescriptor, error)
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
	Close() error
}

// Registry maps each advertised tool name to the provider session that owns it
// and keeps the catalog shown to the model in registration order.
//
// Mutated only from Register during connection setup, which runs sequentially
// before any query is processed; reads after that need no locking.
type Registry struct {
	providers int
	owners    map[string]Session
	catalog   []chat.ToolDescriptor
}

func NewRegistry() *Registry {
	return &Registry{owners: make(map[string]Session)}
}

// Register enumerates the session's tools and records ownership for every name
// not already taken. Duplicate names across providers are not an error: the
// first-registered provider keeps the name and later descriptors are shadowed.
//
// An enumeration failure leaves the registry unchanged; the caller reports it
// and continues with the remaining providers.
func (r *Registry) Register(ctx context.Context, providerName string, s Session) error {
	descs, err := s.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("list tools from %q: %w", providerName, err)
	}
	r.providers++
	for _, d := range descs {
		if _, taken := r.owners[d.Name]; taken {
			continue // first registration wins
		}
		r.owners[d.Name] = s
		r.catalog = append(r.catalog, d)
	}
	return nil
}

// Resolve returns the session owning the named tool.
func (r *Registry) Resolve(name string) (Session, bool) {
	s, ok := r.owners[name]
	return s, ok
}

// Advertised reports whether the name appears in the catalog.
func (r *Registry) Advertised(name string) bool {
	for _, d := range r.catalog {
		if d.Name == name {
			return true
		}
	}
	return false
}

// Catalog returns the descriptors advertised to the model, in registration
// order. Nil when no provider contributed any tools, so the model client can
// omit tool-use framing entirely.
func (r *Registry) Catalog() []chat.ToolDescriptor {
	return r.catalog
}

// ProviderCount returns the number of successfully registered providers,
// including providers that advertised zero tools.
func (r *Registry) ProviderCount() int {
	return r.providers
}
