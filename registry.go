package restcore

import "fmt"

// MethodDescriptor describes one invokable operation of a resource: its
// logical name, the request verb it binds to, and the path template it is
// reachable at (gorilla/mux syntax, e.g. "/users/{id}").
type MethodDescriptor struct {
	Name     string
	Verb     string
	Template string

	// Unstructured marks a method that exchanges raw bytes instead of
	// structured entities. Requests with a body are rejected before
	// decoding on such routes.
	Unstructured bool
}

// ResourceDescriptor is a named collection of RPC-style operations.
type ResourceDescriptor struct {
	Name    string
	Methods []*MethodDescriptor
}

// Registry holds the resource descriptors a server exposes. It is populated
// once before the server is constructed and read-only afterwards, which is
// what makes the shared routing state safe for concurrent requests.
type Registry struct {
	order     []string
	resources map[string]*ResourceDescriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{resources: make(map[string]*ResourceDescriptor)}
}

// Add registers a resource. Registration order is preserved for routing and
// documentation. Adding a duplicate name is an error.
func (g *Registry) Add(r *ResourceDescriptor) error {
	if r.Name == "" {
		return fmt.Errorf("resource name must not be empty")
	}
	if _, ok := g.resources[r.Name]; ok {
		return fmt.Errorf("resource %q already registered", r.Name)
	}
	g.resources[r.Name] = r
	g.order = append(g.order, r.Name)
	return nil
}

// Resources returns the registered resources in registration order.
func (g *Registry) Resources() []*ResourceDescriptor {
	out := make([]*ResourceDescriptor, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.resources[name])
	}
	return out
}

// Lookup returns the resource registered under name.
func (g *Registry) Lookup(name string) (*ResourceDescriptor, bool) {
	r, ok := g.resources[name]
	return r, ok
}
