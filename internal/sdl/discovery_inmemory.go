package sdl

import (
	"context"
	"fmt"
)

type InMemorySource struct {
	Name    string
	Content string
}

// InMemoryDiscovery is a test implementation of Discovery that stores data in memory.
type InMemoryDiscovery struct {
	sources  map[string]*SourceMetadata
	contents map[string]string
}

// NewInMemoryDiscovery creates a new InMemoryDiscovery instance.
func NewInMemoryDiscovery(srcs []InMemorySource) *InMemoryDiscovery {
	discovery := &InMemoryDiscovery{
		sources:  make(map[string]*SourceMetadata),
		contents: make(map[string]string),
	}

	for _, src := range srcs {
		discovery.sources[src.Name] = &SourceMetadata{
			Name:     src.Name,
			FilePath: src.Name + ".graphql",
		}
		discovery.contents[src.Name] = src.Content
	}
	return discovery
}

// ListMetadata implements Discovery interface.
func (d *InMemoryDiscovery) ListMetadata(ctx context.Context) ([]*SourceMetadata, error) {
	srcs := make([]*SourceMetadata, 0, len(d.sources))
	for _, src := range d.sources {
		srcs = append(srcs, src)
	}
	return srcs, nil
}

// ReadSource implements Discovery interface.
func (d *InMemoryDiscovery) ReadSource(ctx context.Context, name string) (string, error) {
	content, exists := d.contents[name]
	if !exists {
		return "", fmt.Errorf("source %q not found", name)
	}
	return content, nil
}

// Parse builds a project from a single inline SDL document.
func Parse(source string) (*Project, error) {
	disc := NewInMemoryDiscovery([]InMemorySource{{Name: "schema", Content: source}})
	return Build(context.Background(), disc)
}
