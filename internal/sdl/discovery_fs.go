package sdl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSystemDiscovery implements Discovery for schema files on disk.
type FileSystemDiscovery struct {
	srcFilePaths map[string]string
	srcMetas     map[string]*SourceMetadata
}

// NewFileSystemDiscovery walks rootDir and collects every .graphql file as a source.
func NewFileSystemDiscovery(ctx context.Context, rootDir string) (*FileSystemDiscovery, error) {
	discovery := &FileSystemDiscovery{
		srcFilePaths: make(map[string]string),
		srcMetas:     make(map[string]*SourceMetadata),
	}

	err := filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(d.Name()) != ".graphql" && filepath.Ext(d.Name()) != ".graphqls" {
			return nil
		}

		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %q: %w", path, err)
		}

		srcName := strings.TrimSuffix(relPath, filepath.Ext(relPath))

		discovery.srcFilePaths[srcName] = path
		discovery.srcMetas[srcName] = &SourceMetadata{
			Name:     srcName,
			FilePath: relPath,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk root directory %q: %w", rootDir, err)
	}
	return discovery, nil
}

// ListMetadata returns the sources discovered on the filesystem.
func (d *FileSystemDiscovery) ListMetadata(ctx context.Context) ([]*SourceMetadata, error) {
	srcs := make([]*SourceMetadata, 0, len(d.srcMetas))
	for _, src := range d.srcMetas {
		srcs = append(srcs, src)
	}
	return srcs, nil
}

// ReadSource reads the SDL content for a given source.
func (d *FileSystemDiscovery) ReadSource(ctx context.Context, name string) (string, error) {
	fp, ok := d.srcFilePaths[name]
	if !ok {
		return "", fmt.Errorf("source %q not found", name)
	}
	content, err := os.ReadFile(fp)
	if err != nil {
		return "", fmt.Errorf("failed to read source %q: %w", name, err)
	}
	return string(content), nil
}

// Load is a convenience function that discovers schema files under rootDir and builds the project.
func Load(rootDir string) (*Project, error) {
	discovery, err := NewFileSystemDiscovery(context.Background(), rootDir)
	if err != nil {
		return nil, err
	}
	return Build(context.Background(), discovery)
}
