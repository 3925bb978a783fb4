package sdl

import (
	"context"
)

type SourceMetadata struct {
	Name     string
	FilePath string
}

type Discovery interface {
	ListMetadata(ctx context.Context) ([]*SourceMetadata, error)
	ReadSource(ctx context.Context, name string) (string, error)
}
