package schema

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
)

//go:embed schemas/*.json
var embedded embed.FS

// EmbeddedFS exposes the published era documents compiled into the binary
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embedded, "schemas")
	if err != nil {
		panic(err)
	}
	return sub
}

type embeddedSource struct{}

// Embedded returns a Source reading the documents compiled into the binary
func Embedded() Source { return embeddedSource{} }

func (embeddedSource) Name() string { return "embedded" }

func (embeddedSource) Fetch(_ context.Context, file string) ([]byte, error) {
	data, err := embedded.ReadFile(path.Join("schemas", file))
	if err != nil {
		return nil, fmt.Errorf("embedded schema %s: %w", file, err)
	}
	return data, nil
}

// LoadEmbedded loads every published era from the embedded documents
func LoadEmbedded(ctx context.Context) (*Store, error) {
	return NewLoader(Embedded(), nil, nil).Load(ctx)
}
