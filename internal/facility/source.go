package facility

import (
	"context"
	"fmt"
	"os"

	"github.com/noah-isme/parking-fee/internal/tariff"
)

// Source produces the complete facility table in one call.
type Source interface {
	Load(ctx context.Context) (map[string]tariff.Rules, error)
	Describe() string
}

// FileSource reads facilities from a JSON file.
type FileSource struct {
	Path string
}

// Load implements Source.
func (s FileSource) Load(_ context.Context) (map[string]tariff.Rules, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read facilities file: %w", err)
	}
	rules, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return rules, nil
}

// Describe implements Source.
func (s FileSource) Describe() string {
	return "file:" + s.Path
}

// StaticSource serves a fixed table. Used by tests and the CLI.
type StaticSource map[string]tariff.Rules

// Load implements Source.
func (s StaticSource) Load(context.Context) (map[string]tariff.Rules, error) {
	out := make(map[string]tariff.Rules, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out, nil
}

// Describe implements Source.
func (StaticSource) Describe() string {
	return "static"
}
