package symbolgraph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ReadFile decodes the graph stored at path.
func ReadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read symbol graph: %w", err)
	}
	g := New()
	if err := json.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("decode symbol graph %s: %w", filepath.Base(path), err)
	}
	return g, nil
}

// WriteFile encodes g to path, replacing any existing file.
func WriteFile(path string, g *Graph) error {
	data, err := marshal(g)
	if err != nil {
		return fmt.Errorf("encode symbol graph %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write symbol graph: %w", err)
	}
	return nil
}
