package deck

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML encoded keyword stream. Every keyword is stamped
// with filename and the line it was declared on.
func Parse(data []byte, filename string) (*Deck, error) {
	d := &Deck{}

	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("failed to decode deck %s: %w", filename, err)
	}

	if filename != "" {
		d.Filename = filename
	}

	for i := range d.Keywords {
		d.Keywords[i].Location.Filename = d.Filename
	}

	return d, nil
}

// LoadFile reads and decodes the deck at path.
func LoadFile(path string) (*Deck, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided deck path
	if err != nil {
		return nil, fmt.Errorf("failed to read deck: %w", err)
	}

	return Parse(data, path)
}
