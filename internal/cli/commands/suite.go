package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/leapstack-labs/leapmetrics/internal/resolver"
	"gopkg.in/yaml.v3"
)

// SuiteQuery is a named query in a query suite file.
type SuiteQuery struct {
	Name           string `yaml:"name"`
	resolver.Query `yaml:",inline"`
}

// Suite is a list of queries checked together.
type Suite struct {
	Queries []SuiteQuery `yaml:"queries"`
}

// LoadSuite reads a query suite YAML file. Unknown fields are rejected.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query suite: %w", err)
	}
	return ParseSuite(data)
}

// ParseSuite decodes a query suite.
func ParseSuite(data []byte) (*Suite, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Suite
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse query suite: %w", err)
	}

	seen := make(map[string]bool, len(s.Queries))
	for i, q := range s.Queries {
		if q.Name == "" {
			return nil, fmt.Errorf("query %d: name is required", i+1)
		}
		if seen[q.Name] {
			return nil, fmt.Errorf("query %q is defined more than once", q.Name)
		}
		seen[q.Name] = true
	}
	return &s, nil
}
