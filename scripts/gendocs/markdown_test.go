package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownWriter_Table(t *testing.T) {
	w := NewMarkdownWriter()
	w.Table([]string{"Name", "Description"}, [][]string{{"a|b", "desc"}})

	assert.Equal(t, "| Name | Description |\n| --- | --- |\n| a\\|b | desc |\n\n", string(w.Bytes()))
}

func TestCleanExample(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no indent", "leapmetrics check", "leapmetrics check"},
		{"common indent", "  # comment\n  leapmetrics check\n\n  leapmetrics watch", "# comment\nleapmetrics check\n\nleapmetrics watch"},
		{"nested indent", "  a \\\n    b", "a \\\n  b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanExample(tt.input))
		})
	}
}

func TestConfigSchema_EnvVars(t *testing.T) {
	for _, f := range getConfigSchema() {
		if f.Flag == "" {
			assert.Empty(t, f.EnvVar, f.Name)
			continue
		}
		assert.Contains(t, f.EnvVar, "LEAPMETRICS_", f.Name)
	}
}
