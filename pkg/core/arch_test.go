package core_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulePath = "github.com/leapstack-labs/leapmetrics"

// packageImports returns the imports of every non-test file in dir, keyed by file name.
func packageImports(t *testing.T, dir string) map[string][]string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}

	fset := token.NewFileSet()
	out := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") || strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", path, err)
			continue
		}
		for _, imp := range f.Imports {
			out[entry.Name()] = append(out[entry.Name()], strings.Trim(imp.Path.Value, `"`))
		}
	}
	return out
}

// TestLayering verifies the vocabulary packages import only stdlib and the
// layers beneath them. pkg/core imports nothing outside stdlib; pkg/spec adds
// pkg/core.
func TestLayering(t *testing.T) {
	tests := []struct {
		name    string
		dir     string
		allowed map[string]bool
	}{
		{
			name:    "core",
			dir:     ".",
			allowed: map[string]bool{},
		},
		{
			name:    "spec",
			dir:     filepath.Join("..", "spec"),
			allowed: map[string]bool{modulePath + "/pkg/core": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for file, imports := range packageImports(t, tt.dir) {
				for _, importPath := range imports {
					// Allow stdlib (no dots in path)
					if !strings.Contains(importPath, ".") {
						continue
					}
					if !tt.allowed[importPath] {
						t.Errorf("%s imports forbidden package: %s", file, importPath)
					}
				}
			}
		})
	}
}

// TestCoreDoesNotImportInternal verifies pkg/core doesn't import any internal packages.
func TestCoreDoesNotImportInternal(t *testing.T) {
	for file, imports := range packageImports(t, ".") {
		for _, importPath := range imports {
			if strings.Contains(importPath, "/internal/") {
				t.Errorf("%s imports internal package: %s (core must not import internal packages)", file, importPath)
			}
		}
	}
}
