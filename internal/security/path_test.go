package security

import (
	"path/filepath"
	"testing"
)

func TestResolveWithinBoundary_Valid(t *testing.T) {
	boundary := "/home/test/project"
	validPaths := []string{
		"/home/test/project",
		"/home/test/project/build.yaml",
		"/home/test/project/data/input.json",
		"/home/test/project/..hidden",
	}

	for _, path := range validPaths {
		if _, err := ResolveWithinBoundary(boundary, path); err != nil {
			t.Errorf("Expected path %q to be valid within boundary %q, but got error: %v", path, boundary, err)
		}
	}
}

func TestResolveWithinBoundary_PathTraversal(t *testing.T) {
	boundary := "/home/test/project"
	maliciousPaths := []string{
		"/home/test/project/../../../etc/passwd",
		"/home/test/project/../other-project",
		"/home/test",
		"/etc/passwd",
	}

	for _, path := range maliciousPaths {
		if _, err := ResolveWithinBoundary(boundary, path); err == nil {
			t.Errorf("Expected path %q to be rejected, but it was allowed", path)
		}
	}
}

func TestResolveWithinBoundary_ReturnsAbsolutePath(t *testing.T) {
	boundary := t.TempDir()
	target := filepath.Join(boundary, "nested", "..", "build.yaml")

	got, err := ResolveWithinBoundary(boundary, target)
	if err != nil {
		t.Fatalf("ResolveWithinBoundary failed: %v", err)
	}

	want := filepath.Join(boundary, "build.yaml")
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestResolveWithinBoundary_RelativePaths(t *testing.T) {
	tests := []struct {
		name        string
		targetPath  string
		shouldError bool
	}{
		{name: "current directory", targetPath: ".", shouldError: false},
		{name: "subdirectory", targetPath: "./data", shouldError: false},
		{name: "parent directory", targetPath: "..", shouldError: true},
		{name: "escape via parent", targetPath: "./data/../../x", shouldError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveWithinBoundary(".", tt.targetPath)
			if tt.shouldError && err == nil {
				t.Errorf("Expected error for %q", tt.targetPath)
			}
			if !tt.shouldError && err != nil {
				t.Errorf("Unexpected error for %q: %v", tt.targetPath, err)
			}
		})
	}
}
