package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolveWithinBoundary returns the absolute form of targetPath after checking
// it is within or equal to boundaryPath, so that a path like
// "project/../../etc/passwd" cannot leave the project directory.
// Relative targets are resolved against the working directory, not against
// the boundary.
func ResolveWithinBoundary(boundaryPath, targetPath string) (string, error) {
	absBoundary, err := filepath.Abs(boundaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve boundary path %q: %w", boundaryPath, err)
	}

	absTarget, err := filepath.Abs(targetPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve target path %q: %w", targetPath, err)
	}

	rel, err := filepath.Rel(absBoundary, absTarget)
	if err != nil {
		return "", fmt.Errorf("invalid path relationship between %q and %q: %w", absBoundary, absTarget, err)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected: %q escapes boundary %q", targetPath, boundaryPath)
	}

	return absTarget, nil
}
