package operations

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	domain "github.com/bryanwahyu/bearer-mcp/internal/domain/bearer"
)

// DefaultSandboxRoot is where container deployments mount the code under scan.
const DefaultSandboxRoot = "/workspace"

// Resolver implements domain.PathResolver. It is immutable after construction
// and safe for concurrent use.
type Resolver struct {
	sandboxRoot string
	workDir     string
}

// NewResolver builds a resolver. An empty workDir falls back to the process
// working directory, captured once here.
func NewResolver(sandboxRoot, workDir string) *Resolver {
	if workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			workDir = wd
		}
	}
	return &Resolver{sandboxRoot: sandboxRoot, workDir: workDir}
}

// WorkDir returns the configured working directory.
func (r *Resolver) WorkDir() string { return r.workDir }

// Resolve picks the scan target. Order, first match wins:
//  1. explicit absolute path
//  2. explicit relative path under the sandbox root, then under the working directory
//  3. no path: the sandbox root if mounted, else the working directory
func (r *Resolver) Resolve(explicit string) (string, error) {
	if explicit == "" {
		if r.sandboxRoot != "" && exists(r.sandboxRoot) {
			return r.sandboxRoot, nil
		}
		return r.workDir, nil
	}

	candidate := explicit
	if !filepath.IsAbs(explicit) {
		if r.sandboxRoot != "" {
			if p := filepath.Join(r.sandboxRoot, explicit); exists(p) {
				return p, nil
			}
		}
		candidate = filepath.Join(r.workDir, explicit)
	}

	if !exists(candidate) {
		return "", &domain.NotFoundError{Path: candidate}
	}
	return candidate, nil
}

// Validate checks that p is a well-formed path and makes it absolute relative to
// the working directory. No sandbox fallback is applied.
func (r *Resolver) Validate(p string, mustExist bool) (string, error) {
	if strings.TrimSpace(p) == "" || strings.ContainsRune(p, 0) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidPath, p)
	}
	if !filepath.IsAbs(p) && r.workDir != "" {
		p = filepath.Join(r.workDir, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", domain.ErrInvalidPath, p, err)
	}
	if mustExist {
		if _, err := os.Stat(abs); err != nil {
			return "", &domain.NotFoundError{Path: abs, Inaccessible: true}
		}
	}
	return abs, nil
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
