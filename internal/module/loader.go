// Package module implements Datascript's module loader: path resolution,
// a memoized parse cache, in-progress cycle detection, and the context stack
// used to resolve relative imports (spec.md §4.4). The cache of evaluated
// module namespaces lives in the evaluator, not here.
//
// The loader owns caches and path resolution only; evaluating an import
// (building the module environment, running the program, assembling the
// namespace Value) is the evaluator's job — see internal/eval/module.go —
// to avoid a loader<->evaluator import cycle, mirroring how go-dws splits
// internal/units (registry) from the interpreter's unit-loading methods.
package module

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dstanley-scripts/datascript/internal/ast"
	"github.com/dstanley-scripts/datascript/internal/parser"
)

// DefaultExtension is appended to specifiers with no extension.
const DefaultExtension = ".ds"

// Loader tracks the process-wide module state described in spec.md §3's
// "Module record" and the algorithm in §4.4.
type Loader struct {
	// ReadFile abstracts file access for testability; defaults to
	// os.ReadFile wrapped to return a string.
	ReadFile func(path string) (string, error)

	root         string // process working directory at the root
	programs     map[string]*ast.Program
	inProgress   map[string]bool
	contextStack []string // directories of modules currently being evaluated
}

// New creates a Loader rooted at root (the process working directory).
func New(root string) *Loader {
	return &Loader{
		root:       root,
		programs:   make(map[string]*ast.Program),
		inProgress: make(map[string]bool),
		ReadFile: func(p string) (string, error) {
			b, err := os.ReadFile(p)
			return string(b), err
		},
	}
}

// currentDir returns the directory relative imports resolve against: the
// innermost module on the context stack, or the process root at the top
// level.
func (l *Loader) currentDir() string {
	if len(l.contextStack) == 0 {
		return l.root
	}
	return l.contextStack[len(l.contextStack)-1]
}

// ResolveImportPath implements spec.md §4.4's resolution algorithm.
func (l *Loader) ResolveImportPath(specifier string) (string, error) {
	var resolved string
	if path.IsAbs(specifier) || filepath.IsAbs(specifier) {
		resolved = specifier
	} else {
		resolved = filepath.Join(l.currentDir(), specifier)
	}
	if filepath.Ext(resolved) == "" {
		resolved += DefaultExtension
	}
	return filepath.Clean(resolved), nil
}

// GetProgram returns the memoized parse of path, parsing (and caching) it on
// first access.
func (l *Loader) GetProgram(path string) (*ast.Program, error) {
	if prog, ok := l.programs[path]; ok {
		return prog, nil
	}
	src, err := l.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read module %q: %w", path, err)
	}
	prog, err := parser.Parse(src, path)
	if err != nil {
		return nil, err
	}
	l.programs[path] = prog
	return prog, nil
}

// Enter marks path as in-progress and pushes its directory onto the context
// stack. Re-entering a path already in progress is a circular import.
func (l *Loader) Enter(path string) error {
	if l.inProgress[path] {
		return fmt.Errorf("circular import: %q is already being loaded", path)
	}
	l.inProgress[path] = true
	l.contextStack = append(l.contextStack, filepath.Dir(path))
	return nil
}

// Leave pops the context stack and clears path's in-progress flag. Call it
// on both the success and failure paths of evaluating an import.
func (l *Loader) Leave(path string) {
	delete(l.inProgress, path)
	if n := len(l.contextStack); n > 0 {
		l.contextStack = l.contextStack[:n-1]
	}
}

// LoadedPaths returns every module path parsed so far, in no particular
// order — callers that want a stable display order (e.g. `datascript run
// --show-modules`) sort the result themselves.
func (l *Loader) LoadedPaths() []string {
	paths := make([]string, 0, len(l.programs))
	for p := range l.programs {
		paths = append(paths, p)
	}
	return paths
}

// PathLabel renders path relative to the loader root for diagnostics, or
// the raw path if it isn't under root.
func (l *Loader) PathLabel(p string) string {
	if rel, err := filepath.Rel(l.root, p); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return p
}
