// Package discovery finds feature and step-definition files under a project root
// and reads them concurrently into parsed features and step definitions.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/chriserin/stepcov/internal/diag"
	"github.com/chriserin/stepcov/internal/logging"
	"github.com/chriserin/stepcov/internal/parser"
	"github.com/chriserin/stepcov/internal/registry"
)

var (
	ErrRootNotFound       = errors.New("root directory not found")
	ErrUnreadableArtifact = errors.New("unreadable artifact")
)

// readFile is swapped out in tests.
var readFile = os.ReadFile

// Options controls which files are discovered.
type Options struct {
	Root              string
	FeatureExtensions []string
	StepGlobs         []string
	StepDirs          []string
	StepExtensions    []string
	IgnoreDirs        []string
	Workers           int
}

// DefaultOptions returns the built-in discovery rules rooted at ".".
func DefaultOptions() Options {
	return Options{
		Root:              ".",
		FeatureExtensions: []string{".feature"},
		StepGlobs: []string{
			"*.steps.js", "*.steps.ts", "*_steps.js", "*_steps.ts",
			"*.steps.go", "*_steps.go", "*_steps.rb", "*_steps.py",
		},
		StepDirs:       []string{"step_definitions", "steps"},
		StepExtensions: []string{".js", ".ts", ".mjs", ".cjs", ".go", ".rb", ".py"},
		IgnoreDirs:     []string{".git", "node_modules", "vendor", ".stepcov"},
		Workers:        8,
	}
}

// Result holds everything read from disk. Paths are slash-separated and relative
// to the root.
type Result struct {
	Root         string
	FeatureFiles []string
	StepFiles    []string
	Features     []*parser.Feature
	Definitions  []registry.StepDefinition
	Diagnostics  []diag.Diagnostic
}

// Listing is the outcome of a walk. Entries that looked like feature or step
// files but could not be examined are reported in Diagnostics instead.
type Listing struct {
	Features    []string
	Steps       []string
	Diagnostics []diag.Diagnostic
}

// walkDir is swapped out in tests.
var walkDir = filepath.WalkDir

// Walk lists feature and step files under opts.Root in lexical order. Symlinked
// files are classified by name and kept when they resolve to a regular file;
// symlinked directories are not followed.
func Walk(opts Options) (*Listing, error) {
	info, err := os.Stat(opts.Root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", opts.Root, ErrRootNotFound)
	}

	l := &Listing{Diagnostics: []diag.Diagnostic{}}
	err = walkDir(opts.Root, func(path string, d fs.DirEntry, walkErr error) error {
		rel, err := filepath.Rel(opts.Root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if walkErr != nil {
			if d == nil || d.IsDir() {
				l.Diagnostics = append(l.Diagnostics, unreadableDiag(rel, walkErr))
				if d != nil && path != opts.Root {
					return fs.SkipDir
				}
				return nil
			}
			if opts.isFeature(rel) || opts.isStepFile(rel) {
				l.Diagnostics = append(l.Diagnostics, unreadableDiag(rel, walkErr))
			}
			return nil
		}
		if d.IsDir() {
			if path != opts.Root && slices.Contains(opts.IgnoreDirs, d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		var list *[]string
		switch {
		case opts.isFeature(rel):
			list = &l.Features
		case opts.isStepFile(rel):
			list = &l.Steps
		default:
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				l.Diagnostics = append(l.Diagnostics, unreadableDiag(rel, err))
				return nil
			}
			if !target.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}

		*list = append(*list, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", opts.Root, err)
	}
	return l, nil
}

func (o Options) isFeature(rel string) bool {
	return slices.Contains(o.FeatureExtensions, filepath.Ext(rel))
}

func (o Options) isStepFile(rel string) bool {
	base := filepath.Base(rel)
	for _, g := range o.StepGlobs {
		if ok, _ := filepath.Match(g, base); ok {
			return true
		}
	}
	if !slices.Contains(o.StepExtensions, filepath.Ext(rel)) {
		return false
	}
	dirs := strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/")
	for _, dir := range dirs {
		if slices.Contains(o.StepDirs, dir) {
			return true
		}
	}
	return false
}

type loaded struct {
	feature *parser.Feature
	defs    []registry.StepDefinition
	diag    *diag.Diagnostic
}

// Load walks opts.Root and reads every discovered file with at most opts.Workers
// concurrent reads. Unreadable or malformed files are skipped and reported as
// diagnostics. Only a missing root or a cancelled context fails the load.
func Load(ctx context.Context, opts Options) (*Result, error) {
	listing, err := Walk(opts)
	if err != nil {
		return nil, err
	}
	featurePaths, stepPaths := listing.Features, listing.Steps
	logging.Debug("discovery", "found %d feature files and %d step files under %s", len(featurePaths), len(stepPaths), opts.Root)

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	featureSlots := make([]loaded, len(featurePaths))
	stepSlots := make([]loaded, len(stepPaths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rel := range featurePaths {
		i, rel := i, rel
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			featureSlots[i] = loadFeature(opts.Root, rel)
			return nil
		})
	}
	for i, rel := range stepPaths {
		i, rel := i, rel
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stepSlots[i] = loadSteps(opts.Root, rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reading files: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reading files: %w", err)
	}

	res := &Result{
		Root:         opts.Root,
		FeatureFiles: featurePaths,
		StepFiles:    stepPaths,
		Features:     []*parser.Feature{},
		Diagnostics:  listing.Diagnostics,
	}
	for _, l := range featureSlots {
		if l.diag != nil {
			res.Diagnostics = append(res.Diagnostics, *l.diag)
			continue
		}
		res.Features = append(res.Features, l.feature)
	}
	regs := make([][]registry.StepDefinition, 0, len(stepSlots))
	for _, l := range stepSlots {
		if l.diag != nil {
			res.Diagnostics = append(res.Diagnostics, *l.diag)
		}
		regs = append(regs, l.defs)
	}
	res.Definitions = registry.Concat(regs...)
	return res, nil
}

func loadFeature(root, rel string) loaded {
	data, err := readFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return unreadable(rel, err)
	}
	f, err := parser.Parse(rel, data)
	if err != nil {
		logging.Warn("discovery", "skipping %s: no Feature: line", rel)
		d := diag.Warning(diag.CodeMalformedSpecification, rel, "no Feature: line, file skipped")
		return loaded{diag: &d}
	}
	return loaded{feature: f}
}

func loadSteps(root, rel string) loaded {
	data, err := readFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return unreadable(rel, err)
	}
	defs := registry.Parse(rel, data)
	if len(defs) == 0 {
		logging.Debug("discovery", "%s declares no step definitions", rel)
		d := diag.Warning(diag.CodeEmptyRegistry, rel, "no step definitions found")
		return loaded{diag: &d}
	}
	return loaded{defs: defs}
}

func unreadable(rel string, err error) loaded {
	d := unreadableDiag(rel, err)
	return loaded{diag: &d}
}

func unreadableDiag(rel string, err error) diag.Diagnostic {
	logging.Warn("discovery", "skipping %v", fmt.Errorf("%s: %w: %w", rel, ErrUnreadableArtifact, err))
	return diag.Warning(diag.CodeUnreadableArtifact, rel, fmt.Sprintf("%v, skipped", err))
}
