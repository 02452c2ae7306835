package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/muesli/termenv"

	"github.com/aretw0/sieve"
	"github.com/aretw0/sieve/pkg/schema"
)

// Options contains all the configuration for the validate command.
type Options struct {
	// Paths are the files or directories to validate. A directory is
	// searched recursively for .yaml/.yml data files.
	Paths []string

	// SchemaNames are the schema file names to resolve for each data
	// file. A name that is an existing file path is used as-is;
	// otherwise the data file's directory and its parents are searched.
	SchemaNames []string

	// Excludes are regular expressions; data files whose path matches
	// any of them are skipped.
	Excludes []string

	Strict  bool
	Workers int
}

// Runner validates batches of data files against discovered schemas.
type Runner struct {
	opts     Options
	log      *slog.Logger
	out      io.Writer
	excludes []*regexp.Regexp

	mu      sync.Mutex
	schemas map[string]*schema.Schema
}

// NewRunner builds a Runner from options. Exclude patterns are
// compiled up front so a bad pattern fails before any file is read.
func NewRunner(opts Options, log *slog.Logger, out io.Writer) (*Runner, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if len(opts.SchemaNames) == 0 {
		opts.SchemaNames = []string{"schema.yaml"}
	}
	r := &Runner{
		opts:    opts,
		log:     log,
		out:     out,
		schemas: make(map[string]*schema.Schema),
	}
	for _, pattern := range opts.Excludes {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad exclude pattern %q: %w", pattern, err)
		}
		r.excludes = append(r.excludes, re)
	}
	return r, nil
}

// Run validates every configured path and prints a colored verdict.
// The returned error carries every failure message, separated the same
// way the library's aggregate error separates per-document results.
func (r *Runner) Run() error {
	var failures []string
	for _, p := range r.opts.Paths {
		info, err := os.Stat(p)
		if err != nil {
			return err
		}
		var errs []string
		if info.IsDir() {
			errs, err = r.runDir(p)
		} else {
			errs, err = r.runFiles([]string{p})
		}
		if err != nil {
			return err
		}
		failures = append(failures, errs...)
	}

	output := termenv.NewOutput(r.out)
	if len(failures) > 0 {
		fmt.Fprintln(r.out, output.String("Validation failed!").Foreground(output.Color("1")).Bold())
		return fmt.Errorf("%s", strings.Join(failures, "\n----\n"))
	}
	fmt.Fprintln(r.out, output.String("Validation success! 👍").Foreground(output.Color("2")).Bold())
	return nil
}

// runDir discovers data files under root and validates them with the
// configured worker count. Schema files themselves and excluded paths
// are skipped.
func (r *Runner) runDir(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if r.isSchemaFile(path) {
			return nil
		}
		if r.isExcluded(path) {
			r.log.Debug("excluded", "path", path)
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return r.runFiles(files)
}

// runFiles validates a fixed set of data files concurrently and
// returns the failure messages in file order.
func (r *Runner) runFiles(files []string) ([]string, error) {
	type outcome struct {
		failure string
		err     error
	}
	outcomes := make([]outcome, len(files))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				failure, err := r.runFile(files[i])
				outcomes[i] = outcome{failure: failure, err: err}
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var failures []string
	for _, o := range outcomes {
		if o.err != nil {
			return nil, o.err
		}
		if o.failure != "" {
			failures = append(failures, o.failure)
		}
	}
	return failures, nil
}

// runFile validates one data file. The returned string is empty when
// the file is valid; a non-nil error means validation could not run at
// all (missing schema, unreadable file, schema syntax error).
func (r *Runner) runFile(path string) (string, error) {
	schemaPaths, err := r.resolveSchemas(path)
	if err != nil {
		return "", err
	}
	s, err := r.schemaFor(schemaPaths)
	if err != nil {
		return "", err
	}
	data, err := sieve.MakeData(path)
	if err != nil {
		return "", err
	}
	r.log.Debug("validating", "path", path, "schema", s.Name)
	_, err = sieve.Validate(s, data, r.opts.Strict)
	var verr *sieve.Error
	if errors.As(err, &verr) {
		return verr.Error(), nil
	}
	return "", err
}

// resolveSchemas maps each configured schema name to a concrete file
// for the given data file.
func (r *Runner) resolveSchemas(dataPath string) ([]string, error) {
	paths := make([]string, 0, len(r.opts.SchemaNames))
	for _, name := range r.opts.SchemaNames {
		found, err := findSchema(dataPath, name)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found)
	}
	return paths, nil
}

// findSchema locates a schema for a data file: the name itself when it
// is an existing file, otherwise the nearest file with that name in
// the data file's directory or any parent.
func findSchema(dataPath, name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	dir, err := filepath.Abs(filepath.Dir(dataPath))
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no schema %q found for %s", name, dataPath)
		}
		dir = parent
	}
}

// schemaFor compiles the schema files, reusing a previous compilation
// when the same set has been seen before.
func (r *Runner) schemaFor(paths []string) (*schema.Schema, error) {
	key := strings.Join(paths, "\x00")
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.schemas[key]; ok {
		return s, nil
	}
	s, err := sieve.MakeSchema(paths...)
	if err != nil {
		return nil, err
	}
	r.schemas[key] = s
	return s, nil
}

// isSchemaFile reports whether path names one of the configured
// schemas, so a directory walk does not validate a schema against
// itself.
func (r *Runner) isSchemaFile(path string) bool {
	base := filepath.Base(path)
	for _, name := range r.opts.SchemaNames {
		if base == filepath.Base(name) {
			return true
		}
	}
	return false
}

func (r *Runner) isExcluded(path string) bool {
	for _, re := range r.excludes {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
