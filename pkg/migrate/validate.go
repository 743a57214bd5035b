package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	upMarker        = "-- +goose Up"
	downMarker      = "-- +goose Down"
	statementBegin  = "-- +goose StatementBegin"
	statementFinish = "-- +goose StatementEnd"
)

// ValidateDir checks migration filenames and goose annotations, reporting
// every broken file rather than stopping at the first.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var (
		errs  error
		seen  = map[string]string{}
		names []string
	)
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name))
			continue
		}
		version := m[1]
		if prev, ok := seen[version]; ok {
			errs = multierr.Append(errs, fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name))
			continue
		}
		seen[version] = name

		full := filepath.Join(dir, name)
		b, err := os.ReadFile(full)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read file %q: %w", full, err))
			continue
		}
		errs = multierr.Append(errs, validateAnnotations(name, string(b)))
	}
	return errs
}

// validateAnnotations requires an Up section followed by a Down section, so
// every schema change can be rolled back, and balanced statement blocks.
func validateAnnotations(name, txt string) error {
	up := strings.Index(txt, upMarker)
	if up < 0 {
		return fmt.Errorf("migration %q missing %q", name, upMarker)
	}
	down := strings.Index(txt, downMarker)
	if down < 0 {
		return fmt.Errorf("migration %q missing %q", name, downMarker)
	}
	if down < up {
		return fmt.Errorf("migration %q declares Down before Up", name)
	}
	if begins, ends := strings.Count(txt, statementBegin), strings.Count(txt, statementFinish); begins != ends {
		return fmt.Errorf("migration %q has %d StatementBegin and %d StatementEnd", name, begins, ends)
	}
	return nil
}
