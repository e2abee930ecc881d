package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

var (
	sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

	// sqlite rejects these; migrations must run on both dialects
	nonPortableRe = regexp.MustCompile(`(?i)\b(gen_random_uuid|now)\s*\(|\bCREATE\s+TYPE\b|\bCREATE\s+EXTENSION\b`)

	// temporal declarations that go-sqlite3 would return as strings even
	// after timestamptz is translated
	unscannableTimeRe = regexp.MustCompile(`(?i)\b(timestamptz|timestamp)\s*\(|\bwith(out)?\s+time\s+zone\b|\btimetz\b|\btime\s+(NOT\s+NULL|NULL|DEFAULT)\b|\btime\s*[,)]`)
)

// ValidateDir validates the migrations in a directory on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return Validate(os.DirFS(dir), ".")
}

// ValidateEmbedded validates the migration set compiled into the binary.
func ValidateEmbedded() error {
	return Validate(embedded, embeddedDir)
}

// Validate checks filenames, version uniqueness, goose headers and that no
// postgres-only construct slipped into a migration.
func Validate(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := seen[m[1]]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		seen[m[1]] = name

		b, err := fs.ReadFile(fsys, pathJoin(dir, name))
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}
		txt := string(b)
		for _, header := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(txt, header) {
				return fmt.Errorf("migration %q missing %q", name, header)
			}
		}
		if loc := nonPortableRe.FindString(txt); loc != "" {
			return fmt.Errorf("migration %q uses postgres-only %q", name, strings.TrimSpace(loc))
		}
		if loc := unscannableTimeRe.FindString(txt); loc != "" {
			return fmt.Errorf("migration %q declares %q, which sqlite reads back as text (use timestamptz)", name, strings.TrimSpace(loc))
		}
	}

	// an empty dir is valid
	return nil
}

func pathJoin(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	return dir + "/" + name
}
