package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// skeleton leaves both goose sections in place so Validate accepts a fresh
// file before any SQL is written.
const skeleton = `-- +goose Up
-- +goose StatementBegin
-- %[1]s: forward DDL, runnable on sqlite and postgres
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- %[1]s: rollback
-- +goose StatementEnd
`

// Slug turns a free-form migration title into the snake_case suffix used in
// file names. It returns "" when nothing usable remains.
func Slug(title string) string {
	s := slugRe.ReplaceAllString(strings.ToLower(title), "_")
	return strings.Trim(s, "_")
}

// CreateSQLMigration writes <dir>/<version>_<slug>.sql and returns its path.
func CreateSQLMigration(dir, title string) (string, error) {
	return createAt(dir, title, time.Now().UTC())
}

func createAt(dir, title string, now time.Time) (string, error) {
	if dir == "" {
		return "", errors.New("dir is required")
	}
	slug := Slug(title)
	if slug == "" {
		return "", fmt.Errorf("migration title %q has no usable characters", title)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	path := filepath.Join(dir, now.Format(versionLayout)+"_"+slug+".sql")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("migration already exists: %s", path)
		}
		return "", fmt.Errorf("create %q: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, skeleton, slug); err != nil {
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	return path, nil
}
