package migrate

import (
	"bytes"
	"io"
	"io/fs"
	"regexp"
	"strings"
)

// go-sqlite3 only hands back time.Time for columns declared exactly date,
// datetime or timestamp. Migrations are written with timestamptz for
// postgres and rewritten on the way into a sqlite database.
var timestamptzRe = regexp.MustCompile(`(?i)\btimestamptz\b`)

func sqliteTypes(sql []byte) []byte {
	return timestamptzRe.ReplaceAll(sql, []byte("timestamp"))
}

// sqliteFS serves migration files with their column types translated for sqlite.
type sqliteFS struct {
	fs.FS
}

func (s sqliteFS) Open(name string) (fs.File, error) {
	f, err := s.FS.Open(name)
	if err != nil || !strings.HasSuffix(name, ".sql") {
		return f, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	data := sqliteTypes(raw)
	return &translatedFile{Reader: bytes.NewReader(data), info: sizedInfo{FileInfo: info, size: int64(len(data))}}, nil
}

type translatedFile struct {
	*bytes.Reader
	info fs.FileInfo
}

func (f *translatedFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *translatedFile) Close() error               { return nil }

type sizedInfo struct {
	fs.FileInfo
	size int64
}

func (i sizedInfo) Size() int64 { return i.size }
