package reports

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// ErrCorruptReport is returned when the report file exists but is not a
// JSON array.
var ErrCorruptReport = errors.New("corrupt report file")

var ansiEscape = regexp.MustCompile(`\x1B(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)

// StripANSI removes terminal escape sequences from s.
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// Accumulator appends rendered sections to a JSON document on disk. The
// document is a top-level array of {"<section>": [rows...]} objects in
// the order the sections were persisted.
//
// Every Persist is a full read-modify-write guarded by an exclusive lock
// on LockPath; the new document replaces the old one by rename, so
// concurrent writers never lose each other's sections. The lock file is
// left in place after Persist returns.
type Accumulator struct {
	Path string

	// DiscardCorrupt treats an unparsable report file as empty instead of
	// failing with ErrCorruptReport. The previous content is lost.
	DiscardCorrupt bool

	Logger *zap.SugaredLogger
}

// NewAccumulator returns an accumulator writing to path.
func NewAccumulator(path string, logger *zap.SugaredLogger) *Accumulator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Accumulator{Path: path, Logger: logger}
}

// LockPath is the file locked while the report is rewritten.
func (a *Accumulator) LockPath() string {
	return a.Path + ".lock"
}

// Persist appends t as a new section.
func (a *Accumulator) Persist(t *Table) error {
	lock := flock.New(a.LockPath())
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock report file: %w", err)
	}
	defer lock.Unlock()

	doc, err := a.load()
	if errors.Is(err, ErrCorruptReport) && a.DiscardCorrupt {
		a.Logger.Warnw("discarding unreadable report content", "path", a.Path, "error", err)
		doc, err = nil, nil
	}
	if err != nil {
		return err
	}

	section, err := encode(sectionOf(t), "")
	if err != nil {
		return fmt.Errorf("encode section: %w", err)
	}
	doc = append(doc, section)

	out, err := encode(doc, "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return writeFileAtomic(a.Path, out)
}

// load returns the sections currently on disk. A missing or empty file
// yields no sections.
func (a *Accumulator) load() ([]json.RawMessage, error) {
	data, err := os.ReadFile(a.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read report file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var doc []json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptReport, a.Path, err)
	}
	return doc, nil
}

// orderedRow keeps the column order of the table in the JSON object.
type orderedRow struct {
	keys   []string
	values []string
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := encode(k, "")
		if err != nil {
			return nil, err
		}
		vb, err := encode(r.values[i], "")
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func sectionOf(t *Table) map[string][]orderedRow {
	priority := t.columnIndex("Priority")
	rows := make([]orderedRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		values := make([]string, len(t.Columns))
		copy(values, row.Cells)
		if priority >= 0 {
			values[priority] = StripANSI(values[priority])
		}
		rows = append(rows, orderedRow{keys: t.Columns, values: values})
	}
	return map[string][]orderedRow{t.SectionKey(): rows}
}

// encode marshals v without HTML escaping so rule arrows stay readable.
func encode(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp report file: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write report file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace report file: %w", err)
	}
	return nil
}
