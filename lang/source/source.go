// Package source holds the file table every other package in this module
// refers to by opaque id, instead of carrying file paths or byte slices
// around. It plays the role of the teacher's parser/scanner token.FileSet,
// but under the name the rest of this codebase's data model expects.
package source

import (
	"fmt"
	"strings"
)

// FileId identifies a source file registered in a FileDatabase. The zero
// value is never a valid id.
type FileId uint32

// Pos is a byte offset into the text of the file it is paired with. A bare
// Pos is meaningless without knowing which FileId it belongs to, which is
// why Range and most APIs below carry both together.
type Pos uint32

// Range is a half-open [Start, End) byte range within a single file.
type Range struct {
	Start, End Pos
}

func (r Range) Len() int { return int(r.End - r.Start) }

// Span pairs a FileId with a Range, identifying a region of source text
// uniquely across an entire compilation.
type Span struct {
	File  FileId
	Range Range
}

type fileRecord struct {
	path      string
	text      string
	lineStart []Pos // byte offset of the start of each line
}

// FileDatabase owns the text of every file involved in a compilation and
// answers line/column queries against it, the way the original
// implementation's FileDatabase backs its diagnostic renderer.
type FileDatabase struct {
	files []fileRecord
}

// NewFileDatabase returns an empty database.
func NewFileDatabase() *FileDatabase {
	return &FileDatabase{}
}

// AddFile registers a new file and returns its id. Re-adding the same path
// creates a distinct FileId; callers that want deduplication must do it
// themselves (this mirrors the original CLI's handling of the synthetic
// "prelude.en" virtual file, which is added once by the driver).
func (db *FileDatabase) AddFile(path, text string) FileId {
	id := FileId(len(db.files) + 1)
	db.files = append(db.files, fileRecord{
		path:      path,
		text:      text,
		lineStart: computeLineStarts(text),
	})
	return id
}

func computeLineStarts(text string) []Pos {
	starts := []Pos{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, Pos(i+1))
		}
	}
	return starts
}

func (db *FileDatabase) record(id FileId) *fileRecord {
	if id == 0 || int(id) > len(db.files) {
		return nil
	}
	return &db.files[id-1]
}

// Path returns the registered path for id, or "" if id is unknown.
func (db *FileDatabase) Path(id FileId) string {
	if r := db.record(id); r != nil {
		return r.path
	}
	return ""
}

// Text returns the full source text for id.
func (db *FileDatabase) Text(id FileId) string {
	if r := db.record(id); r != nil {
		return r.text
	}
	return ""
}

// Position converts a byte offset into a 1-based line and column.
func (db *FileDatabase) Position(id FileId, p Pos) (line, col int) {
	r := db.record(id)
	if r == nil {
		return 0, 0
	}
	lo, hi := 0, len(r.lineStart)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if r.lineStart[mid] <= p {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line = lo + 1
	col = int(p-r.lineStart[lo]) + 1
	return line, col
}

// Line returns the full text of the given 1-based line number, without the
// trailing newline, for use in diagnostic snippets.
func (db *FileDatabase) Line(id FileId, line int) string {
	r := db.record(id)
	if r == nil || line < 1 || line > len(r.lineStart) {
		return ""
	}
	start := r.lineStart[line-1]
	end := Pos(len(r.text))
	if line < len(r.lineStart) {
		end = r.lineStart[line] - 1
	}
	return strings.TrimRight(r.text[start:end], "\r")
}

// Slice returns the raw text covered by rng in file id.
func (db *FileDatabase) Slice(id FileId, rng Range) string {
	r := db.record(id)
	if r == nil {
		return ""
	}
	if int(rng.End) > len(r.text) {
		rng.End = Pos(len(r.text))
	}
	if rng.Start > rng.End {
		return ""
	}
	return r.text[rng.Start:rng.End]
}

// String renders a span as "path:line:col", matching the prefix format used
// throughout this module's diagnostics.
func (db *FileDatabase) String(sp Span) string {
	line, col := db.Position(sp.File, sp.Range.Start)
	return fmt.Sprintf("%s:%d:%d", db.Path(sp.File), line, col)
}
