// Package output implements the four serializer formats the CLI exposes:
// lines, json, json-lines, and pretty-json. All four share the same
// []*records.File input and preserve match/chunk emission order.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/chunkgrep/chunkgrep/internal/records"
	"github.com/chunkgrep/chunkgrep/pkg/pathutil"
)

// Format names the CLI's -f/--format values.
type Format string

const (
	Lines      Format = "lines"
	JSON       Format = "json"
	JSONLines  Format = "json-lines"
	PrettyJSON Format = "pretty-json"
)

// Writer streams file records to w in one of the four formats. A Writer is
// not safe for concurrent use; the CLI writes every record from one
// goroutine after the driver has returned them.
type Writer struct {
	w       io.Writer
	format  Format
	rootDir string
	wrote   bool // for json/pretty-json: have we emitted an element yet
}

// New builds a Writer. rootDir is used to relativize paths for the lines
// format; an empty rootDir disables relativization.
func New(w io.Writer, format Format, rootDir string) (*Writer, error) {
	switch format {
	case Lines, JSON, JSONLines, PrettyJSON:
	default:
		return nil, fmt.Errorf("output: unknown format %q", format)
	}
	return &Writer{w: w, format: format, rootDir: rootDir}, nil
}

// Begin writes any format-specific preamble (the opening bracket of a JSON
// array). Call once before the first WriteFile.
func (wr *Writer) Begin() error {
	if wr.format == JSON || wr.format == PrettyJSON {
		_, err := io.WriteString(wr.w, "[")
		return err
	}
	return nil
}

// End writes any format-specific postamble (the closing bracket of a JSON
// array). Call once after the last WriteFile.
func (wr *Writer) End() error {
	if wr.format == JSON || wr.format == PrettyJSON {
		_, err := io.WriteString(wr.w, "]\n")
		return err
	}
	return nil
}

// WriteFile emits one file's matches in the configured format. A file with
// no matches is not written for the lines/json-lines formats but still
// counts as an (empty) element in json/pretty-json, matching the
// array-of-files shape those formats document.
func (wr *Writer) WriteFile(f *records.File) error {
	switch wr.format {
	case Lines:
		return wr.writeLines(f)
	case JSONLines:
		return wr.writeJSONLine(f)
	case JSON, PrettyJSON:
		return wr.writeJSONElement(f)
	}
	return fmt.Errorf("output: unknown format %q", wr.format)
}

func (wr *Writer) writeLines(f *records.File) error {
	path := f.Path
	if wr.rootDir != "" {
		path = pathutil.ToRelative(path, wr.rootDir)
	}
	for _, m := range f.Matches {
		_, err := fmt.Fprintf(wr.w, "%s:%d:%d:%s:%s\n", path, m.Start.Row, m.Start.Column, m.Label, m.Text)
		if err != nil {
			return err
		}
	}
	return nil
}

func (wr *Writer) writeJSONLine(f *records.File) error {
	if len(f.Matches) == 0 {
		return nil
	}
	enc := json.NewEncoder(wr.w)
	return enc.Encode(f)
}

func (wr *Writer) writeJSONElement(f *records.File) error {
	var b []byte
	var err error
	if wr.format == PrettyJSON {
		b, err = json.MarshalIndent(f, "  ", "  ")
	} else {
		b, err = json.Marshal(f)
	}
	if err != nil {
		return err
	}

	if wr.wrote {
		if _, err := io.WriteString(wr.w, ","); err != nil {
			return err
		}
	}
	wr.wrote = true

	if wr.format == PrettyJSON {
		if _, err := io.WriteString(wr.w, "\n  "); err != nil {
			return err
		}
	}
	_, err = wr.w.Write(b)
	return err
}
