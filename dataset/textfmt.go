package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/reprise-cli/reprise/marker"
)

// maxLineSize bounds one line of a marker file.
const maxLineSize = 1 << 20

// singleLine keeps a value on one line and out of the field separators.
var singleLine = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// Document is the parsed form of a text marker file.
type Document struct {
	Title  string
	Source string
	// Window is the window length set by a "# window:" directive, zero when absent.
	Window  float64
	Markers []marker.Marker
}

// ParseError points at the offending line of a text marker file.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads the text format:
//
//	# title: Lesson 3
//	# source: https://youtu.be/dQw4w9WgXcQ
//	# window: 2.5
//	0:12.5	hola	known
//	15	adiós
//
// Blank lines and other comments are ignored. Marker order is preserved.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{Markers: []marker.Marker{}}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var n int
	for scanner.Scan() {
		n++
		line := strings.TrimRight(scanner.Text(), "\r")
		if n == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "#") {
			if err := doc.directive(strings.TrimSpace(trimmed[1:])); err != nil {
				return nil, &ParseError{Line: n, Err: err}
			}
			continue
		}

		m, err := parseMarker(line)
		if err != nil {
			return nil, &ParseError{Line: n, Err: err}
		}
		doc.Markers = append(doc.Markers, m)
	}

	if err := scanner.Err(); err != nil {
		// the scanner stops before counting the line it could not read
		return nil, &ParseError{Line: n + 1, Err: err}
	}

	return doc, nil
}

func (d *Document) directive(comment string) error {
	name, value, ok := strings.Cut(comment, ":")
	if !ok {
		return nil
	}

	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "title":
		d.Title = value
	case "source":
		d.Source = value
	case "window":
		w, err := strconv.ParseFloat(value, 64)
		if err != nil || !(w > 0) {
			return fmt.Errorf("invalid window %q", value)
		}
		d.Window = w
	}

	return nil
}

func parseMarker(line string) (marker.Marker, error) {
	var timeField, label, level string

	if strings.Contains(line, "\t") {
		fields := strings.Split(line, "\t")
		timeField = fields[0]
		if len(fields) > 1 {
			label = fields[1]
		}
		if len(fields) > 2 {
			level = fields[2]
		}
		if len(fields) > 3 {
			return marker.Marker{}, fmt.Errorf("too many fields")
		}
	} else {
		trimmed := strings.TrimSpace(line)
		timeField, label, _ = strings.Cut(trimmed, " ")
	}

	t, err := marker.ParseTime(timeField)
	if err != nil {
		return marker.Marker{}, err
	}

	lvl, err := marker.ParseLevel(level)
	if err != nil {
		return marker.Marker{}, err
	}

	return marker.Marker{T: t, Label: strings.TrimSpace(label), Level: lvl}, nil
}

// Format writes d in the text format accepted by Parse. Times are written
// as plain seconds so a round trip is exact.
func Format(w io.Writer, d *Dataset) error {
	bw := bufio.NewWriter(w)

	if d.Title != "" {
		fmt.Fprintf(bw, "# title: %s\n", singleLine.Replace(d.Title))
	}
	if d.Source != "" {
		fmt.Fprintf(bw, "# source: %s\n", singleLine.Replace(d.Source))
	}
	if d.Window != nil && d.Window.WindowSec > 0 {
		fmt.Fprintf(bw, "# window: %s\n", strconv.FormatFloat(d.Window.WindowSec, 'f', -1, 64))
	}

	for _, m := range d.Markers {
		label := singleLine.Replace(m.Label)
		fmt.Fprintf(bw, "%s\t%s\t%s\n", strconv.FormatFloat(m.T, 'f', -1, 64), label, m.Level)
	}

	return bw.Flush()
}
