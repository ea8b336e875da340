// Package modelfile parses the MiniLight text scene-description grammar
// (spec.md §6): a header, iteration count, image dimensions, camera line,
// sky/ground line, and zero or more triangle lines.
package modelfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hxa7241/minilight-go/pkg/core"
	"github.com/hxa7241/minilight-go/pkg/geometry"
)

// headerPrefix is the required first token of a valid model file.
const headerPrefix = "#MiniLight"

// Model is the parsed content of a model file: everything the renderer
// needs to build a Scene, a Camera and an Image.
type Model struct {
	Iterations    int
	Width, Height int
	ViewPosition  core.Vec3
	ViewDirection core.Vec3
	ViewAngle     float64 // degrees
	Sky           core.Vec3
	Ground        core.Vec3
	Triangles     []*geometry.Triangle
}

// Parse reads a model file from r.
func Parse(r io.Reader) (*Model, error) {
	lines := newLineSource(r)

	header, ok := lines.nextNonBlank()
	if !ok {
		return nil, fmt.Errorf("modelfile: empty input, expected %q header", headerPrefix)
	}
	if !strings.HasPrefix(header, headerPrefix) {
		return nil, fmt.Errorf("modelfile: first line %q does not start with %q", header, headerPrefix)
	}

	iterLine, ok := lines.nextNonBlank()
	if !ok {
		return nil, fmt.Errorf("modelfile: missing iteration count line")
	}
	iterations, err := strconv.Atoi(strings.TrimSpace(iterLine))
	if err != nil {
		return nil, fmt.Errorf("modelfile: invalid iteration count %q: %w", iterLine, err)
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("modelfile: iteration count %d must be positive", iterations)
	}

	dimsLine, ok := lines.nextNonBlank()
	if !ok {
		return nil, fmt.Errorf("modelfile: missing width/height line")
	}
	dims := strings.Fields(dimsLine)
	if len(dims) < 2 {
		return nil, fmt.Errorf("modelfile: width/height line %q needs two integers", dimsLine)
	}
	width, err := strconv.Atoi(dims[0])
	if err != nil {
		return nil, fmt.Errorf("modelfile: invalid width %q: %w", dims[0], err)
	}
	height, err := strconv.Atoi(dims[1])
	if err != nil {
		return nil, fmt.Errorf("modelfile: invalid height %q: %w", dims[1], err)
	}

	viewLine, ok := lines.nextNonBlank()
	if !ok {
		return nil, fmt.Errorf("modelfile: missing view line")
	}
	viewFields, err := floatFields(viewLine)
	if err != nil {
		return nil, fmt.Errorf("modelfile: view line: %w", err)
	}
	if len(viewFields) < 7 {
		return nil, fmt.Errorf("modelfile: view line %q needs position, direction and angle (7 numbers)", viewLine)
	}
	viewPosition := core.NewVec3(viewFields[0], viewFields[1], viewFields[2])
	viewDirection := core.NewVec3(viewFields[3], viewFields[4], viewFields[5])
	viewAngle := viewFields[6]

	skyLine, ok := lines.nextNonBlank()
	if !ok {
		return nil, fmt.Errorf("modelfile: missing sky/ground line")
	}
	skyFields, err := floatFields(skyLine)
	if err != nil {
		return nil, fmt.Errorf("modelfile: sky/ground line: %w", err)
	}
	if len(skyFields) < 6 {
		return nil, fmt.Errorf("modelfile: sky/ground line %q needs two triples (6 numbers)", skyLine)
	}
	sky := core.NewVec3(skyFields[0], skyFields[1], skyFields[2]).ClampMin(core.Zero)
	ground := core.NewVec3(skyFields[3], skyFields[4], skyFields[5]).Clamp01()

	triangles, err := parseTriangles(lines)
	if err != nil {
		return nil, err
	}

	return &Model{
		Iterations:    iterations,
		Width:         width,
		Height:        height,
		ViewPosition:  viewPosition,
		ViewDirection: viewDirection,
		ViewAngle:     viewAngle,
		Sky:           sky,
		Ground:        ground,
		Triangles:     triangles,
	}, nil
}

// parseTriangles consumes every remaining float from the input as one flat
// stream (parentheses and line breaks are not significant) and groups it
// into triangles of five triples each: v0, v1, v2, reflectivity, emissivity.
// Reading stops at end-of-file; input that ends partway through a triangle
// is an error.
func parseTriangles(lines *lineSource) ([]*geometry.Triangle, error) {
	var triangles []*geometry.Triangle
	for {
		values, err := lines.nextFloats(15)
		if err != nil {
			return nil, fmt.Errorf("modelfile: triangle line: %w", err)
		}
		if values == nil {
			break
		}
		triangles = append(triangles, geometry.NewTriangle(
			core.NewVec3(values[0], values[1], values[2]),
			core.NewVec3(values[3], values[4], values[5]),
			core.NewVec3(values[6], values[7], values[8]),
			core.NewVec3(values[9], values[10], values[11]),
			core.NewVec3(values[12], values[13], values[14]),
		))
	}
	return triangles, nil
}

// lineSource scans non-blank lines and additionally serves a flat token
// stream spanning line boundaries, used for the free-form triangle list.
type lineSource struct {
	sc      *bufio.Scanner
	pending []string
}

func newLineSource(r io.Reader) *lineSource {
	return &lineSource{sc: bufio.NewScanner(r)}
}

func (l *lineSource) nextNonBlank() (string, bool) {
	for l.sc.Scan() {
		line := strings.TrimSpace(l.sc.Text())
		if line != "" {
			return line, true
		}
	}
	return "", false
}

// nextFloats returns the next n floats drawn from the remaining input
// (parentheses stripped, tokens split on whitespace), reading additional
// lines as needed. Returns (nil, nil) at end-of-file with no tokens
// pending, and an error if input ends mid-group.
func (l *lineSource) nextFloats(n int) ([]float64, error) {
	values := make([]float64, 0, n)
	for len(values) < n {
		if len(l.pending) == 0 {
			if !l.sc.Scan() {
				if len(values) == 0 {
					return nil, nil
				}
				return nil, fmt.Errorf("unexpected end of file mid-group")
			}
			l.pending = strings.Fields(stripParens(l.sc.Text()))
			continue
		}
		tok := l.pending[0]
		l.pending = l.pending[1:]
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", tok, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func stripParens(s string) string {
	return strings.NewReplacer("(", " ", ")", " ").Replace(s)
}

func floatFields(line string) ([]float64, error) {
	fields := strings.Fields(stripParens(line))
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", f, err)
		}
		values[i] = v
	}
	return values, nil
}
