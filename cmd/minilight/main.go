// Command minilight renders a MiniLight model file to a tone-mapped PPM
// image via progressive Monte-Carlo path tracing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/hxa7241/minilight-go/pkg/core"
	"github.com/hxa7241/minilight-go/pkg/image"
	"github.com/hxa7241/minilight-go/pkg/modelfile"
	"github.com/hxa7241/minilight-go/pkg/prng"
	"github.com/hxa7241/minilight-go/pkg/renderer"
	"github.com/hxa7241/minilight-go/pkg/scene"
)

const usage = `MiniLight

Usage: minilight <model-file>

Renders <model-file> by progressive Monte-Carlo path tracing, writing
<model-file>.ppm after each power-of-two iteration and after the final one.
An interrupt (Ctrl-C) stops cleanly after the iteration in progress,
leaving the most recent PPM on disk.
`

func main() {
	help := flag.Bool("help", false, "show usage")
	flag.BoolVar(help, "?", false, "show usage")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if *help || flag.NArg() != 1 {
		flag.Usage()
		if *help {
			os.Exit(0)
		}
		os.Exit(1)
	}

	modelPath := flag.Arg(0)
	logger := core.NewDefaultLogger()

	if err := run(modelPath, logger); err != nil {
		fmt.Fprintf(os.Stderr, "minilight: %v\n", err)
		os.Exit(1)
	}
}

func run(modelPath string, logger core.Logger) error {
	modelFile, err := os.Open(modelPath)
	if err != nil {
		return fmt.Errorf("opening model file: %w", err)
	}
	model, err := modelfile.Parse(modelFile)
	modelFile.Close()
	if err != nil {
		return fmt.Errorf("parsing model file: %w", err)
	}

	cam := renderer.NewCamera(model.ViewPosition, model.ViewDirection, model.ViewAngle)
	s := scene.New(cam.Position(), model.Triangles, model.Sky, model.Ground)
	tracer := renderer.NewRayTracer(s)
	img := image.New(model.Width, model.Height)
	random := prng.New()

	outputPath := modelPath + ".ppm"

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Printf("rendering %s -> %s (%d iterations, %dx%d)\n", modelPath, outputPath, model.Iterations, model.Width, model.Height)

	for i := 1; i <= model.Iterations; i++ {
		cam.RenderFrame(tracer, random, img)

		if isFlushIteration(i, model.Iterations) {
			if err := writePPM(outputPath, img, i); err != nil {
				return fmt.Errorf("writing %s: %w", outputPath, err)
			}
			logger.Printf("iteration %d/%d written to %s\n", i, model.Iterations, outputPath)
		}

		select {
		case <-ctx.Done():
			logger.Printf("interrupted after iteration %d/%d\n", i, model.Iterations)
			return nil
		default:
		}
	}
	return nil
}

// isFlushIteration reports whether iteration i (1-based) of total should
// flush the image to disk: every power-of-two iteration, plus the last.
func isFlushIteration(i, total int) bool {
	return i == total || i&(i-1) == 0
}

func writePPM(path string, img *image.Image, iteration int) error {
	out, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer out.Close()
	return img.WritePPM(out, iteration)
}
