package pngopt

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/google/uuid"
)

// Crush re-compresses a PNG file in place with external tools when they are
// installed. Missing tools are skipped silently; the file is always left in
// a valid state.
//
// Tools are tried in order:
//  1. pngquant: lossy palette quantization at quality 90-100, applied only
//     when the result is smaller
//  2. oxipng: lossless re-encode (preferred)
//  3. optipng: lossless re-encode (fallback when oxipng is absent)
func Crush(ctx context.Context, path string) error {
	if err := crushPngquant(ctx, path); err != nil {
		return err
	}

	if _, err := exec.LookPath("oxipng"); err == nil {
		return runQuiet(ctx, "oxipng", "-o", "4", "--strip", "safe", "-q", path)
	}
	if _, err := exec.LookPath("optipng"); err == nil {
		return runQuiet(ctx, "optipng", "-o7", "-strip", "all", "-quiet", path)
	}
	return nil
}

// crushPngquant runs the lossy pass. pngquant writes to a temp file, and the
// original is replaced only when the quantized result is smaller. A nonzero
// exit means the quality floor could not be met, which is not an error.
func crushPngquant(ctx context.Context, path string) error {
	bin, err := exec.LookPath("pngquant")
	if err != nil {
		return nil
	}

	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString()[:8])
	defer os.Remove(tmp)

	cmd := exec.CommandContext(ctx, bin,
		"--quality=90-100", "--speed=1", "--strip",
		"--output", tmp, "--force", path)
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return nil
	}

	orig, err := os.Stat(path)
	if err != nil {
		return err
	}
	quant, err := os.Stat(tmp)
	if err != nil {
		return nil
	}
	if quant.Size() < orig.Size() {
		return os.Rename(tmp, path)
	}
	return nil
}

// runQuiet runs an external tool discarding its output. Tool failures are
// swallowed because the input file is untouched on error; only context
// cancellation propagates.
func runQuiet(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}
