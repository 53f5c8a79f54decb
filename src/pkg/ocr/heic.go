package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/tuumbleweed/xerr"
)

// ConvertHEICToPNG shells out to heif-convert (libheif) to turn a HEIC/HEIF
// buffer into PNG bytes. disintegration/imaging's decode registry has no
// HEIC support and the pack carries no pure-Go HEIC decoder, so this
// mirrors rezonia-invoice-processor's own exec-based pdftoppm/convert
// fallback for formats the Go image stack can't read natively.
func ConvertHEICToPNG(ctx context.Context, data []byte) ([]byte, *xerr.Error) {
	tmpDir, err := os.MkdirTemp("", "ticket-heic-*")
	if err != nil {
		return nil, xerr.NewError(err, "create temp dir for heic conversion", "")
	}
	defer func() {
		_ = os.RemoveAll(tmpDir)
	}()

	srcPath := filepath.Join(tmpDir, "input.heic")
	dstPath := filepath.Join(tmpDir, "output.png")

	if err := os.WriteFile(srcPath, data, 0o600); err != nil {
		return nil, xerr.NewError(err, "write heic input to temp file", srcPath)
	}

	cmd := exec.CommandContext(ctx, "heif-convert", srcPath, dstPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, xerr.NewError(fmt.Errorf("%w: %s", err, output), "run heif-convert", srcPath)
	}

	png, err := os.ReadFile(dstPath)
	if err != nil {
		return nil, xerr.NewError(err, "read heif-convert output", dstPath)
	}
	return png, nil
}
