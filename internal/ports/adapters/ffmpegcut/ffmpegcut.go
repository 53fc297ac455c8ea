// Package ffmpegcut executes stream-copy cuts with a local ffmpeg binary.
// Only the CLI uses it; the analysis core never invokes media tools.
package ffmpegcut

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

type Adapter struct {
	ffmpeg string
}

func New(ffmpegPath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Adapter{ffmpeg: ffmpegPath}
}

// Cut copies the [startSec, endSec] range of input into output without
// re-encoding.
func (a *Adapter) Cut(ctx context.Context, input string, startSec, endSec float64, output string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-ss", fmtSeconds(startSec),
		"-to", fmtSeconds(endSec),
		"-i", input,
		"-c", "copy",
		output,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg cut: %w\n%s", err, string(b))
	}
	return nil
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
