// Package progress renders bulk-load progress on the terminal.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Bar is the subset of a progress bar the loaders need.
type Bar interface {
	Add(int) error
	Close() error
}

type ProgressBar struct {
	*progressbar.ProgressBar
}

func NewBar(max int, opts ...progressbar.Option) *ProgressBar {
	return &ProgressBar{
		ProgressBar: progressbar.NewOptions(max, opts...),
	}
}

// NewDocumentsBar is a document-count bar in the style used by the CLI.
// A nil writer renders to stderr.
func NewDocumentsBar(total int, description string, w io.Writer) *ProgressBar {
	if w == nil {
		w = os.Stderr
	}
	return NewBar(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription(description),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
