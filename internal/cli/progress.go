package cli

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// NewProgressBar builds the progress bar used by long-running commands
// such as statement imports and demo seeding.
func NewProgressBar(total int, description string, writer io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]█[reset]",
			SaucerHead:    "[green]█[reset]",
			SaucerPadding: "░",
			BarStart:      "▕",
			BarEnd:        "▏",
		}),
	)
}
