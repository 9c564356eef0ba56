package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/okian/batsim/pkg/logger"
)

// SetupLogging initializes the global logger on w. Terminals get the text
// handler; anything else keeps the configured format.
func SetupLogging(w io.Writer, format, level string) error {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		format = logger.FormatText
	}
	if err := logger.InitWithWriter(w, format); err != nil {
		return err
	}
	return logger.SetLevelString(level)
}
