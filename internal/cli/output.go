package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	heading   = color.New(color.FgCyan, color.Bold)
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
)

// writeOutput writes b to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, b []byte) error {
	if path == "" {
		_, err := w.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// noBellStdout keeps promptui from ringing the terminal bell on every key.
type noBellStdout struct{}

func (noBellStdout) Write(b []byte) (int, error) {
	if len(b) == 1 && b[0] == '\a' {
		return 0, nil
	}
	return os.Stdout.Write(b)
}

func (noBellStdout) Close() error { return nil }
