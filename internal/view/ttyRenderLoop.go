package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// StartTTYRenderLoop redraws the view on the same terminal lines every 100ms
// until the context is canceled. It must only be started when file is an
// interactive terminal; on a non-terminal it returns without rendering so a
// misplaced start can never disturb the workflow it reports on.
func StartTTYRenderLoop(r View, out io.Writer, ctx context.Context, file *os.File) {
	if !term.IsTerminal(int(file.Fd())) {
		return
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil {
		return
	}
	lineCount := r.Render(width)

	for {
		width, _, err := term.GetSize(int(file.Fd()))
		if err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
			if lineCount > 0 {
				_, err := fmt.Fprint(out, ansiLineOffset(lineCount))
				if err != nil {
					return
				}
			}
			lineCount = r.Render(width)
			time.Sleep(100 * time.Millisecond) // Refresh rate
		}
	}
}
