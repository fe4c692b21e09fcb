package view

import (
	"fmt"
	"io"
	"sync"

	"vgm/internal/color"
	"vgm/internal/counter"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// StatusLineModel holds the currently running named action. Attempts counts
// retries of the network call inside the action, fed by the retry loop.
type StatusLineModel struct {
	mu       sync.Mutex
	action   string
	Attempts *counter.Counter
}

func NewStatusLineModel() *StatusLineModel {
	return &StatusLineModel{Attempts: counter.NewCounter()}
}

func (m *StatusLineModel) SetAction(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.action = action
}

func (m *StatusLineModel) Action() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.action
}

// StatusLineView renders the running action as one spinner line. When no
// action is running it renders nothing.
type StatusLineView struct {
	viewModel *StatusLineModel
	stdout    io.Writer
	frame     int
}

func NewStatusLineView(vm *StatusLineModel, stdout io.Writer) *StatusLineView {
	return &StatusLineView{
		viewModel: vm,
		stdout:    stdout,
	}
}

func (v *StatusLineView) Render(width int) int {
	action := v.viewModel.Action()
	if action == "" {
		return 0
	}
	v.frame++
	glyph := spinnerFrames[v.frame%len(spinnerFrames)]
	line := fmt.Sprintf("%s %s", glyph, action)
	if attempts := v.viewModel.Attempts.Count(); attempts > 1 {
		line = fmt.Sprintf("%s (attempt %d)", line, attempts)
	}
	out := TrimTextToWidth(width, line) + "\n"
	_, err := fmt.Fprint(v.stdout, out)
	if err != nil {
		return 0
	}
	return 1
}

// StatusLine is the progress side channel the orchestrators report through.
// On a TTY the model feeds the single updating spinner line; otherwise each
// named action is printed as a plain sequential line. Rendering never feeds
// back into the result of the action it reports on.
type StatusLine struct {
	model  *StatusLineModel
	isTTY  bool
	stdout io.Writer
}

func NewStatusLine(model *StatusLineModel, isTTY bool, stdout io.Writer) *StatusLine {
	return &StatusLine{
		model:  model,
		isTTY:  isTTY,
		stdout: stdout,
	}
}

func (s *StatusLine) Begin(action string) {
	s.model.SetAction(action)
	if !s.isTTY {
		_, _ = fmt.Fprintf(s.stdout, "%s...\n", action)
	}
}

func (s *StatusLine) End(failed bool) {
	action := s.model.Action()
	s.model.SetAction("")
	if !s.isTTY && failed {
		_, _ = fmt.Fprintf(s.stdout, "%s %s\n", action, color.FgRed("failed"))
	}
}
