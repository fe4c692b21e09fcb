package view

import (
	"fmt"
	"io"
	"os"
	"strings"

	"vgm/internal/color"
	"vgm/internal/counter"
)

type ErrorViewModel struct {
	errorCount   *counter.Counter
	ErrorChannel chan error
	logFilePath  string
}

func NewErrorViewModel(logFilePath string) *ErrorViewModel {
	viewModel := ErrorViewModel{
		errorCount:   counter.NewCounter(),
		ErrorChannel: make(chan error, 16),
		logFilePath:  logFilePath,
	}
	go func() {
		for range viewModel.ErrorChannel {
			viewModel.errorCount.Add(1)
		}
	}()
	return &viewModel
}

type ErrorView struct {
	viewModel *ErrorViewModel
	stdout    io.Writer
}

func NewErrorView(vm *ErrorViewModel, stdout io.Writer) *ErrorView {
	return &ErrorView{
		viewModel: vm,
		stdout:    stdout,
	}
}

func (v ErrorView) Render(width int) int {
	if v.viewModel.errorCount.Count() == 0 {
		return 0
	}
	out := fmt.Sprintf("--- %s errors ---\nSee log file:\n%s\n",
		color.FgRed(fmt.Sprintf("%d", v.viewModel.errorCount.Count())),
		color.FgMagenta(ReplaceHomeDirWithTilde(v.viewModel.logFilePath)))

	_, err := fmt.Fprint(v.stdout, TrimTextToWidth(width, strings.TrimSuffix(out, "\n"))+"\n")
	if err != nil {
		return 0
	}
	return strings.Count(out, "\n")
}

// ReplaceHomeDirWithTilde replaces the home directory in an absolute path with ~
func ReplaceHomeDirWithTilde(path string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if strings.HasPrefix(path, homeDir) {
		return "~" + strings.TrimPrefix(path, homeDir)
	}
	return path
}
