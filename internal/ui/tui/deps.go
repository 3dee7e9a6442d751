package tui

import (
	"io"
	"log/slog"
)

type Deps struct {
	Logger *slog.Logger

	// Input and Output default to the terminal when nil.
	Input  io.Reader
	Output io.Writer
}
