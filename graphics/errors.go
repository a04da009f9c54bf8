package graphics

import (
	"errors"
	"fmt"
)

// ErrCapabilityUnavailable is returned when no usable graphics context or
// device feature could be obtained.
var ErrCapabilityUnavailable = errors.New("graphics capability unavailable")

// Stage identifies where program construction failed.
type Stage int

const (
	StageCompile Stage = iota
	StageLink
)

func (s Stage) String() string {
	switch s {
	case StageCompile:
		return "compile"
	case StageLink:
		return "link"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// ShaderError is returned by Device.CompileProgram. Log holds the driver's
// or translator's diagnostic text.
type ShaderError struct {
	Stage  Stage
	Shader string // "vertex", "fragment" or "" for link failures
	Log    string
}

func (e *ShaderError) Error() string {
	if e.Shader != "" {
		return fmt.Sprintf("failed to %s %s shader: %s", e.Stage, e.Shader, e.Log)
	}
	return fmt.Sprintf("failed to %s program: %s", e.Stage, e.Log)
}
