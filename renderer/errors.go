package renderer

import (
	"errors"

	"github.com/richinsley/goliquidmetal/graphics"
)

var (
	// ErrCapabilityUnavailable means no graphics device could be obtained.
	// The session stays Idle and renders nothing.
	ErrCapabilityUnavailable = graphics.ErrCapabilityUnavailable

	// ErrRasterization means the text mask could not be produced.
	ErrRasterization = errors.New("renderer: text rasterization failed")

	// ErrDisposed is returned by mutators called after Dispose.
	ErrDisposed = errors.New("renderer: session disposed")

	// ErrNotReady is returned by Start when the session is not Ready.
	ErrNotReady = errors.New("renderer: session not ready")
)

// ShaderError carries compile or link diagnostics; see graphics.ShaderError.
type ShaderError = graphics.ShaderError
