//go:build !linux

package headless

import (
	"fmt"

	"github.com/richinsley/goliquidmetal/graphics"
)

// Headless is unavailable off Linux; New always fails.
type Headless struct{}

func New(width, height int) (*Headless, error) {
	return nil, fmt.Errorf("%w: egl headless rendering is not supported on this platform", graphics.ErrCapabilityUnavailable)
}

func (h *Headless) IsGLES() bool                   { return true }
func (h *Headless) MakeCurrent()                   {}
func (h *Headless) GetFramebufferSize() (int, int) { return 0, 0 }
func (h *Headless) Resize(w, height int)           {}
func (h *Headless) EndFrame()                      {}
func (h *Headless) Shutdown()                      {}
