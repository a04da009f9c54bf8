package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	translator     *gst.ShaderTranslator
	translatorErr  error
	translatorOnce sync.Once
)

// GetTranslator returns the process-wide translator, creating it on first use.
func GetTranslator() (*gst.ShaderTranslator, error) {
	translatorOnce.Do(func() {
		translator, translatorErr = gst.NewShaderTranslator(context.Background())
	})
	return translator, translatorErr
}

// Fragment is a translated fragment stage.
type Fragment struct {
	Code string
	// MappedNames maps the uniform names of the WebGL2 source to the names
	// the translator emitted.
	MappedNames map[string]string
}

// MappedName returns the emitted name for a source uniform, or the name itself
// when the translator kept it unchanged.
func (f *Fragment) MappedName(name string) string {
	if m, ok := f.MappedNames[name]; ok && m != "" {
		return m
	}
	return name
}

// TranslateFragment validates a WebGL2 fragment source and rewrites it for the
// target dialect. A translation failure carries the compiler's diagnostic text.
func TranslateFragment(source string, gles bool) (*Fragment, error) {
	t, err := GetTranslator()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader translator: %w", err)
	}

	outputFormat := gst.OutputFormatGLSL410
	if gles {
		outputFormat = gst.OutputFormatESSL
	}
	sh, err := t.TranslateShader(source, "fragment", gst.ShaderSpecWebGL2, outputFormat)
	if err != nil {
		return nil, err
	}

	f := &Fragment{
		Code:        sh.Code,
		MappedNames: make(map[string]string, len(sh.Variables)),
	}
	for name, v := range sh.Variables {
		f.MappedNames[name] = v.MappedName
	}
	return f, nil
}
