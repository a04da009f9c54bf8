package text

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/opentype"
)

// BoldWeight is the lowest CSS weight served by a family's bold face.
const BoldWeight = 600

type family struct {
	regular *opentype.Font
	bold    *opentype.Font
}

func (f *family) face(weight int) *opentype.Font {
	if weight >= BoldWeight && f.bold != nil {
		return f.bold
	}
	if f.regular != nil {
		return f.regular
	}
	return f.bold
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*family{}
	aliases    = map[string]string{
		"":           "go",
		"sans-serif": "go",
		"system-ui":  "go",
		"monospace":  "go mono",
	}
	builtinOnce sync.Once
	builtinErr  error

	// faces loaded from TextConfig.FontFile, keyed by path
	fileMu    sync.Mutex
	fileFaces = map[string]*opentype.Font{}
)

func loadBuiltins() {
	builtins := []struct {
		name    string
		regular []byte
		bold    []byte
	}{
		{"go", goregular.TTF, gobold.TTF},
		{"go mono", gomono.TTF, gomonobold.TTF},
		{"go smallcaps", gosmallcaps.TTF, nil},
	}
	for _, b := range builtins {
		if err := register(b.name, false, b.regular); err != nil {
			builtinErr = err
			return
		}
		if b.bold != nil {
			if err := register(b.name, true, b.bold); err != nil {
				builtinErr = err
				return
			}
		}
	}
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Trim(name, `"'`)
	if a, ok := aliases[name]; ok {
		return a
	}
	return name
}

// RegisterFont parses TTF/OTF data and makes it available under family.
// bold selects which face of the family the data provides. Registering under
// an alias such as "sans-serif" replaces the built-in face it points to.
func RegisterFont(familyName string, bold bool, data []byte) error {
	builtinOnce.Do(loadBuiltins)
	return register(familyName, bold, data)
}

func register(familyName string, bold bool, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyFontData
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("text: failed to parse font %q: %w", familyName, err)
	}

	key := normalize(familyName)
	registryMu.Lock()
	defer registryMu.Unlock()
	fam, ok := registry[key]
	if !ok {
		fam = &family{}
		registry[key] = fam
	}
	if bold {
		fam.bold = f
	} else {
		fam.regular = f
	}
	return nil
}

// RegisterFontFile reads a font file from disk and registers it.
func RegisterFontFile(familyName, path string, bold bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("text: failed to read font file: %w", err)
	}
	return RegisterFont(familyName, bold, data)
}

// loadFontFile parses the font at path once and caches it by path. The
// family registry is not touched.
func loadFontFile(path string) (*opentype.Font, error) {
	fileMu.Lock()
	defer fileMu.Unlock()
	if f, ok := fileFaces[path]; ok {
		return f, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text: failed to read font file: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: failed to parse font file %q: %w", path, err)
	}
	fileFaces[path] = f
	return f, nil
}

// Lookup resolves a CSS-style family list ("Inter, sans-serif") to the first
// registered family and returns the face matching weight.
func Lookup(families string, weight int) (*opentype.Font, string, error) {
	builtinOnce.Do(loadBuiltins)
	if builtinErr != nil {
		return nil, "", builtinErr
	}

	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, name := range strings.Split(families, ",") {
		key := normalize(name)
		if fam, ok := registry[key]; ok {
			if f := fam.face(weight); f != nil {
				return f, key, nil
			}
		}
	}
	return nil, "", fmt.Errorf("%w: %q", ErrUnknownFont, families)
}
