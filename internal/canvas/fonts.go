package canvas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// FontLibrary loads truetype fonts by family name from a font directory
// and caches the parsed fonts. Families without a matching file fall back
// to the embedded Go Regular face, so text always renders.
type FontLibrary struct {
	dir string

	mu       sync.Mutex
	parsed   map[string]*truetype.Font
	fallback *truetype.Font
}

// NewFontLibrary builds a library over dir. dir may be empty, in which
// case every family resolves to the fallback face.
func NewFontLibrary(dir string) (*FontLibrary, error) {
	fallback, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded fallback font: %w", err)
	}
	return &FontLibrary{
		dir:      dir,
		parsed:   make(map[string]*truetype.Font),
		fallback: fallback,
	}, nil
}

// Face returns a rendering face for the family at the given point size.
// size must already be normalized (finite, within the font-size clamp).
func (l *FontLibrary) Face(family string, size float64) font.Face {
	return truetype.NewFace(l.lookup(family), &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func (l *FontLibrary) lookup(family string) *truetype.Font {
	key := strings.ToLower(strings.TrimSpace(family))
	if key == "" {
		key = strings.ToLower(DefaultFont)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if f, ok := l.parsed[key]; ok {
		return f
	}

	f := l.load(key)
	l.parsed[key] = f
	return f
}

func (l *FontLibrary) load(key string) *truetype.Font {
	if l.dir == "" {
		return l.fallback
	}
	for _, name := range []string{key + ".ttf", strings.ReplaceAll(key, " ", "-") + ".ttf"} {
		raw, err := os.ReadFile(filepath.Join(l.dir, name))
		if err != nil {
			continue
		}
		parsed, err := truetype.Parse(raw)
		if err != nil {
			continue
		}
		return parsed
	}
	return l.fallback
}
