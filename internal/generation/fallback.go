package generation

import (
	"fmt"
	"io/fs"
	"math/rand/v2"
	"path"
	"sort"
	"strings"
	"sync/atomic"
)

// Fallback selection modes.
const (
	ModeIcon     = "icon"
	ModeRandom   = "random"
	ModeSequence = "sequence"
)

// Fallbacks hands out placeholder images. In icon mode every call returns
// the inline SVG icon; random and sequence modes return relative asset
// paths under urlPrefix.
type Fallbacks struct {
	mode  string
	icon  string
	paths []string
	next  atomic.Uint64
}

// NewFallbacks reads the placeholder set from dir in assets. iconName must
// exist in dir.
func NewFallbacks(mode string, assets fs.FS, dir, iconName, urlPrefix string) (*Fallbacks, error) {
	switch mode {
	case ModeIcon, ModeRandom, ModeSequence:
	default:
		return nil, fmt.Errorf("unknown fallback mode %q", mode)
	}

	iconData, err := fs.ReadFile(assets, path.Join(dir, iconName))
	if err != nil {
		return nil, fmt.Errorf("read fallback icon: %w", err)
	}

	entries, err := fs.ReadDir(assets, dir)
	if err != nil {
		return nil, fmt.Errorf("read fallback dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		paths = append(paths, strings.TrimRight(urlPrefix, "/")+"/"+e.Name())
	}
	sort.Strings(paths)

	return &Fallbacks{
		mode:  mode,
		icon:  DataURI("image/svg+xml", iconData),
		paths: paths,
	}, nil
}

// Icon returns the inline SVG icon as a data URI.
func (f *Fallbacks) Icon() string { return f.icon }

// Paths returns the relative asset paths in sequence order.
func (f *Fallbacks) Paths() []string { return f.paths }

// Image returns the next placeholder. It never returns "".
func (f *Fallbacks) Image() string {
	if len(f.paths) == 0 {
		return f.icon
	}
	switch f.mode {
	case ModeRandom:
		return f.paths[rand.IntN(len(f.paths))]
	case ModeSequence:
		i := f.next.Add(1) - 1
		return f.paths[i%uint64(len(f.paths))]
	default:
		return f.icon
	}
}
