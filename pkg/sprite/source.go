package sprite

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	// Registered decoders for the supported source formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"

	"github.com/spritepack/spritepack/pkg/errors"
	"github.com/spritepack/spritepack/pkg/pack"
)

// supportedExtensions lists the source image formats that LoadDir accepts.
var supportedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
}

// Source is a decoded source image together with its sprite name.
// The name is the filename without extension and becomes the CSS class
// suffix. Hash is the hex SHA-256 of the raw file bytes and feeds the
// pipeline cache keys.
type Source struct {
	Name   string
	Path   string
	Image  image.Image
	Width  int
	Height int
	Hash   string
}

// LoadDir loads all supported images from dir in sorted filename order.
// Sorting makes the item order, and with it the packed layout, deterministic
// across runs. Unsupported files are skipped silently.
func LoadDir(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read source directory %s", dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if supportedExtensions[ext] {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "no source images found in %s", dir)
	}

	sources := make([]Source, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		src, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// loadFile decodes a single source image.
func loadFile(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Source{}, errors.Wrap(errors.ErrCodeInvalidItem, err, "decode %s", path)
	}

	bounds := img.Bounds()
	base := filepath.Base(path)
	return Source{
		Name:   strings.TrimSuffix(base, filepath.Ext(base)),
		Path:   path,
		Image:  img,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Hash:   fmt.Sprintf("%x", sha256.Sum256(data)),
	}, nil
}

// Items converts sources to packing items, preserving order.
func Items(sources []Source) []pack.Item {
	items := make([]pack.Item, len(sources))
	for i, src := range sources {
		items[i] = pack.Item{
			ID:     src.Name,
			Width:  src.Width,
			Height: src.Height,
		}
	}
	return items
}
