package sprite

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spritepack/spritepack/pkg/errors"
	"github.com/spritepack/spritepack/pkg/pack"
)

// writeTestPNG writes a solid-color PNG of the given size.
func writeTestPNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestLoadDirSortedOrder(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "zebra.png"), 8, 8, color.NRGBA{R: 255, A: 255})
	writeTestPNG(t, filepath.Join(dir, "apple.png"), 4, 6, color.NRGBA{G: 255, A: 255})
	writeTestPNG(t, filepath.Join(dir, "mango.png"), 10, 2, color.NRGBA{B: 255, A: 255})

	sources, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if len(sources) != 3 {
		t.Fatalf("LoadDir() returned %d sources, want 3", len(sources))
	}

	wantNames := []string{"apple", "mango", "zebra"}
	for i, want := range wantNames {
		if sources[i].Name != want {
			t.Errorf("sources[%d].Name = %q, want %q", i, sources[i].Name, want)
		}
	}
	if sources[0].Width != 4 || sources[0].Height != 6 {
		t.Errorf("apple dimensions = %dx%d, want 4x6", sources[0].Width, sources[0].Height)
	}
}

func TestLoadDirSkipsUnsupported(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "icon.png"), 8, 8, color.NRGBA{A: 255})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0755); err != nil {
		t.Fatal(err)
	}

	sources, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("LoadDir() returned %d sources, want 1", len(sources))
	}
}

func TestLoadDirEmpty(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	if errors.GetCode(err) != errors.ErrCodeEmptyInput {
		t.Errorf("LoadDir() error code = %v, want %v", errors.GetCode(err), errors.ErrCodeEmptyInput)
	}
}

func TestLoadDirMissing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("LoadDir() error = nil for missing directory")
	}
}

func TestLoadDirCorruptImage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.png"), []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadDir(dir)
	if errors.GetCode(err) != errors.ErrCodeInvalidItem {
		t.Errorf("LoadDir() error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidItem)
	}
}

func TestItems(t *testing.T) {
	sources := []Source{
		{Name: "a", Width: 4, Height: 6},
		{Name: "b", Width: 10, Height: 2},
	}
	items := Items(sources)
	if len(items) != 2 {
		t.Fatalf("Items() returned %d items, want 2", len(items))
	}
	if items[0].ID != "a" || items[0].Width != 4 || items[0].Height != 6 {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].ID != "b" || items[1].Width != 10 || items[1].Height != 2 {
		t.Errorf("items[1] = %+v", items[1])
	}
}

func TestCompose(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "red.png"), 4, 4, color.NRGBA{R: 255, A: 255})
	writeTestPNG(t, filepath.Join(dir, "green.png"), 4, 4, color.NRGBA{G: 255, A: 255})

	sources, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}

	layout, err := pack.Pack(context.Background(), Items(sources))
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	sheet, err := Compose(sources, *layout, 1)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if sheet.Retina != nil {
		t.Error("Compose() with scale 1 produced a retina sheet")
	}

	bounds := sheet.Base.Bounds()
	if bounds.Dx() != layout.Width || bounds.Dy() != layout.Height {
		t.Errorf("sheet size = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), layout.Width, layout.Height)
	}

	// Each placement region must carry its source color.
	for _, p := range layout.Placements {
		got := sheet.Base.NRGBAAt(p.X, p.Y)
		switch p.ID {
		case "red":
			if got.R != 255 || got.G != 0 {
				t.Errorf("pixel at red placement = %+v", got)
			}
		case "green":
			if got.G != 255 || got.R != 0 {
				t.Errorf("pixel at green placement = %+v", got)
			}
		}
	}
}

func TestComposeRetina(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "dot.png"), 2, 2, color.NRGBA{B: 255, A: 255})

	sources, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	layout, err := pack.Pack(context.Background(), Items(sources))
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	sheet, err := Compose(sources, *layout, 2)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if sheet.Retina == nil {
		t.Fatal("Compose() with scale 2 produced no retina sheet")
	}
	bounds := sheet.Retina.Bounds()
	if bounds.Dx() != layout.Width*2 || bounds.Dy() != layout.Height*2 {
		t.Errorf("retina size = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), layout.Width*2, layout.Height*2)
	}
	// Nearest neighbor keeps the solid color exact.
	got := sheet.Retina.NRGBAAt(0, 0)
	if got.B != 255 {
		t.Errorf("retina pixel = %+v, want blue", got)
	}
}

func TestComposeUnknownPlacement(t *testing.T) {
	layout := pack.Layout{
		Width:  4,
		Height: 4,
		Placements: []pack.Placement{
			{ID: "ghost", Width: 4, Height: 4},
		},
	}
	_, err := Compose(nil, layout, 1)
	if errors.GetCode(err) != errors.ErrCodeInternal {
		t.Errorf("Compose() error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInternal)
	}
}

func TestComposeInvalidScale(t *testing.T) {
	_, err := Compose(nil, pack.Layout{}, 0)
	if errors.GetCode(err) != errors.ErrCodeInvalidScale {
		t.Errorf("Compose() error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidScale)
	}
}
