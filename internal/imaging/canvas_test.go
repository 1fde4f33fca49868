package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func rgbAt(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestNewCanvas_DoesNotShareSource(t *testing.T) {
	src := createInMemoryImage(10, 10, color.White)
	c := NewCanvas(src)
	c.Disc(5, 5, 2, color.Black)

	if r, _, _ := rgbAt(src, 5, 5); r != 255 {
		t.Error("drawing on the canvas modified the source image")
	}
	if r, _, _ := rgbAt(c.img, 5, 5); r != 0 {
		t.Error("disc centre should be black on the canvas")
	}
}

func TestCanvas_Circle(t *testing.T) {
	c := NewCanvas(createInMemoryImage(50, 50, color.White))
	c.Circle(25, 25, 10, 1, color.RGBA{255, 0, 0, 255})

	if r, g, _ := rgbAt(c.img, 35, 25); r != 255 || g != 0 {
		t.Errorf("point on circle: got r=%d g=%d, want red", r, g)
	}
	if _, g, _ := rgbAt(c.img, 25, 25); g != 255 {
		t.Error("circle centre should stay white")
	}
}

func TestCanvas_Line(t *testing.T) {
	c := NewCanvas(createInMemoryImage(30, 30, color.White))
	c.Line(2, 15, 27, 15, 1, color.Black)

	for _, x := range []int{2, 10, 20, 27} {
		if r, _, _ := rgbAt(c.img, x, 15); r != 0 {
			t.Errorf("line pixel at (%d,15) is not black", x)
		}
	}
	if r, _, _ := rgbAt(c.img, 10, 5); r != 255 {
		t.Error("pixel off the line should stay white")
	}
}

func TestCanvas_ClipsOutsideBounds(t *testing.T) {
	c := NewCanvas(createInMemoryImage(10, 10, color.White))
	// Should not panic
	c.Circle(-20, -20, 100, 3, color.Black)
	c.Line(-5, -5, 50, 50, 2, color.Black)
	c.Label(8, 8, "123.45", 2, color.White, color.Black)
}

func TestCanvas_Label(t *testing.T) {
	c := NewCanvas(createInMemoryImage(40, 20, color.White))
	c.Label(2, 2, "1", 1, color.Black, color.RGBA{0, 0, 255, 255})

	// Glyph '1' row 0 is "010": (3,2) is ink, (2,2) is background
	if r, _, b := rgbAt(c.img, 3, 2); r != 0 || b != 0 {
		t.Errorf("glyph pixel: got r=%d b=%d, want black", r, b)
	}
	if r, _, b := rgbAt(c.img, 2, 2); r != 0 || b != 255 {
		t.Errorf("background pixel: got r=%d b=%d, want blue", r, b)
	}
}

func TestCanvas_Encode(t *testing.T) {
	c := NewCanvas(createInMemoryImage(30, 20, color.White))
	result, err := c.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if result.Width != 30 || result.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	if _, err := png.Decode(strings.NewReader(string(decoded))); err != nil {
		t.Errorf("payload is not a PNG: %v", err)
	}
}

func TestCanvas_Save(t *testing.T) {
	c := NewCanvas(createInMemoryImage(10, 10, color.White))
	path := filepath.Join(t.TempDir(), "overlay.jpg")
	if err := c.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("overlay file missing: %v", err)
	}
}
