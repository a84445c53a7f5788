package portfolio

import (
	"bytes"
	"image/png"
	"net/http"
	"testing"
)

func TestRenderOGImage(t *testing.T) {
	data, err := RenderOGImage("Test Site", "Full-Stack Developer")
	if err != nil {
		t.Fatalf("RenderOGImage: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != ogWidth || b.Dy() != ogHeight {
		t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), ogWidth, ogHeight)
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	if r>>8 != 0x1e || g>>8 != 0x40 || b>>8 != 0xaf {
		t.Errorf("top-left = %02x%02x%02x, want 1e40af", r>>8, g>>8, b>>8)
	}
}

func TestGradientEndpoints(t *testing.T) {
	if got := gradientAt(0); got != ogStops[0] {
		t.Errorf("gradientAt(0) = %v", got)
	}
	if got := gradientAt(0.5); got != ogStops[1] {
		t.Errorf("gradientAt(0.5) = %v", got)
	}
	if got := gradientAt(1); got != ogStops[2] {
		t.Errorf("gradientAt(1) = %v", got)
	}
}

func TestOGImageHandler(t *testing.T) {
	a := newTestApp(t, "")
	rec := serve(a, http.MethodGet, "/opengraph-image", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q", got)
	}
	if _, err := png.Decode(rec.Body); err != nil {
		t.Errorf("body is not a png: %v", err)
	}
}
