package portfolio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	ogWidth  = 1200
	ogHeight = 630
)

var ogStops = []color.RGBA{
	{0x1e, 0x40, 0xaf, 0xff},
	{0x7c, 0x3a, 0xed, 0xff},
	{0xec, 0x48, 0x99, 0xff},
}

// RenderOGImage draws the 1200x630 share image: a diagonal gradient with
// the title and subtitle centered in white.
func RenderOGImage(title, subtitle string) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, ogWidth, ogHeight))
	for y := 0; y < ogHeight; y++ {
		for x := 0; x < ogWidth; x++ {
			t := (float64(x)/ogWidth + float64(y)/ogHeight) / 2
			img.SetRGBA(x, y, gradientAt(t))
		}
	}

	drawCentered(img, title, 6, ogHeight/2-60)
	if subtitle != "" {
		drawCentered(img, subtitle, 3, ogHeight/2+50)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode og image: %w", err)
	}
	return buf.Bytes(), nil
}

// gradientAt interpolates ogStops evenly over t in [0, 1].
func gradientAt(t float64) color.RGBA {
	seg := t * float64(len(ogStops)-1)
	i := int(seg)
	if i >= len(ogStops)-1 {
		return ogStops[len(ogStops)-1]
	}
	f := seg - float64(i)
	a, b := ogStops[i], ogStops[i+1]
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*f) }
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 0xff}
}

// drawCentered renders s in the 7x13 bitmap face, scales it up by scale
// and composites it horizontally centered at vertical center cy.
func drawCentered(dst *image.RGBA, s string, scale, cy int) {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	w := d.MeasureString(s).Ceil()
	if w == 0 {
		return
	}
	if limit := ogWidth - 80; w*scale > limit {
		scale = max(1, limit/w)
	}
	h := face.Metrics().Height.Ceil()
	text := image.NewRGBA(image.Rect(0, 0, w, h))
	d.Dst = text
	d.Src = image.White
	d.Dot = fixed.P(0, face.Metrics().Ascent.Ceil())
	d.DrawString(s)

	sw, sh := w*scale, h*scale
	x0, y0 := (ogWidth-sw)/2, cy-sh/2
	draw.NearestNeighbor.Scale(dst, image.Rect(x0, y0, x0+sw, y0+sh), text, text.Bounds(), draw.Over, nil)
}

func (a *App) handleOGImage(c echo.Context) error {
	a.ogOnce.Do(func() {
		subtitle := a.Config.Tagline
		if subtitle == "" {
			subtitle = a.Config.Description
		}
		a.ogPNG, a.ogErr = RenderOGImage(a.Config.Name, subtitle)
	})
	if a.ogErr != nil {
		return a.ogErr
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, "image/png", a.ogPNG)
}
