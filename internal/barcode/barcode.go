// Package barcode renders Code 128 labels for inventory units, as single
// PNG stickers and as printable sticker-sheet PDFs.
package barcode

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/boombuler/barcode/code128"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Rendered label dimensions in pixels.
const (
	labelWidth  = 360
	barsHeight  = 110
	textBand    = 22
	labelHeight = barsHeight + textBand
)

// RenderLabel renders a Code 128 barcode for label text with the text
// printed underneath, suitable for single-sticker download and reprint.
func RenderLabel(text string) ([]byte, error) {
	img, err := renderBars(text, labelWidth, labelHeight)
	if err != nil {
		return nil, err
	}
	drawCaption(img, text)
	return encodePNG(img)
}

// RenderBars renders a Code 128 barcode without a caption. Sheet layout
// typesets the caption itself, so the bitmap stays bars-only.
func RenderBars(text string) ([]byte, error) {
	img, err := renderBars(text, labelWidth, barsHeight)
	if err != nil {
		return nil, err
	}
	return encodePNG(img)
}

// renderBars encodes text as Code 128 and scales the bar pattern onto a
// white canvas of the given size, leaving the caption band (if any) blank.
func renderBars(text string, w, h int) (*image.RGBA, error) {
	if text == "" {
		return nil, fmt.Errorf("empty barcode text")
	}

	code, err := code128.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("encoding code128: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	// Nearest-neighbor keeps module edges sharp; interpolation would
	// produce gray bars that scanners misread.
	barsRect := image.Rect(0, 0, w, h)
	if h > barsHeight {
		barsRect.Max.Y = barsHeight
	}
	draw.NearestNeighbor.Scale(img, barsRect, code, code.Bounds(), draw.Src, nil)

	return img, nil
}

// drawCaption prints the label text centered in the band below the bars.
func drawCaption(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}

	width := d.MeasureString(text)
	x := (fixed.I(img.Bounds().Dx()) - width) / 2
	if x < 0 {
		x = 0
	}
	d.Dot = fixed.Point26_6{
		X: x,
		Y: fixed.I(barsHeight + (textBand+face.Ascent)/2),
	}
	d.DrawString(text)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}
