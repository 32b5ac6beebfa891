package barcode

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Sticker is one (label, barcode image) pair for sheet layout.
type Sticker struct {
	Label string
	Image []byte // PNG, bars only
}

// Sheet layout: US Letter, 3 columns by 10 rows of stickers, matching
// common 30-up sticker sheets. Dimensions in points.
const (
	sheetCols      = 3
	sheetRows      = 10
	sheetMarginX   = 36.0
	colSpacing     = 20.0
	rowSpacing     = 15.0
	stickerHeight  = 60.0
	captionHeight  = 12.0
	letterWidthPt  = 612.0
	letterHeightPt = 792.0
)

// MaxSkipSlots is the largest number of leading grid cells that can be
// skipped (one full sheet minus one sticker).
const MaxSkipSlots = sheetCols*sheetRows - 1

// RenderSheet lays stickers out on a Letter-size PDF grid. skipSlots
// leaves the first N cells of the first page empty so a partially used
// physical sticker sheet can be fed through the printer again.
func RenderSheet(stickers []Sticker, skipSlots int) ([]byte, error) {
	if skipSlots < 0 || skipSlots > MaxSkipSlots {
		return nil, fmt.Errorf("skip_slots must be between 0 and %d", MaxSkipSlots)
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	stickerW := (letterWidthPt - 2*sheetMarginX - (sheetCols-1)*colSpacing) / sheetCols
	gridH := sheetRows*stickerHeight + (sheetRows-1)*rowSpacing
	marginY := (letterHeightPt - gridH) / 2

	col := skipSlots % sheetCols
	row := skipSlots / sheetCols

	for i, s := range stickers {
		if s.Label == "" || len(s.Image) == 0 {
			return nil, fmt.Errorf("sticker %d: empty label or image", i)
		}

		x := sheetMarginX + float64(col)*(stickerW+colSpacing)
		y := marginY + float64(row)*(stickerHeight+rowSpacing)

		name := fmt.Sprintf("sticker-%d", i)
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(s.Image))
		pdf.ImageOptions(name, x, y, stickerW, stickerHeight-captionHeight-4, false, opts, 0, "")

		pdf.SetXY(x, y+stickerHeight-captionHeight)
		pdf.CellFormat(stickerW, captionHeight, s.Label, "", 0, "C", false, 0, "")

		col++
		if col >= sheetCols {
			col = 0
			row++
			if row >= sheetRows {
				pdf.AddPage()
				row = 0
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing sheet PDF: %w", err)
	}
	return buf.Bytes(), nil
}
