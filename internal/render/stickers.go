package render

import (
	"fmt"
	"io"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/store"
)

const stickersPerSheet = 9

type stickerPage struct {
	Title     string
	Thickness string
	Contact   string
	Sheets    []int
	Cells     []int
}

var stickerTmpl = mustParse("stickers", `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Stickers</title>
<style>
body { font-family: "Segoe UI", Arial, sans-serif; margin: 0; }
.sheet { display: grid; grid-template-columns: repeat(3, 1fr); gap: 4mm; padding: 8mm; page-break-after: always; }
.sticker { border: 1px dashed #999; border-radius: 4px; text-align: center; padding: 8mm 4mm; }
.sticker h2 { margin: 0 0 3mm; font-size: 16px; }
.sticker .thickness { font-size: 22px; font-weight: bold; margin: 2mm 0; }
.sticker .contact { font-size: 11px; color: #555; }
@media print { .sheet { padding: 4mm; } }
</style>
</head>
<body>
{{$p := .}}
{{range .Sheets}}
<div class="sheet">
{{range $p.Cells}}
<div class="sticker">
<h2>{{$p.Title}}</h2>
<div class="thickness">{{$p.Thickness}}</div>
{{if $p.Contact}}<div class="contact">{{$p.Contact}}</div>{{end}}
</div>
{{end}}
</div>
{{end}}
</body>
</html>
`)

// Stickers writes printable label sheets, nine stickers per page.
func Stickers(w io.Writer, req domain.StickerRequest) error {
	if req.Thickness == "" {
		return fmt.Errorf("thickness is required: %w", store.ErrValidation)
	}
	sheets := req.Sheets
	if sheets <= 0 {
		sheets = 1
	}
	if sheets > 50 {
		return fmt.Errorf("at most 50 sheets per request: %w", store.ErrValidation)
	}
	page := stickerPage{
		Title:     req.Title,
		Thickness: req.Thickness,
		Contact:   req.Contact,
		Sheets:    make([]int, sheets),
		Cells:     make([]int, stickersPerSheet),
	}
	if err := stickerTmpl.Execute(w, page); err != nil {
		return fmt.Errorf("render stickers: %w", err)
	}
	return nil
}
