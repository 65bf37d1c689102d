package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/benbeisheim/chessboard-backend/internal/model"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultPNGSize = boardSize
	MinPNGSize     = 64
	MaxPNGSize     = 2048
)

// shapesSVG draws the board with a disc per piece. oksvg has no text support,
// so letters are added after rasterising.
func shapesSVG(b *model.Board, opts Options) string {
	var sb strings.Builder
	writeSquares(&sb, opts)
	for _, sq := range b.Squares() {
		fill, stroke := "#ffffff", "#000000"
		if sq.Piece.Color == model.Black {
			fill, stroke = "#202020", "#ffffff"
		}
		fmt.Fprintf(&sb, `<circle cx="%d" cy="%d" r="%d" fill="%s" stroke="%s" stroke-width="2"/>`,
			sq.Position.Col*squareSize+squareSize/2, sq.Position.Row*squareSize+squareSize/2,
			squareSize*2/5, fill, stroke)
		sb.WriteByte('\n')
	}
	return wrapSVG(sb.String())
}

// Image rasterises the board at its native size and scales it to opts.Size.
func Image(b *model.Board, opts Options) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(shapesSVG(b, opts)))
	if err != nil {
		return nil, fmt.Errorf("parse board svg: %w", err)
	}
	icon.SetTarget(0, 0, boardSize, boardSize)

	rgba := image.NewRGBA(image.Rect(0, 0, boardSize, boardSize))
	scanner := rasterx.NewScannerGV(boardSize, boardSize, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(boardSize, boardSize, scanner)
	icon.Draw(raster, 1.0)

	labelPieces(rgba, b)

	size := opts.Size
	if size == 0 || size == boardSize {
		return rgba, nil
	}
	if size < MinPNGSize || size > MaxPNGSize {
		return nil, fmt.Errorf("png size %d outside [%d, %d]", size, MinPNGSize, MaxPNGSize)
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), rgba, rgba.Bounds(), draw.Over, nil)
	return dst, nil
}

// labelPieces writes the piece letter (K, Q, R, B, N, P) in each disc.
func labelPieces(dst *image.RGBA, b *model.Board) {
	face := basicfont.Face7x13
	for _, sq := range b.Squares() {
		ink := color.Black
		if sq.Piece.Color == model.Black {
			ink = color.White
		}
		label := sq.Piece.Type.Notation()
		width := font.MeasureString(face, label)
		cx := sq.Position.Col*squareSize + squareSize/2
		cy := sq.Position.Row*squareSize + squareSize/2
		d := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(ink),
			Face: face,
			Dot:  fixed.P(cx-width.Round()/2, cy+face.Ascent/2),
		}
		d.DrawString(label)
	}
}

// PNG encodes Image as PNG bytes.
func PNG(b *model.Board, opts Options) ([]byte, error) {
	img, err := Image(b, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
