// Package render draws boards for the browser front end, as SVG with Unicode
// piece glyphs or as a rasterised PNG.
package render

import (
	"fmt"
	"strings"

	"github.com/benbeisheim/chessboard-backend/internal/model"
)

const (
	squareSize = 60
	boardSize  = squareSize * 8

	lightSquare     = "#f0d9b5"
	darkSquare      = "#b58863"
	selectedSquare  = "#f6f669"
	highlightSquare = "#9bc700"
)

// glyphs are the HTML entity code points the page has always shown.
var glyphs = map[model.Color]map[model.PieceType]rune{
	model.White: {
		model.King:   '♔', // &#9812;
		model.Queen:  '♕',
		model.Rook:   '♖',
		model.Bishop: '♗',
		model.Knight: '♘',
		model.Pawn:   '♙',
	},
	model.Black: {
		model.King:   '♚', // &#9818;
		model.Queen:  '♛',
		model.Rook:   '♜',
		model.Bishop: '♝',
		model.Knight: '♞',
		model.Pawn:   '♟',
	},
}

// Glyph returns the chess symbol for pc, or false for an unknown piece.
func Glyph(pc model.Piece) (rune, bool) {
	byType, ok := glyphs[pc.Color]
	if !ok {
		return 0, false
	}
	r, ok := byType[pc.Type]
	return r, ok
}

// HTMLEntity returns the numeric character reference for pc, e.g. "&#9817;".
func HTMLEntity(pc model.Piece) string {
	r, ok := Glyph(pc)
	if !ok {
		return ""
	}
	return fmt.Sprintf("&#%d;", r)
}

type Options struct {
	Selected   *model.Position
	Highlights []model.Position
	// Size is the edge length of PNG output in pixels. SVG output scales freely.
	Size int
}

func squareFill(pos model.Position, opts Options) string {
	if opts.Selected != nil && *opts.Selected == pos {
		return selectedSquare
	}
	for _, h := range opts.Highlights {
		if h == pos {
			return highlightSquare
		}
	}
	if (pos.Row+pos.Col)%2 == 0 {
		return lightSquare
	}
	return darkSquare
}

// SVG renders the board with glyph text for every piece.
func SVG(b *model.Board, opts Options) string {
	var sb strings.Builder
	writeSquares(&sb, opts)
	for _, sq := range b.Squares() {
		r, ok := Glyph(sq.Piece)
		if !ok {
			continue
		}
		x := sq.Position.Col*squareSize + squareSize/2
		y := sq.Position.Row*squareSize + squareSize/2
		fmt.Fprintf(&sb,
			`<text x="%d" y="%d" font-size="%d" text-anchor="middle" dominant-baseline="central" data-row="%d" data-col="%d" data-piece="%s">%c</text>`,
			x, y, squareSize*3/4, sq.Position.Row, sq.Position.Col, HTMLEntity(sq.Piece), r)
		sb.WriteByte('\n')
	}
	return wrapSVG(sb.String())
}

func writeSquares(sb *strings.Builder, opts Options) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			pos := model.Position{Row: row, Col: col}
			fmt.Fprintf(sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`,
				col*squareSize, row*squareSize, squareSize, squareSize, squareFill(pos, opts))
			sb.WriteByte('\n')
		}
	}
}

func wrapSVG(body string) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n%s</svg>\n",
		boardSize, boardSize, boardSize, boardSize, body)
}
