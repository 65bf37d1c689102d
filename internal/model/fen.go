package model

import (
	"fmt"
	"strings"
)

var fenPieces = map[byte]PieceType{
	'p': Pawn,
	'n': Knight,
	'b': Bishop,
	'r': Rook,
	'q': Queen,
	'k': King,
}

// BoardFromFEN builds a board from the piece placement field of a FEN record.
// Any fields after the placement are ignored.
func BoardFromFEN(fen string) (*Board, error) {
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidFEN)
	}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("%w: %d ranks", ErrInvalidFEN, len(ranks))
	}

	b := EmptyBoard()
	for row, rank := range ranks {
		col := 0
		for i := 0; i < len(rank); i++ {
			ch := rank[i]
			if ch >= '1' && ch <= '8' {
				col += int(ch - '0')
				continue
			}
			color := White
			lower := ch
			if ch >= 'a' && ch <= 'z' {
				color = Black
			} else {
				lower = ch + ('a' - 'A')
			}
			kind, ok := fenPieces[lower]
			if !ok {
				return nil, fmt.Errorf("%w: unexpected %q in rank %d", ErrInvalidFEN, ch, 8-row)
			}
			if col > 7 {
				return nil, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, 8-row)
			}
			b.grid[row][col] = &Piece{Type: kind, Color: color}
			col++
		}
		if col != 8 {
			return nil, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, 8-row, col)
		}
	}
	return b, nil
}

// FEN returns the piece placement field for the board.
func (b *Board) FEN() string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		empty := 0
		for col := 0; col < 8; col++ {
			pc := b.grid[row][col]
			if pc == nil {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			ch := pc.Type.Notation()[0]
			if pc.Color == Black {
				ch += 'a' - 'A'
			}
			sb.WriteByte(ch)
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if row < 7 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}
