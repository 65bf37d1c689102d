package model

import (
	"encoding/json"
	"fmt"
)

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

// Notation is the upper-case FEN letter for the piece type, or "" if unknown.
func (p PieceType) Notation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return ""
}

func (p PieceType) Valid() bool {
	return p.Notation() != ""
}

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Valid() bool {
	return c == White || c == Black
}

// forward is the row delta of a single pawn step for the color.
func (c Color) forward() int {
	if c == White {
		return -1
	}
	return 1
}

type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

func (p Piece) String() string {
	return fmt.Sprintf("%s %s", p.Color, p.Type)
}

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < 8 && p.Col >= 0 && p.Col < 8
}

// Square returns the algebraic name of the position, column 0 being file a and
// row 7 being rank 1.
func (p Position) Square() string {
	return fmt.Sprintf("%c%d", p.Col+'a', 8-p.Row)
}

func (p Position) String() string {
	if !p.Valid() {
		return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
	}
	return p.Square()
}

func ParseSquare(s string) (Position, error) {
	if len(s) != 2 {
		return Position{}, fmt.Errorf("square %q: %w", s, ErrOutOfBounds)
	}
	pos := Position{Row: 8 - int(s[1]-'0'), Col: int(s[0] - 'a')}
	if !pos.Valid() {
		return Position{}, fmt.Errorf("square %q: %w", s, ErrOutOfBounds)
	}
	return pos, nil
}

// Square pairs an occupied position with its piece.
type Square struct {
	Position Position `json:"position"`
	Piece    Piece    `json:"piece"`
}

type Board struct {
	grid [8][8]*Piece
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns a board in the standard starting layout.
func NewBoard() *Board {
	b := &Board{}
	for col := 0; col < 8; col++ {
		b.grid[0][col] = &Piece{Type: backRank[col], Color: Black}
		b.grid[1][col] = &Piece{Type: Pawn, Color: Black}
		b.grid[6][col] = &Piece{Type: Pawn, Color: White}
		b.grid[7][col] = &Piece{Type: backRank[col], Color: White}
	}
	return b
}

// EmptyBoard returns a board with no pieces on it.
func EmptyBoard() *Board {
	return &Board{}
}

func (b *Board) PieceAt(pos Position) (Piece, bool) {
	if !pos.Valid() {
		return Piece{}, false
	}
	pc := b.grid[pos.Row][pos.Col]
	if pc == nil {
		return Piece{}, false
	}
	return *pc, true
}

func (b *Board) IsOccupied(pos Position) bool {
	_, ok := b.PieceAt(pos)
	return ok
}

// Put places pc on pos, replacing any occupant.
func (b *Board) Put(pos Position, pc Piece) error {
	if !pos.Valid() {
		return fmt.Errorf("put %s: %w", pos, ErrOutOfBounds)
	}
	if !pc.Type.Valid() || !pc.Color.Valid() {
		return fmt.Errorf("put %q %q on %s: %w", pc.Color, pc.Type, pos, ErrInvalidPiece)
	}
	b.grid[pos.Row][pos.Col] = &Piece{Type: pc.Type, Color: pc.Color}
	return nil
}

// Relocate moves the occupant of from onto to. Whatever stood on to is removed.
// No legality check is made here.
func (b *Board) Relocate(from, to Position) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("relocate %s to %s: %w", from, to, ErrOutOfBounds)
	}
	pc := b.grid[from.Row][from.Col]
	if pc == nil {
		return fmt.Errorf("relocate from %s: %w", from, ErrEmptySquare)
	}
	b.grid[from.Row][from.Col] = nil
	b.grid[to.Row][to.Col] = pc
	return nil
}

func (b *Board) Clone() *Board {
	c := &Board{}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if pc := b.grid[row][col]; pc != nil {
				cp := *pc
				c.grid[row][col] = &cp
			}
		}
	}
	return c
}

// Count returns the number of occupied squares.
func (b *Board) Count() int {
	n := 0
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if b.grid[row][col] != nil {
				n++
			}
		}
	}
	return n
}

// Squares lists occupied squares in row-major order.
func (b *Board) Squares() []Square {
	squares := make([]Square, 0, 32)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if pc := b.grid[row][col]; pc != nil {
				squares = append(squares, Square{Position: Position{Row: row, Col: col}, Piece: *pc})
			}
		}
	}
	return squares
}

// MarshalJSON keeps the board[row][col] layout the front end indexes into.
func (b *Board) MarshalJSON() ([]byte, error) {
	rows := make([][]*Piece, 8)
	for row := 0; row < 8; row++ {
		rows[row] = make([]*Piece, 8)
		for col := 0; col < 8; col++ {
			if pc := b.grid[row][col]; pc != nil {
				cp := *pc
				rows[row][col] = &cp
			}
		}
	}
	return json.Marshal(rows)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [][]*Piece
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	if len(rows) != 8 {
		return fmt.Errorf("board has %d rows, want 8", len(rows))
	}
	var grid [8][8]*Piece
	for row := range rows {
		if len(rows[row]) != 8 {
			return fmt.Errorf("board row %d has %d columns, want 8", row, len(rows[row]))
		}
		for col, pc := range rows[row] {
			if pc == nil {
				continue
			}
			if !pc.Type.Valid() || !pc.Color.Valid() {
				return fmt.Errorf("board square %s: invalid piece %q", Position{Row: row, Col: col}, pc.String())
			}
			grid[row][col] = pc
		}
	}
	b.grid = grid
	return nil
}
