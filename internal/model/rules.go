package model

// Reason codes reported in a Verdict when a move is refused.
const (
	ReasonOutOfBounds = "out-of-bounds"
	ReasonEmptySource = "empty-source"
	ReasonSameSquare  = "same-square"
	ReasonIllegal     = "illegal"
	ReasonBlocked     = "blocked"
	ReasonOwnPiece    = "own-piece"
)

// IsLegalMove reports whether piece may move from one square to another.
// isCapture tells whether the destination is occupied and isFirstMove whether a
// pawn still stands on its starting rank. Paths are not checked for blockers and
// the colour of a captured piece is not consulted.
func IsLegalMove(piece Piece, from, to Position, isCapture, isFirstMove bool) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	dRow := to.Row - from.Row
	dCol := to.Col - from.Col

	switch piece.Type {
	case Pawn:
		return isPawnMove(piece.Color, dRow, dCol, isCapture, isFirstMove)
	case Rook:
		return isRookMove(dRow, dCol)
	case Knight:
		return isKnightMove(dRow, dCol)
	case Bishop:
		return isBishopMove(dRow, dCol)
	case Queen:
		return isRookMove(dRow, dCol) || isBishopMove(dRow, dCol)
	case King:
		return isKingMove(dRow, dCol)
	default:
		return false
	}
}

func isPawnMove(color Color, dRow, dCol int, isCapture, isFirstMove bool) bool {
	if !color.Valid() {
		return false
	}
	fwd := color.forward()
	if dCol == 0 && !isCapture {
		if dRow == fwd {
			return true
		}
		if dRow == 2*fwd && isFirstMove {
			return true
		}
	}
	if abs(dCol) == 1 && dRow == fwd && isCapture {
		return true
	}
	return false
}

func isRookMove(dRow, dCol int) bool {
	return (dRow == 0) != (dCol == 0)
}

func isKnightMove(dRow, dCol int) bool {
	r, c := abs(dRow), abs(dCol)
	return (r == 1 && c == 2) || (r == 2 && c == 1)
}

func isBishopMove(dRow, dCol int) bool {
	return dRow != 0 && abs(dRow) == abs(dCol)
}

func isKingMove(dRow, dCol int) bool {
	return abs(dRow) <= 1 && abs(dCol) <= 1 && (dRow != 0 || dCol != 0)
}

// IsFirstPawnMove reports whether piece is a pawn standing on its starting rank.
func IsFirstPawnMove(piece Piece, from Position) bool {
	if piece.Type != Pawn {
		return false
	}
	return (piece.Color == White && from.Row == 6) || (piece.Color == Black && from.Row == 1)
}

// Rules applies IsLegalMove against a board. The zero value reproduces the
// permissive rule set. Strict additionally requires clear paths for sliding
// pieces and the pawn double step, and refuses captures of the mover's own colour.
type Rules struct {
	Strict bool
}

type Verdict struct {
	Legal    bool     `json:"legal"`
	Piece    *Piece   `json:"piece,omitempty"`
	From     Position `json:"from"`
	To       Position `json:"to"`
	Capture  bool     `json:"capture"`
	Captured *Piece   `json:"captured,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// Evaluate derives the capture and first-move context for a move from the board
// and judges it. The board is never modified.
func (r Rules) Evaluate(b *Board, from, to Position) Verdict {
	v := Verdict{From: from, To: to}
	if !from.Valid() || !to.Valid() {
		v.Reason = ReasonOutOfBounds
		return v
	}
	pc, ok := b.PieceAt(from)
	if !ok {
		v.Reason = ReasonEmptySource
		return v
	}
	v.Piece = &pc
	if from == to {
		v.Reason = ReasonSameSquare
		return v
	}
	if target, ok := b.PieceAt(to); ok {
		v.Capture = true
		v.Captured = &target
	}

	if !IsLegalMove(pc, from, to, v.Capture, IsFirstPawnMove(pc, from)) {
		v.Reason = ReasonIllegal
		return v
	}
	if r.Strict {
		if v.Captured != nil && v.Captured.Color == pc.Color {
			v.Reason = ReasonOwnPiece
			return v
		}
		if !pathClear(b, from, to) {
			v.Reason = ReasonBlocked
			return v
		}
	}
	v.Legal = true
	return v
}

// Destinations lists every square the piece on from may move to.
func (r Rules) Destinations(b *Board, from Position) []Position {
	if !b.IsOccupied(from) {
		return nil
	}
	var out []Position
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			to := Position{Row: row, Col: col}
			if r.Evaluate(b, from, to).Legal {
				out = append(out, to)
			}
		}
	}
	return out
}

// pathClear walks unit steps from from toward to and requires every square in
// between to be empty. Moves that are not on a line (knight hops) are clear.
func pathClear(b *Board, from, to Position) bool {
	dRow, dCol := to.Row-from.Row, to.Col-from.Col
	if dRow != 0 && dCol != 0 && abs(dRow) != abs(dCol) {
		return true
	}
	stepRow, stepCol := sign(dRow), sign(dCol)
	cur := Position{Row: from.Row + stepRow, Col: from.Col + stepCol}
	for cur != to {
		if b.IsOccupied(cur) {
			return false
		}
		cur = Position{Row: cur.Row + stepRow, Col: cur.Col + stepCol}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
