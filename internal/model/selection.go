package model

// Selection is a picked-up piece waiting for a destination.
type Selection struct {
	Piece Piece    `json:"piece"`
	From  Position `json:"from"`
}

type OutcomeKind string

const (
	OutcomeSelected OutcomeKind = "selected"
	OutcomeIgnored  OutcomeKind = "ignored"
	OutcomeMoved    OutcomeKind = "moved"
	OutcomeRejected OutcomeKind = "rejected"
)

type Outcome struct {
	Kind    OutcomeKind `json:"kind"`
	Verdict *Verdict    `json:"verdict,omitempty"`
}

// Click handles one square click. pending is the current selection (nil when
// none) and the returned selection replaces it. A click with no pending
// selection picks up the piece on pos; any click with a pending selection
// attempts the move and clears the selection whatever the verdict.
func (r Rules) Click(b *Board, pending *Selection, pos Position) (*Selection, Outcome) {
	if pending == nil {
		pc, ok := b.PieceAt(pos)
		if !ok {
			return nil, Outcome{Kind: OutcomeIgnored}
		}
		return &Selection{Piece: pc, From: pos}, Outcome{Kind: OutcomeSelected}
	}

	v, err := r.Apply(b, pending.From, pos)
	if err != nil {
		return nil, Outcome{Kind: OutcomeRejected, Verdict: &v}
	}
	return nil, Outcome{Kind: OutcomeMoved, Verdict: &v}
}

// Apply evaluates a move and relocates the piece when it is legal. An illegal
// move leaves the board untouched and returns ErrIllegalMove with the verdict.
func (r Rules) Apply(b *Board, from, to Position) (Verdict, error) {
	v := r.Evaluate(b, from, to)
	if !v.Legal {
		return v, ErrIllegalMove
	}
	if err := b.Relocate(from, to); err != nil {
		return v, err
	}
	return v, nil
}
