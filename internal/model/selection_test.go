package model

import (
	"testing"

	"github.com/benbeisheim/chessboard-backend/internal/testutil"
)

func TestClickSelectsOccupiedSquare(t *testing.T) {
	b := NewBoard()
	sel, out := Rules{}.Click(b, nil, pos(6, 0))

	if out.Kind != OutcomeSelected {
		t.Fatalf("outcome = %s, want %s", out.Kind, OutcomeSelected)
	}
	testutil.AssertEqual(t, sel, &Selection{Piece: whitePawn, From: pos(6, 0)})
}

func TestClickOnEmptySquareWithoutSelection(t *testing.T) {
	b := NewBoard()
	sel, out := Rules{}.Click(b, nil, pos(4, 4))
	if sel != nil || out.Kind != OutcomeIgnored {
		t.Errorf("Click on empty square = %v, %s; want nil, %s", sel, out.Kind, OutcomeIgnored)
	}
}

func TestClickRoundTrip(t *testing.T) {
	b := NewBoard()
	rules := Rules{}
	start := b.FEN()

	sel, _ := rules.Click(b, nil, pos(6, 0))
	sel, out := rules.Click(b, sel, pos(3, 0))
	if out.Kind != OutcomeRejected {
		t.Fatalf("illegal pawn move outcome = %s, want %s", out.Kind, OutcomeRejected)
	}
	if sel != nil {
		t.Errorf("selection kept after rejected move: %v", sel)
	}
	if b.FEN() != start {
		t.Errorf("board changed after rejected move: %s", b.FEN())
	}
	if out.Verdict == nil || out.Verdict.Reason != ReasonIllegal {
		t.Errorf("verdict = %+v, want reason %q", out.Verdict, ReasonIllegal)
	}

	sel, _ = rules.Click(b, sel, pos(6, 0))
	sel, out = rules.Click(b, sel, pos(4, 0))
	if out.Kind != OutcomeMoved {
		t.Fatalf("legal pawn move outcome = %s, want %s", out.Kind, OutcomeMoved)
	}
	if sel != nil {
		t.Errorf("selection kept after move: %v", sel)
	}

	changed := 0
	before, _ := BoardFromFEN(start)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := pos(row, col)
			a, aok := before.PieceAt(p)
			c, cok := b.PieceAt(p)
			if a != c || aok != cok {
				changed++
			}
		}
	}
	if changed != 2 {
		t.Errorf("%d squares changed, want 2 (source and destination)", changed)
	}
	if pc, _ := b.PieceAt(pos(4, 0)); pc != whitePawn {
		t.Errorf("a4 = %v, want white pawn", pc)
	}
}

func TestClickCapture(t *testing.T) {
	b, err := BoardFromFEN("8/8/8/3p4/4P3/8/8/8")
	testutil.AssertNoError(t, err, "parse")
	rules := Rules{}

	sel, _ := rules.Click(b, nil, pos(4, 4))
	_, out := rules.Click(b, sel, pos(3, 3))
	if out.Kind != OutcomeMoved || !out.Verdict.Capture {
		t.Fatalf("exd5 = %s %+v, want a capture", out.Kind, out.Verdict)
	}
	if n := b.Count(); n != 1 {
		t.Errorf("Count() = %d after capture, want 1", n)
	}
}

func TestApply(t *testing.T) {
	b := NewBoard()
	v, err := Rules{}.Apply(b, pos(6, 4), pos(3, 4))
	testutil.AssertErrorIs(t, err, ErrIllegalMove)
	if v.Legal {
		t.Errorf("verdict = %+v, want illegal", v)
	}

	v, err = Rules{}.Apply(b, pos(7, 6), pos(5, 5))
	testutil.AssertNoError(t, err, "Nf3")
	if !v.Legal || v.Piece == nil || *v.Piece != whiteKnight {
		t.Errorf("verdict = %+v, want legal knight move", v)
	}
}
