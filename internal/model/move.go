package model

// ClickRequest is a square click sent by a client.
type ClickRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c ClickRequest) Position() Position {
	return Position{Row: c.Row, Col: c.Col}
}

// MoveRequest asks for a piece to be moved directly, without a selection step.
type MoveRequest struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}
