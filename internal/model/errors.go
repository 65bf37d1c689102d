package model

import "errors"

var (
	ErrOutOfBounds  = errors.New("position out of bounds")
	ErrEmptySquare  = errors.New("no piece at square")
	ErrIllegalMove  = errors.New("illegal move")
	ErrInvalidFEN   = errors.New("invalid FEN placement")
	ErrInvalidPiece = errors.New("invalid piece")

	ErrDuplicateConnection = errors.New("client already connected")
)
