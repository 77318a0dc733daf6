package source

import (
	"fmt"

	"fortio.org/safecast"
)

const maxUint32 = ^uint32(0)

// safeUint32 narrows an int position component, clamping instead of
// wrapping on pathological inputs.
func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}

// ProtocolPosition is an LSP wire position: 0-based line and UTF-16-agnostic
// character offset. The analysis core works in bytes per column; documents
// are expected to be predominantly ASCII Groovy source, matching the
// original server's column accounting.
type ProtocolPosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// ProtocolRange is an LSP wire range: half-open, 0-based.
type ProtocolRange struct {
	Start ProtocolPosition `json:"start"`
	End   ProtocolPosition `json:"end"`
}

func (p ProtocolPosition) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

// FromProtocol converts a 0-based wire position to a 1-based internal one.
func FromProtocol(p ProtocolPosition) Position {
	return Position{Line: safeUint32(p.Line) + 1, Col: safeUint32(p.Character) + 1}
}

// ToProtocol converts a 1-based internal position to a 0-based wire one.
func ToProtocol(p Position) ProtocolPosition {
	line := int(p.Line) - 1
	if line < 0 {
		line = 0
	}
	char := int(p.Col) - 1
	if char < 0 {
		char = 0
	}
	return ProtocolPosition{Line: line, Character: char}
}

// RangeToProtocol converts an inclusive internal range to a half-open wire
// range: the end column moves one past the last included character.
func RangeToProtocol(r Range) ProtocolRange {
	return ProtocolRange{
		Start: ToProtocol(r.Start),
		End:   ProtocolPosition{Line: int(r.End.Line) - 1, Character: int(r.End.Col)},
	}
}
