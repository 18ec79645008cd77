// Package parser turns program source text into an instruction tree.
package parser

import "fmt"

// TokenType identifies one of the eight source commands.
type TokenType int

const (
	RightAngle   TokenType = iota // >
	LeftAngle                     // <
	Plus                          // +
	Minus                         // -
	Dot                           // .
	Comma                         // ,
	LeftBracket                   // [
	RightBracket                  // ]
)

func (t TokenType) String() string {
	switch t {
	case RightAngle:
		return ">"
	case LeftAngle:
		return "<"
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Dot:
		return "."
	case Comma:
		return ","
	case LeftBracket:
		return "["
	case RightBracket:
		return "]"
	default:
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}

// Pos is a 1-based line and column in the source.
type Pos struct {
	Line, Col int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is a command character and where it appeared.
type Token struct {
	Type TokenType
	Pos  Pos
}

// Scan classifies the command characters of src. Every other character is a
// comment and is dropped.
func Scan(src string) []Token {
	tokens := make([]Token, 0, len(src))
	line, col := 1, 0

	for _, r := range src {
		col++

		var tt TokenType
		switch r {
		case '\n':
			line++
			col = 0
			continue
		case '>':
			tt = RightAngle
		case '<':
			tt = LeftAngle
		case '+':
			tt = Plus
		case '-':
			tt = Minus
		case '.':
			tt = Dot
		case ',':
			tt = Comma
		case '[':
			tt = LeftBracket
		case ']':
			tt = RightBracket
		default:
			continue
		}

		tokens = append(tokens, Token{Type: tt, Pos: Pos{Line: line, Col: col}})
	}

	return tokens
}
