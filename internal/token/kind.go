package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	// KwFn represents the 'fn' keyword.
	KwFn // fn
	// IntLit represents an integer literal (array lengths).
	IntLit

	Star     // *
	LBracket // [
	RBracket // ]
	LParen   // (
	RParen   // )
	Comma    // ,
	Question // ?
)

var kindNames = [...]string{
	Invalid:  "Invalid",
	EOF:      "EOF",
	Ident:    "Ident",
	KwFn:     "fn",
	IntLit:   "IntLit",
	Star:     "*",
	LBracket: "[",
	RBracket: "]",
	LParen:   "(",
	RParen:   ")",
	Comma:    ",",
	Question: "?",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// LookupKeyword returns the keyword kind for ident, if any.
func LookupKeyword(ident string) (Kind, bool) {
	if ident == "fn" {
		return KwFn, true
	}
	return Invalid, false
}
