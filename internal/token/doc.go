// Package token defines lexical token kinds for quill type expressions and the
// arena-backed store that keeps every token alive for one compilation.
// Invariants:
//   - Token.Span matches Text exactly (Start..End).
//   - Lexeme bytes live in a single raw arena chunk; Token.Text is a copy
//     taken at lookup time, never a view into the chunk.
//   - Built-in type names (int, real, str, void) are identifiers.
//     They are recognized by the type table, not the lexer.
package token
