/*
 * scanner.go
 *
 * Lexical scanner for CTE-chained SQL scripts.
 *
 * The scanner classifies every byte of the source as plain code, line
 * comment, block comment, or string literal, and maintains a parenthesis
 * nesting depth over the plain bytes only.  It is deliberately NOT a SQL
 * lexer: the splitter only needs structural boundaries (comment regions,
 * string literals, matching parentheses), not a token stream.
 *
 * Classification follows the current mode's exit rule exclusively.  A
 * comment-start sequence inside a string literal, or a quote inside a
 * comment, never changes the mode.
 */
package scanner

import "errors"

// ErrUnmatchedParen is returned by Step when a closing parenthesis is
// found in plain context at depth zero.
var ErrUnmatchedParen = errors.New("unmatched closing parenthesis")

// ErrUnterminated is returned by ScanToDepth when the input ends before
// the nesting depth returns to the requested level.
var ErrUnterminated = errors.New("unterminated parenthesized block")

// Mode is the lexical context at the current cursor position.
type Mode int

const (
	Plain        Mode = iota // ordinary code
	LineComment              // -- … or // … up to end of line
	BlockComment             // /* … */ (no nesting)
	String                   // '…' or "…", doubled-quote escaped
)

// String returns a readable name for the mode.
func (m Mode) String() string {
	switch m {
	case Plain:
		return "plain"
	case LineComment:
		return "line-comment"
	case BlockComment:
		return "block-comment"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

/*
 * Scanner walks src left to right exactly once.  The entire scan state is
 * the cursor offset, the lexical mode, the parenthesis depth, and the
 * quote byte that opened the current string literal.  A Scanner is a small
 * value; Clone gives callers bounded lookahead without backtracking in the
 * scanner itself.
 */
type Scanner struct {
	src   string
	pos   int
	mode  Mode
	depth int
	quote byte // opening quote while mode == String
}

// New returns a Scanner positioned at the start of src, in plain mode at
// depth zero.
func New(src string) *Scanner { return &Scanner{src: src} }

// Pos returns the byte offset of the next byte to be consumed.
func (s *Scanner) Pos() int { return s.pos }

// Mode returns the lexical mode at the current position.
func (s *Scanner) Mode() Mode { return s.mode }

// Depth returns the current parenthesis nesting depth.
func (s *Scanner) Depth() int { return s.depth }

// EOF reports whether the input is fully consumed.
func (s *Scanner) EOF() bool { return s.pos >= len(s.src) }

// Clone returns an independent copy of the scanner. Used for bounded
// lookahead: probe with the clone, commit with Restore on a match.
func (s *Scanner) Clone() *Scanner {
	c := *s
	return &c
}

// Restore resets the scanner to a previously cloned state.
func (s *Scanner) Restore(c *Scanner) { *s = *c }

// peek returns the byte at pos+offset, or 0 past the end of input.
func (s *Scanner) peek(offset int) byte {
	if i := s.pos + offset; i < len(s.src) {
		return s.src[i]
	}
	return 0
}

/*
 * Step consumes one byte (or one two-byte open/close sequence) and updates
 * the mode and depth.
 *
 * Priority follows the mutual exclusion of lexical contexts: while inside
 * a string or comment only that context's exit rule applies; entry rules
 * are checked only in plain mode.  Parentheses count toward depth only in
 * plain mode.
 */
func (s *Scanner) Step() error {
	if s.pos >= len(s.src) {
		return nil
	}
	ch := s.src[s.pos]

	switch s.mode {
	case String:
		if ch == s.quote {
			if s.peek(1) == s.quote {
				s.pos += 2 // doubled quote: escaped, literal continues
				return nil
			}
			s.mode = Plain
		}
		s.pos++

	case LineComment:
		if ch == '\n' || ch == '\r' {
			s.mode = Plain
		}
		s.pos++

	case BlockComment:
		if ch == '*' && s.peek(1) == '/' {
			s.mode = Plain
			s.pos += 2
			return nil
		}
		s.pos++

	default: // Plain
		switch {
		case ch == '\'' || ch == '"':
			s.mode = String
			s.quote = ch
			s.pos++
		case ch == '-' && s.peek(1) == '-',
			ch == '/' && s.peek(1) == '/':
			s.mode = LineComment
			s.pos += 2
		case ch == '/' && s.peek(1) == '*':
			s.mode = BlockComment
			s.pos += 2
		case ch == '(':
			s.depth++
			s.pos++
		case ch == ')':
			if s.depth == 0 {
				return ErrUnmatchedParen
			}
			s.depth--
			s.pos++
		default:
			s.pos++
		}
	}
	return nil
}

/*
 * SkipTrivia advances over whitespace and comments, stopping at the first
 * plain byte that is neither.  A comment or string left open at end of
 * input is consumed to the end; trailing trivia never fails a scan on
 * its own.
 */
func (s *Scanner) SkipTrivia() {
	for s.pos < len(s.src) {
		if s.mode != Plain {
			s.Step() // no depth changes possible outside plain mode
			continue
		}
		ch := s.src[s.pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v':
			s.pos++
		case ch == '-' && s.peek(1) == '-',
			ch == '/' && s.peek(1) == '/',
			ch == '/' && s.peek(1) == '*':
			s.Step()
		default:
			return
		}
	}
}

/*
 * ScanToDepth advances until the nesting depth returns to n in plain
 * context and returns the offset of the closing parenthesis that got it
 * there (the parenthesis itself is consumed).  Parentheses inside strings
 * and comments are inert for the count.  Reaching end of input first
 * returns ErrUnterminated.
 */
func (s *Scanner) ScanToDepth(n int) (int, error) {
	if s.depth <= n {
		return 0, ErrUnterminated
	}
	for s.pos < len(s.src) {
		if s.mode == Plain && s.depth == n+1 && s.src[s.pos] == ')' {
			off := s.pos
			if err := s.Step(); err != nil {
				return 0, err
			}
			return off, nil
		}
		if err := s.Step(); err != nil {
			return 0, err
		}
	}
	return 0, ErrUnterminated
}

/*
 * Advance moves the cursor forward n bytes without classification.  Safe
 * only for byte ranges known to be mode- and depth-neutral, such as an
 * identifier that was just matched at the current position in plain mode.
 */
func (s *Scanner) Advance(n int) {
	s.pos += n
	if s.pos > len(s.src) {
		s.pos = len(s.src)
	}
}
