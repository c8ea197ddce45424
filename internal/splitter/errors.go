package splitter

import "fmt"

// ErrorKind classifies a malformed-input failure.
type ErrorKind int

const (
	UnmatchedParenthesis ErrorKind = iota
	MissingWithKeyword
	MissingCteName
	MissingAsKeyword
	MissingOpenParen
	UnterminatedBody
	UnexpectedContentBeforeFinalQuery
	EmptyFinalQuery
)

// String returns a string representation of ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case UnmatchedParenthesis:
		return "unmatched-parenthesis"
	case MissingWithKeyword:
		return "missing-with-keyword"
	case MissingCteName:
		return "missing-cte-name"
	case MissingAsKeyword:
		return "missing-as-keyword"
	case MissingOpenParen:
		return "missing-open-paren"
	case UnterminatedBody:
		return "unterminated-body"
	case UnexpectedContentBeforeFinalQuery:
		return "unexpected-content-before-final-query"
	case EmptyFinalQuery:
		return "empty-final-query"
	default:
		return "unknown"
	}
}

// MalformedError reports a structural violation of the script format.
// Line and Column are 1-based and derived from Offset for diagnostics.
type MalformedError struct {
	Kind    ErrorKind
	Offset  int
	Line    int
	Column  int
	Message string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// newError builds a MalformedError for the given source offset.
func newError(src string, kind ErrorKind, offset int, format string, args ...interface{}) *MalformedError {
	line, col := lineCol(src, offset)
	return &MalformedError{
		Kind:    kind,
		Offset:  offset,
		Line:    line,
		Column:  col,
		Message: fmt.Sprintf(format, args...),
	}
}

// lineCol converts a byte offset into a 1-based line/column pair.
func lineCol(src string, offset int) (int, int) {
	if offset > len(src) {
		offset = len(src)
	}
	line, col := 1, 1
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
