/*
 * split.go
 *
 * Splits a CTE-chained SQL script into its logical units: an optional
 * leading {{ config(...) }} directive, the named CTE bodies, and the
 * trailing final query.
 *
 * Layout handled:
 *
 *	{{ config(materialized='table') }}
 *	with first as (
 *	    select ...
 *	), second as (
 *	    select ... from first
 *	)
 *	select * from second
 *
 * The walk is a single pass over the text.  All boundary decisions go
 * through the scanner, so commas and parentheses inside comments, string
 * literals, and nested subqueries never confuse the unit boundaries.
 */
package splitter

import (
	"errors"
	"strings"

	"github.com/cybertec-postgresql/ctesplit/internal/scanner"
)

/*
 * Split scans src once and returns its ordered units.
 *
 * Any structural violation makes the whole split fail with a
 * *MalformedError carrying the offending offset; there is no best-effort
 * partial result, since a misplaced boundary would silently corrupt the
 * output files.  The one policy exception is Options.Lenient, which turns
 * unexpected content before the final query into a recorded warning.
 */
func Split(src string, opts Options) (*Result, error) {
	sc := scanner.New(src)
	res := &Result{Source: src}

	sc.SkipTrivia()
	if unit, ok := detectDirective(src, sc); ok {
		res.Units = append(res.Units, unit)
		sc.SkipTrivia()
	}

	// The CTE list is introduced by a mandatory WITH keyword.
	if !consumeKeyword(sc, src, "with") {
		return nil, newError(src, MissingWithKeyword, sc.Pos(),
			"expected WITH introducing the CTE list")
	}
	sc.SkipTrivia()
	if consumeKeyword(sc, src, "recursive") {
		sc.SkipTrivia()
	}

	for {
		// ExpectName
		sc.SkipTrivia()
		if !sc.EOF() && src[sc.Pos()] == ')' {
			return nil, newError(src, UnmatchedParenthesis, sc.Pos(),
				"unmatched closing parenthesis")
		}
		name := peekIdent(src, sc.Pos())
		if name == "" {
			return nil, newError(src, MissingCteName, sc.Pos(), "missing CTE name")
		}
		sc.Advance(len(name))

		// ExpectAs
		sc.SkipTrivia()
		if !consumeKeyword(sc, src, "as") {
			return nil, newError(src, MissingAsKeyword, sc.Pos(),
				"expected AS after CTE name %q", name)
		}

		// ExpectOpenParen, allowing the PostgreSQL materialization hint.
		sc.SkipTrivia()
		if consumeKeyword(sc, src, "not") {
			sc.SkipTrivia()
			if !consumeKeyword(sc, src, "materialized") {
				return nil, newError(src, MissingOpenParen, sc.Pos(),
					"expected MATERIALIZED after NOT in CTE %q", name)
			}
			sc.SkipTrivia()
		} else if consumeKeyword(sc, src, "materialized") {
			sc.SkipTrivia()
		}
		if sc.EOF() || src[sc.Pos()] != '(' {
			return nil, newError(src, MissingOpenParen, sc.Pos(),
				"expected ( opening the body of CTE %q", name)
		}
		open := sc.Pos()
		if err := sc.Step(); err != nil {
			return nil, newError(src, UnmatchedParenthesis, sc.Pos(), "%v", err)
		}

		// InBody: run to the matching close in plain context.
		closeOff, err := sc.ScanToDepth(0)
		if err != nil {
			if errors.Is(err, scanner.ErrUnterminated) {
				return nil, newError(src, UnterminatedBody, open,
					"body of CTE %q never closes", name)
			}
			return nil, newError(src, UnmatchedParenthesis, sc.Pos(), "%v", err)
		}
		res.Units = append(res.Units, Unit{
			Kind:  UnitCte,
			Name:  name,
			Start: open + 1,
			End:   closeOff,
		})

		// ExpectCommaOrEnd
		sc.SkipTrivia()
		if sc.EOF() {
			return nil, newError(src, EmptyFinalQuery, len(src),
				"script ends after CTE %q; the trailing query is missing", name)
		}
		if src[sc.Pos()] == ',' {
			sc.Step()
			continue
		}
		if src[sc.Pos()] == ')' {
			return nil, newError(src, UnmatchedParenthesis, sc.Pos(),
				"unmatched closing parenthesis")
		}
		break
	}

	// Final query: from the first non-trivia byte after the last CTE.
	start := sc.Pos()
	if !startsQuery(src, start) {
		err := newError(src, UnexpectedContentBeforeFinalQuery, start,
			"unexpected content between last CTE and final query")
		if !opts.Lenient {
			return nil, err
		}
		res.Warnings = append(res.Warnings, err)
	}
	res.Units = append(res.Units, Unit{Kind: UnitFinalQuery, Start: start, End: len(src)})

	return res, nil
}

/*
 * detectDirective recognises the leading config call:
 *
 *	{{ identifier( balanced args ) }}
 *
 * The probe scanner commits only on a full shape match; anything else
 * consumes nothing and the script simply has no directive.  Arguments are
 * walked with depth tracking, so commas, quotes, and parentheses inside
 * them are handled the same way as in a CTE body.
 */
func detectDirective(src string, sc *scanner.Scanner) (Unit, bool) {
	start := sc.Pos()
	if !strings.HasPrefix(src[start:], "{{") {
		return Unit{}, false
	}
	probe := sc.Clone()
	probe.Advance(2)
	probe.SkipTrivia()

	name := peekIdent(src, probe.Pos())
	if name == "" {
		return Unit{}, false
	}
	probe.Advance(len(name))
	probe.SkipTrivia()

	if probe.EOF() || src[probe.Pos()] != '(' {
		return Unit{}, false
	}
	if err := probe.Step(); err != nil {
		return Unit{}, false
	}
	if _, err := probe.ScanToDepth(0); err != nil {
		return Unit{}, false
	}
	probe.SkipTrivia()

	if !strings.HasPrefix(src[probe.Pos():], "}}") {
		return Unit{}, false
	}
	probe.Advance(2)
	sc.Restore(probe)
	return Unit{Kind: UnitDirective, Name: name, Start: start, End: probe.Pos()}, true
}

// startsQuery reports whether the text at off begins a query: the SELECT
// keyword or a parenthesized subexpression.
func startsQuery(src string, off int) bool {
	if off < len(src) && src[off] == '(' {
		return true
	}
	return strings.EqualFold(peekIdent(src, off), "select")
}

// peekIdent returns the identifier token at off, or "" when the byte
// there cannot start one.  Identifiers are letters, digits, and
// underscores and may not begin with a digit.
func peekIdent(src string, off int) string {
	if off >= len(src) || !isIdentStart(src[off]) {
		return ""
	}
	end := off + 1
	for end < len(src) && isIdentCont(src[end]) {
		end++
	}
	return src[off:end]
}

/*
 * consumeKeyword consumes the case-insensitive keyword word at the
 * scanner's position when the identifier there matches it exactly.
 * Word-bounded: "asdf" never matches "as".
 */
func consumeKeyword(sc *scanner.Scanner, src, word string) bool {
	id := peekIdent(src, sc.Pos())
	if !strings.EqualFold(id, word) {
		return false
	}
	sc.Advance(len(id))
	return true
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentCont(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
