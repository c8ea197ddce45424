package splitter

// UnitKind identifies the role of one logical unit of the script.
type UnitKind int

const (
	UnitDirective  UnitKind = iota // leading {{ config(...) }} call
	UnitCte                        // one named CTE body
	UnitFinalQuery                 // trailing SELECT statement
)

// String returns a string representation of UnitKind.
func (k UnitKind) String() string {
	switch k {
	case UnitDirective:
		return "directive"
	case UnitCte:
		return "cte"
	case UnitFinalQuery:
		return "final-query"
	default:
		return "unknown"
	}
}

/*
 * Unit is a read-only view over the source text: the byte range
 * [Start, End) of one logical piece.  For a CTE the range covers the body
 * strictly between the outer parentheses; for the directive it covers the
 * whole {{ … }} call; for the final query it runs to end of input.
 */
type Unit struct {
	Kind  UnitKind
	Name  string // CTE name, or the directive's call identifier
	Start int
	End   int
}

// Text returns the unit's slice of src.
func (u Unit) Text(src string) string { return src[u.Start:u.End] }

/*
 * Result is the ordered outcome of one split: optional directive, one or
 * more CTE units, and the final-query unit, in source order with strictly
 * increasing disjoint ranges.  Units together with the separator bytes
 * between them partition the source losslessly.
 */
type Result struct {
	Source   string
	Units    []Unit
	Warnings []*MalformedError // populated only in lenient mode
}

// Directive returns the directive unit, or nil when the script has none.
func (r *Result) Directive() *Unit {
	if len(r.Units) > 0 && r.Units[0].Kind == UnitDirective {
		return &r.Units[0]
	}
	return nil
}

// Ctes returns the CTE units in source order.
func (r *Result) Ctes() []Unit {
	var ctes []Unit
	for _, u := range r.Units {
		if u.Kind == UnitCte {
			ctes = append(ctes, u)
		}
	}
	return ctes
}

// Final returns the final-query unit.
func (r *Result) Final() Unit {
	return r.Units[len(r.Units)-1]
}

// Options controls split policy.
type Options struct {
	// Lenient downgrades UnexpectedContentBeforeFinalQuery to a recorded
	// warning and starts the final query at the offending offset.
	Lenient bool
}
