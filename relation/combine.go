package relation

import "fmt"

// JoinMethod selects the join algorithm.
type JoinMethod string

const (
	// InnerJoin emits the merge of every matching (left row, right row)
	// pair: true cross-match multiplicity.
	InnerJoin JoinMethod = "inner"
	// LeftJoin emits exactly one row per left row: merged with the first
	// matching right row, or the left row alone when nothing matches.
	LeftJoin JoinMethod = "left"
	// RightJoin is LeftJoin with the roles swapped.
	RightJoin JoinMethod = "right"
	// FullJoin is the deduplicated concatenation of LeftJoin and RightJoin.
	FullJoin JoinMethod = "full"
)

// MatchKey is the single equality key used by a join: the left table's field
// compared against the right table's field. Multi-pair match specifications
// are invalid input for this design; exactly one pair, both sides non-empty.
type MatchKey struct {
	Left  string
	Right string
}

func (k MatchKey) validate() error {
	if k.Left == "" || k.Right == "" {
		return fmt.Errorf("%w: left %q, right %q", ErrInvalidMatchSpec, k.Left, k.Right)
	}
	return nil
}

// Union projects both tables onto fields, concatenates them left rows first,
// and removes structural duplicates. The first occurrence of each distinct
// row is kept and relative order is otherwise preserved.
func Union(fields []string, left, right Table) Table {
	merged := make(Table, 0, len(left)+len(right))
	merged = append(merged, Select(fields, left)...)
	merged = append(merged, Select(fields, right)...)
	return dedupe(merged)
}

// Join combines two tables on a single equality key and projects the result
// onto fields.
//
// Inner join has cross-match multiplicity: a left row matching three right
// rows emits three merged rows. Left and right joins intentionally do not;
// they stop at the first match, emitting exactly one row per row of their
// driving side (merged, or unmodified when unmatched). The two behaviors are
// distinct algorithms, not variants of one another. Full join concatenates
// the left and right joins and removes structural duplicates, yielding
// matched rows once plus each side's unmatched rows.
//
// On merge, fields of the non-driving side overwrite the driving side's on
// name collision (for inner and left joins the right side wins; for right
// joins the left side wins). Rows missing their match field never match.
func Join(method JoinMethod, fields []string, left, right Table, match MatchKey) (Table, error) {
	if err := match.validate(); err != nil {
		return nil, err
	}
	var joined Table
	switch method {
	case InnerJoin:
		joined = innerJoin(left, right, match)
	case LeftJoin:
		joined = leftJoin(left, right, match)
	case RightJoin:
		joined = rightJoin(left, right, match)
	case FullJoin:
		joined = dedupe(append(leftJoin(left, right, match), rightJoin(left, right, match)...))
	default:
		return nil, fmt.Errorf("relation: unknown join method %q", method)
	}
	return Select(fields, joined), nil
}

func innerJoin(left, right Table, match MatchKey) Table {
	out := make(Table, 0, len(left))
	for _, l := range left {
		lv, ok := l[match.Left]
		if !ok {
			continue
		}
		for _, r := range right {
			rv, ok := r[match.Right]
			if !ok {
				continue
			}
			if Equal(lv, rv) {
				out = append(out, l.Merge(r))
			}
		}
	}
	return out
}

func leftJoin(left, right Table, match MatchKey) Table {
	out := make(Table, 0, len(left))
	for _, l := range left {
		emitted := l
		if lv, ok := l[match.Left]; ok {
			for _, r := range right {
				if rv, ok := r[match.Right]; ok && Equal(lv, rv) {
					emitted = l.Merge(r)
					break
				}
			}
		}
		out = append(out, emitted)
	}
	return out
}

func rightJoin(left, right Table, match MatchKey) Table {
	out := make(Table, 0, len(right))
	for _, r := range right {
		emitted := r
		if rv, ok := r[match.Right]; ok {
			for _, l := range left {
				if lv, ok := l[match.Left]; ok && Equal(lv, rv) {
					emitted = r.Merge(l)
					break
				}
			}
		}
		out = append(out, emitted)
	}
	return out
}

// dedupe removes structural duplicates, keeping the first occurrence of each
// distinct row. Row keys only group candidates; Row.Equal decides, so rows
// that collide on the key without being duplicates all survive.
func dedupe(t Table) Table {
	seen := make(map[string][]Row, len(t))
	out := make(Table, 0, len(t))
	for _, r := range t {
		k := r.Key()
		dup := false
		for _, kept := range seen[k] {
			if kept.Equal(r) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen[k] = append(seen[k], r)
		out = append(out, r)
	}
	return out
}
