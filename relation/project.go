package relation

// Select projects the table onto the named fields.
//
// With no fields, every row is returned with all of its present fields; only
// rows with zero fields are dropped. With fields, each row keeps the named
// fields that are present and truthy (see Value.Truthy: a present field
// holding a falsy value is silently dropped, which is observably different
// from the field being absent). Rows left with zero fields are omitted
// entirely, so the projected row count can be less than the source count.
//
// Every other operation applies Select to its output, so the truthiness rule
// propagates through the whole query surface.
func Select(fields []string, t Table) Table {
	out := make(Table, 0, len(t))
	for _, r := range t {
		if len(fields) == 0 {
			if len(r) == 0 {
				continue
			}
			out = append(out, r.Clone())
			continue
		}
		p := make(Row, len(fields))
		for _, f := range fields {
			v, ok := r[f]
			if !ok || !v.Truthy() {
				continue
			}
			p[f] = v.clone()
		}
		if len(p) == 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}
