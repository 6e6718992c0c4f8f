package relation

// EqualityMode selects how two values are compared.
type EqualityMode uint8

const (
	// Strict requires kinds to be identical as well as values: Int(1) does
	// not equal Float(1). This is the mode used by where, exists, joins and
	// every other keyed lookup.
	Strict EqualityMode = iota
	// Loose compares ints and floats across kinds (Int(1) equals Float(1)).
	// Everything else still requires identical kinds. Only the membership
	// test of In can be loosened; it defaults to Strict.
	Loose
)

// Equal reports whether a and b are strictly equal: identical kind and
// identical value. Arrays compare element-wise, objects key-wise, both
// strictly.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	return sameKindEqual(a, b, Strict)
}

// Equal reports whether a and b are equal under the mode.
func (m EqualityMode) Equal(a, b Value) bool {
	if m == Loose && isNumber(a) && isNumber(b) {
		// Prefer exact int compare when possible.
		if a.Kind == KindInt && b.Kind == KindInt {
			return a.I64 == b.I64
		}
		return asFloat64(a) == asFloat64(b)
	}
	if a.Kind != b.Kind {
		return false
	}
	return sameKindEqual(a, b, m)
}

// sameKindEqual compares two values already known to share a kind. The mode
// only matters for containers, whose elements are compared recursively.
func sameKindEqual(a, b Value, m EqualityMode) bool {
	switch a.Kind {
	case KindNull:
		return true
	case KindInt:
		return a.I64 == b.I64
	case KindFloat:
		return a.F64 == b.F64
	case KindString:
		return a.S == b.S
	case KindBool:
		return a.B == b.B
	case KindArray:
		if len(a.A) != len(b.A) {
			return false
		}
		for i := range a.A {
			if !m.Equal(a.A[i], b.A[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.O) != len(b.O) {
			return false
		}
		for k, av := range a.O {
			bv, ok := b.O[k]
			if !ok || !m.Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		// Two invalid values compare equal.
		return true
	}
}

func isNumber(v Value) bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

func asFloat64(v Value) float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.I64)
	case KindFloat:
		return v.F64
	default:
		return 0
	}
}
