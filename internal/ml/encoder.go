package ml

import "sort"

// UnknownValue is the reserved code for categorical values never seen during
// training. Mapping to a distinct bucket instead of rejecting keeps inference
// total: unseen road types, causes or states degrade gracefully rather than
// failing a whole batch.
const UnknownValue = -1

// LabelEncoder maps categorical string values to integer codes. Classes are
// sorted so the mapping is independent of input order, and the fitted state
// is just the class list, which makes the encoder gob-serializable.
type LabelEncoder struct {
	Classes []string

	idx map[string]int
}

// Fit learns the class set from the given values.
func (e *LabelEncoder) Fit(values []string) {
	seen := make(map[string]bool, len(values))
	e.Classes = e.Classes[:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			e.Classes = append(e.Classes, v)
		}
	}
	sort.Strings(e.Classes)
	e.idx = nil
}

// Transform returns the code for a value, or UnknownValue for values not
// seen during Fit.
func (e *LabelEncoder) Transform(v string) int {
	e.ensureIndex()
	if code, ok := e.idx[v]; ok {
		return code
	}
	return UnknownValue
}

// Inverse returns the class for a code.
func (e *LabelEncoder) Inverse(code int) (string, bool) {
	if code < 0 || code >= len(e.Classes) {
		return "", false
	}
	return e.Classes[code], true
}

// NumClasses returns the number of fitted classes.
func (e *LabelEncoder) NumClasses() int { return len(e.Classes) }

// Fitted reports whether the encoder has been fitted.
func (e *LabelEncoder) Fitted() bool { return len(e.Classes) > 0 }

// ensureIndex rebuilds the lookup map, which is not serialized.
func (e *LabelEncoder) ensureIndex() {
	if e.idx != nil && len(e.idx) == len(e.Classes) {
		return
	}
	e.idx = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.idx[c] = i
	}
}
