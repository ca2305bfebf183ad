package elasticity

import "fmt"

type ErrorKind int

const (
	LengthMismatch ErrorKind = iota
	OverProvisioned
	UndefinedRatio
	TooFewSamples
)

var errorKindStrings = []string{
	LengthMismatch:  "length mismatch",
	OverProvisioned: "provisioned exceeds required",
	UndefinedRatio:  "undefined capacity ratio",
	TooFewSamples:   "too few samples",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindStrings) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindStrings[k]
}

// ValidationError rejects a pair of curves a scorer cannot evaluate.
// It fails the computation, never the process.
type ValidationError struct {
	Kind   ErrorKind
	Index  int
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return "elasticity: " + e.Kind.String()
	}
	return fmt.Sprintf("elasticity: %s: %s", e.Kind, e.Detail)
}

// Is matches any ValidationError of the same kind, so callers can use
// errors.Is(err, elasticity.ErrOverProvisioned).
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

var (
	ErrLengthMismatch  = &ValidationError{Kind: LengthMismatch}
	ErrOverProvisioned = &ValidationError{Kind: OverProvisioned}
	ErrUndefinedRatio  = &ValidationError{Kind: UndefinedRatio}
	ErrTooFewSamples   = &ValidationError{Kind: TooFewSamples}
)
