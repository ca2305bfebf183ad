package elasticity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		testName string
		kind     ErrorKind
		expected string
	}{
		{testName: "length_mismatch", kind: LengthMismatch, expected: "length mismatch"},
		{testName: "too_few_samples", kind: TooFewSamples, expected: "too few samples"},
		{testName: "past_last_kind", kind: TooFewSamples + 1, expected: "ErrorKind(4)"},
		{testName: "negative", kind: -1, expected: "ErrorKind(-1)"},
	}

	for _, test := range tests {
		t.Run(test.testName, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, test.expected, test.kind.String())
			})
		})
	}

	err := &ValidationError{Kind: 42, Detail: "index 3"}
	assert.Equal(t, "elasticity: ErrorKind(42): index 3", err.Error())
}
