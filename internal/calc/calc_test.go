package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateBasicOperators(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		expected   float64
	}{
		{"addition", "5 + 3", 8.0},
		{"subtraction", "10 - 4", 6.0},
		{"multiplication", "6 * 7", 42.0},
		{"division", "15 / 4", 3.75},
		{"floor division", "15 // 4", 3.0},
		{"modulo", "10 % 3", 1.0},
		{"power caret", "2 ^ 10", 1024.0},
		{"power double star", "2 ** 10", 1024.0},
		{"negative base", "-3 * 2", -6.0},
		{"decimal", "2.5 + 2.5", 5.0},
		{"parentheses", "(10 - 4) / 2", 3.0},
		{"nested parentheses", "((1 + 2) * (3 + 4))", 21.0},
		{"precedence", "2 + 3 * 4", 14.0},
		{"power precedence", "2 * 3 ** 2", 18.0},
		{"right assoc power", "2 ** 3 ** 2", 512.0},
		{"average shape", "(5 + 3) / 2", 4.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Evaluate(tt.expression)
			require.True(t, result.Success, "error: %s", result.Error)
			require.NotNil(t, result.Value)
			assert.InDelta(t, tt.expected, *result.Value, 1e-9)
			assert.Equal(t, tt.expression, result.Expression)
			assert.Empty(t, result.Error)
		})
	}
}

func TestEvaluateFlooredModulo(t *testing.T) {
	// The modulo result takes the divisor's sign, matching floor division.
	tests := []struct {
		expression string
		expected   float64
	}{
		{"-7 % 3", 2.0},
		{"7 % -3", -2.0},
		{"-7 % -3", -1.0},
		{"7 % 3", 1.0},
		{"-6 % 3", 0.0},
		{"-7 // 3", -3.0},
		{"7 // -3", -3.0},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			result := Evaluate(tt.expression)
			require.True(t, result.Success, "error: %s", result.Error)
			assert.InDelta(t, tt.expected, *result.Value, 1e-9)
		})
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	for _, expr := range []string{"10 / 0", "10 // 0", "10 % 0", "1 / (2 - 2)"} {
		result := Evaluate(expr)
		assert.False(t, result.Success, expr)
		assert.Nil(t, result.Value, expr)
		assert.Contains(t, result.Error, "division by zero", expr)
	}
}

func TestEvaluateUnbalancedParentheses(t *testing.T) {
	for _, expr := range []string{"2 + )", "(2 + 3", "((1 + 2)", "1 + 2)"} {
		result := Evaluate(expr)
		assert.False(t, result.Success, expr)
		assert.Contains(t, result.Error, "parentheses", expr)
	}
}

func TestEvaluateNoNumbers(t *testing.T) {
	result := Evaluate("abc")
	assert.False(t, result.Success)
	assert.Nil(t, result.Value)
	assert.Contains(t, result.Error, "no numbers")
}

func TestEvaluateEmptyExpression(t *testing.T) {
	for _, expr := range []string{"", "   ", "hello world"} {
		result := Evaluate(expr)
		assert.False(t, result.Success, "%q", expr)
	}
}

func TestEvaluateInjectionAttempts(t *testing.T) {
	// Hostile input must be reduced to its numeric residue (or rejected),
	// never interpreted as anything beyond arithmetic.
	tests := []struct {
		name       string
		expression string
		expected   *float64
	}{
		{"import", "__import__('os').system('rm -rf /')", nil},
		{"exec", "exec('print(1)') + 5", floatPtr(1.0 + 5)},
		{"open", "open('/etc/passwd')", nil},
		{"attribute access", "().__class__", nil},
		{"shell metacharacters", "5 + 3; rm -rf /", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Evaluate(tt.expression)
			if tt.expected == nil {
				assert.False(t, result.Success)
				assert.Nil(t, result.Value)
			} else {
				// Residual digits still evaluate as plain arithmetic.
				require.True(t, result.Success, "error: %s", result.Error)
				assert.InDelta(t, *tt.expected, *result.Value, 1e-9)
			}
		})
	}
}

func TestEvaluateNonFiniteResults(t *testing.T) {
	// Large enough to overflow float64 into +Inf.
	result := Evaluate("10 ** 400")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "infinite")

	// 0 ** negative is +Inf as well.
	result = Evaluate("0 ** -1")
	assert.False(t, result.Success)
}

func TestEvaluateMalformedSyntax(t *testing.T) {
	for _, expr := range []string{"5 +", "* 3", "1 2", "3 . . 4", "()"} {
		result := Evaluate(expr)
		assert.False(t, result.Success, "%q", expr)
		assert.NotEmpty(t, result.Error, "%q", expr)
	}
}

func TestEvaluateThousandsAlreadyStripped(t *testing.T) {
	// The synthesizer strips comma separators before calling Evaluate;
	// a stray comma is sanitized away rather than causing a failure.
	result := Evaluate("1,000 + 500")
	require.True(t, result.Success, "error: %s", result.Error)
	assert.InDelta(t, 1500.0, *result.Value, 1e-9)
}

func TestEvaluatePureFunction(t *testing.T) {
	first := Evaluate("2 + 2")
	second := Evaluate("2 + 2")
	require.True(t, first.Success)
	require.True(t, second.Success)
	assert.Equal(t, *first.Value, *second.Value)
}

func floatPtr(f float64) *float64 { return &f }
