package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrace/pkg/diag"
	"ctrace/pkg/trace"
)

const goodSource = `int main() {
    int x = 10;
    printf("x = %d\n", x);
    return 0;
}
`

func TestRunPipeline(t *testing.T) {
	s := NewSession()
	result, err := s.Run(goodSource)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Tokens)
	require.NotNil(t, result.Program)
	require.NotEmpty(t, result.Steps)
	assert.Equal(t, trace.StepInitialization, result.Steps[0].Kind)
	assert.Equal(t, trace.StepFinalization, result.Steps[len(result.Steps)-1].Kind)
	assert.Empty(t, result.Diags)
}

// A parse failure still publishes the tokens, but the step list is replaced
// by a single explanatory error entry.
func TestRunParseFailure(t *testing.T) {
	s := NewSession()
	result, err := s.Run("int main() { int x = ; }")
	require.Error(t, err)

	var syntaxErr *diag.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)

	assert.NotEmpty(t, result.Tokens, "tokens stay available for highlighting")
	assert.Nil(t, result.Program)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, trace.StepError, result.Steps[0].Kind)
	require.NotEmpty(t, result.Diags)
	assert.Equal(t, diag.SeverityError, result.Diags[len(result.Diags)-1].Severity)
}

func TestRunReplacesPreviousResult(t *testing.T) {
	s := NewSession()
	_, err := s.Run(goodSource)
	require.NoError(t, err)
	first := len(s.Result().Steps)
	s.Seek(first - 1)

	_, err = s.Run("int main() { return 0; }")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Index(), "a new run rewinds the cursor")
	assert.NotEqual(t, goodSource, s.Result().Source)
}

func TestDroppedCharactersBecomeWarnings(t *testing.T) {
	s := NewSession()
	result, err := s.Run("int main() { int x = 1; @ return 0; }")
	require.NoError(t, err)

	var warned bool
	for _, d := range result.Diags {
		if d.Severity == diag.SeverityWarning {
			warned = true
		}
	}
	assert.True(t, warned, "dropped input should surface as a warning diagnostic")
}

func TestCursor(t *testing.T) {
	s := NewSession()
	_, err := s.Run(goodSource)
	require.NoError(t, err)
	n := len(s.Result().Steps)
	require.Greater(t, n, 2)

	// Advance saturates at the last step.
	moved := 0
	for s.Advance() {
		moved++
	}
	assert.Equal(t, n-1, moved)
	assert.Equal(t, n-1, s.Index())
	assert.False(t, s.Advance())

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, trace.StepFinalization, cur.Kind)

	s.Seek(-5)
	assert.Equal(t, 0, s.Index())
	s.Seek(n + 10)
	assert.Equal(t, n-1, s.Index())
	s.Reset()
	assert.Equal(t, 0, s.Index())
}

func TestCumulativeOutput(t *testing.T) {
	s := NewSession()
	result, err := s.Run(goodSource)
	require.NoError(t, err)

	full := s.CumulativeOutput(len(result.Steps) - 1)
	assert.Equal(t, "x = 10\n", full)
	assert.Equal(t, result.State.Console(), full)
	assert.Empty(t, s.CumulativeOutput(0), "the initialization step carries no output")
}
