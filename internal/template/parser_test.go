package template

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tmpl, err := Parse("{{ Dimension('listing__country') }} = 'US' AND {{ Entity('user') }} = 1", "")
	require.NoError(t, err)

	require.Len(t, tmpl.Nodes, 4)
	exprs := tmpl.Exprs()
	require.Len(t, exprs, 2)
	assert.Equal(t, "Dimension('listing__country')", exprs[0].Expr)
	assert.Equal(t, "Entity('user')", exprs[1].Expr)
	assert.Equal(t, 1, exprs[0].Pos().Column)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "statement", input: "{% for x in y %}", wantErr: "statements are not supported"},
		{name: "empty expression", input: "a = {{ }}", wantErr: "empty expression"},
		{name: "unclosed", input: "{{ Entity('user')", wantErr: "unclosed expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, "")
			require.Error(t, err)
			var tmplErr Error
			require.True(t, errors.As(err, &tmplErr), "expected template Error, got %T", err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTemplate_Render(t *testing.T) {
	tmpl, err := Parse("{{ Dimension('listing__country') }} = 'US'", "")
	require.NoError(t, err)

	out, err := tmpl.Render(func(e *ExprNode) (string, error) {
		return strings.ToUpper(e.Expr), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "DIMENSION('LISTING__COUNTRY') = 'US'", out)

	cause := errors.New("boom")
	_, err = tmpl.Render(func(*ExprNode) (string, error) { return "", cause })
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	var renderErr *RenderError
	assert.True(t, errors.As(err, &renderErr))
}
