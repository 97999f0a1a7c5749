package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/paperbox/paper"
)

var collaborators = []paper.Collaborator{
	{AccountID: "dbid:owner", Email: "owner@corp.com", DisplayName: "Owner", SameTeam: true, Permission: paper.PermissionEdit, Owner: true},
	{AccountID: "dbid:ann", Email: "Ann@Corp.com", DisplayName: "Ann", SameTeam: true, Permission: paper.PermissionViewAndComment},
	{AccountID: "dbid:bob", Email: "bob@partner.io", DisplayName: "Bob", Permission: paper.PermissionEdit},
	{Email: "guest@gmail.com", Permission: paper.PermissionViewAndComment, Invitee: true},
}

func emails(cs []paper.Collaborator) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Email)
	}
	return out
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{name: "field", expression: "SameTeam"},
		{name: "helper", expression: `emailDomain(Email) == "corp.com"`},
		{name: "bound helper", expression: `hasPermission("edit") and not Owner`},
		{name: "empty", expression: "  ", wantErr: true, errContains: "empty expression"},
		{name: "unclosed string", expression: `contains(Email, "x`, wantErr: true},
		{name: "not boolean", expression: "DisplayName", wantErr: true},
		{name: "unknown field", expression: "Year > 2020", wantErr: true},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := compiler.Compile(tt.expression)
			if tt.wantErr {
				require.Error(t, err)
				var compileErr *CompilationError
				assert.ErrorAs(t, err, &compileErr)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expression, f.Expression())
		})
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		expression string
		want       []string
	}{
		{`SameTeam`, []string{"owner@corp.com", "Ann@Corp.com"}},
		{`emailDomain(Email) == "corp.com"`, []string{"owner@corp.com", "Ann@Corp.com"}},
		{`canEdit() and not Owner`, []string{"bob@partner.io"}},
		{`hasPermission("VIEW_AND_COMMENT")`, []string{"Ann@Corp.com", "guest@gmail.com"}},
		{`Invitee or endsWith(Email, ".IO")`, []string{"bob@partner.io", "guest@gmail.com"}},
		{`Permission == "edit" and AccountID != ""`, []string{"owner@corp.com", "bob@partner.io"}},
		{`contains(DisplayName, "nobody")`, []string{}},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			f, err := compiler.Compile(tt.expression)
			require.NoError(t, err)

			got, err := Apply(context.Background(), f, collaborators)
			require.NoError(t, err)
			assert.Equal(t, tt.want, emails(got))
		})
	}
}

func TestApplyEvaluationError(t *testing.T) {
	compiler := NewExprCompiler(WithCustomFunctions(map[string]any{
		"explode": func(s string) (bool, error) {
			if s == "" {
				return false, assert.AnError
			}
			return true, nil
		},
	}))
	f, err := compiler.Compile(`explode(AccountID)`)
	require.NoError(t, err)

	_, err = Apply(context.Background(), f, collaborators)
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "guest@gmail.com", evalErr.Collaborator)

	assert.False(t, f.Match(collaborators[3]))
	assert.True(t, f.Match(collaborators[0]))
}

func TestApplyCancelled(t *testing.T) {
	f, err := NewExprCompiler().Compile("true")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Apply(ctx, f, collaborators)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManager(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.RegisterFilters(map[string]string{
		"outsiders": "not SameTeam",
		"editors":   "canEdit()",
	}))
	assert.Equal(t, []string{"editors", "outsiders"}, m.ListFilters())

	f, ok := m.GetFilter("outsiders")
	require.True(t, ok)
	got, err := Apply(context.Background(), f, collaborators)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob@partner.io", "guest@gmail.com"}, emails(got))

	// A failing batch registers nothing.
	err = m.RegisterFilters(map[string]string{"ok": "Owner", "broken": "Owner +"})
	require.Error(t, err)
	_, ok = m.GetFilter("ok")
	assert.False(t, ok)

	named, err := m.Resolve("editors")
	require.NoError(t, err)
	assert.Equal(t, "canEdit()", named.Expression())

	adHoc, err := m.Resolve("Invitee")
	require.NoError(t, err)
	assert.True(t, adHoc.Match(collaborators[3]))
}

func TestCache(t *testing.T) {
	compiler := NewExprCompiler(WithCache(2))

	first, err := compiler.Compile("Owner")
	require.NoError(t, err)
	again, err := compiler.Compile("  Owner ")
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, compiler.Size())

	_, err = compiler.Compile("Invitee")
	require.NoError(t, err)
	_, err = compiler.Compile("SameTeam")
	require.NoError(t, err)
	assert.Equal(t, 2, compiler.Size())

	// "Owner" was least recently used and is gone.
	evicted, err := compiler.Compile("Owner")
	require.NoError(t, err)
	assert.NotSame(t, first, evicted)

	compiler.Clear()
	assert.Equal(t, 0, compiler.Size())
}
