package operators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"guardia":           RoleGuard,
		" Guardia ":         RoleGuard,
		"Jefe de seguridad": RoleSecurityChief,
		"jefe_seguridad":    RoleSecurityChief,
		"Administrador":     RoleAdmin,
	}
	for in, want := range cases {
		got, ok := ParseRole(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseRole("visitante")
	assert.False(t, ok)
}

func TestCanOperate(t *testing.T) {
	assert.True(t, CanOperate(RoleGuard))
	assert.True(t, CanOperate(RoleSecurityChief))
	assert.True(t, CanOperate(RoleAdmin))
	assert.False(t, CanOperate(Role("")))
	assert.False(t, CanOperate(Role("visitante")))
}
