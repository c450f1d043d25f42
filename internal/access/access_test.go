package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewerCannotPush(t *testing.T) {
	members := map[string]string{"carol@example.com": "viewer"}
	c := NewRoleChecker(members, "carol@example.com")

	assert.Equal(t, RoleViewer, c.Role())
	assert.True(t, c.CanPerform(ActionPull))
	assert.False(t, c.CanPerform(ActionPush))
	assert.False(t, c.CanPerform(ActionResolve))
}

func TestEditorAndAdminCanPush(t *testing.T) {
	members := map[string]string{
		"alice@example.com": "admin",
		"bob@example.com":   "editor",
	}

	for _, email := range []string{"alice@example.com", "bob@example.com"} {
		c := NewRoleChecker(members, email)
		assert.True(t, c.CanPerform(ActionPush), email)
		assert.True(t, c.CanPerform(ActionResolve), email)
	}
}

func TestUnknownMemberDefaultsToEditor(t *testing.T) {
	c := NewRoleChecker(map[string]string{}, "dave@example.com")

	assert.Equal(t, RoleEditor, c.Role())
	assert.True(t, c.CanPerform(ActionPush))
}

func TestInvalidRoleFallsBackToEditor(t *testing.T) {
	members := map[string]string{"eve@example.com": "overlord"}
	c := NewRoleChecker(members, "eve@example.com")

	assert.Equal(t, RoleEditor, c.Role())
}
