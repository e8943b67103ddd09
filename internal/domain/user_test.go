package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidUsername(t *testing.T) {
	valid := []string{"alice", "a.b", "a@b", "a+b", "a-b", "under_score", "Me2"}
	for _, v := range valid {
		assert.True(t, ValidUsername(v), "username %q", v)
	}
	invalid := []string{"me", "", "has space", "semi;colon", "sla/sh", "quo\"te"}
	for _, v := range invalid {
		assert.False(t, ValidUsername(v), "username %q", v)
	}
}

func TestRolePredicates(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleAdmin}).IsModerator())
	assert.True(t, (&User{Role: RoleModerator}).IsModerator())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())

	assert.True(t, ValidRole(RoleUser))
	assert.True(t, ValidRole(RoleModerator))
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole("king"))
}
