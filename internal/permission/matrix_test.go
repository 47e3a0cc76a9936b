package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFacilitatorBase(t *testing.T) {
	caps := Permissions(RoleFacilitator, false)

	assert.True(t, caps.CanEditSettings)
	assert.True(t, caps.CanInviteMembers)
	assert.False(t, caps.CanRemoveMembers)
	assert.False(t, caps.CanDeleteProject)
	assert.False(t, caps.CanCreateStories)
	assert.True(t, caps.CanAddComments)
	assert.True(t, caps.CanAskFollowUpQuestions)
	assert.True(t, caps.CanEditAIContent)
}

func TestStorytellerBase(t *testing.T) {
	caps := Permissions(RoleStoryteller, false)

	assert.False(t, caps.CanEditSettings)
	assert.False(t, caps.CanInviteMembers)
	assert.True(t, caps.CanCreateStories)
	assert.True(t, caps.CanDeleteStories)
	assert.True(t, caps.CanAddComments)
	assert.False(t, caps.CanAskFollowUpQuestions)
	assert.False(t, caps.CanEditAIContent)
}

// Owners gain the administrative capabilities and lose content actions,
// whatever the base role says. The suppression is product policy, not a bug.
func TestOwnerOverlaySuppressesContentActions(t *testing.T) {
	for _, role := range []Role{RoleFacilitator, RoleStoryteller} {
		caps := Permissions(role, true)

		assert.True(t, caps.CanEditSettings, "role %s", role)
		assert.True(t, caps.CanInviteMembers, "role %s", role)
		assert.True(t, caps.CanRemoveMembers, "role %s", role)
		assert.True(t, caps.CanDeleteProject, "role %s", role)

		assert.False(t, caps.CanCreateStories, "role %s", role)
		assert.False(t, caps.CanAddComments, "role %s", role)
		assert.False(t, caps.CanAskFollowUpQuestions, "role %s", role)
	}
}

func TestOwnerOverlayKeepsBaseContentEditing(t *testing.T) {
	caps := Permissions(RoleStoryteller, true)

	// Non-suppressed capabilities still come from the base role.
	assert.True(t, caps.CanEditTranscripts)
	assert.True(t, caps.CanDeleteStories)
	assert.False(t, caps.CanEditAIContent)
}

func TestUnknownRoleHasNoCapabilities(t *testing.T) {
	assert.Equal(t, Capabilities{}, Permissions(Role("archivist"), false))
	assert.False(t, Role("archivist").Valid())
	assert.True(t, RoleFacilitator.Valid())
}
