// Package permission maps a project role to the capability set the rest of
// the product consults before rendering or mutating anything. It is a pure
// lookup with no storage access.
package permission

// Role is a base collaborator role on a project.
type Role string

const (
	RoleFacilitator Role = "facilitator"
	RoleStoryteller Role = "storyteller"
)

func (r Role) Valid() bool {
	switch r {
	case RoleFacilitator, RoleStoryteller:
		return true
	default:
		return false
	}
}

// Capabilities is the full capability vector for one member of a project.
type Capabilities struct {
	CanEditSettings         bool `json:"can_edit_settings"`
	CanInviteMembers        bool `json:"can_invite_members"`
	CanRemoveMembers        bool `json:"can_remove_members"`
	CanDeleteProject        bool `json:"can_delete_project"`
	CanCreateStories        bool `json:"can_create_stories"`
	CanEditStoryTitles      bool `json:"can_edit_story_titles"`
	CanEditTranscripts      bool `json:"can_edit_transcripts"`
	CanDeleteStories        bool `json:"can_delete_stories"`
	CanViewStories          bool `json:"can_view_stories"`
	CanAddComments          bool `json:"can_add_comments"`
	CanAskFollowUpQuestions bool `json:"can_ask_follow_up_questions"`
	CanViewAIContent        bool `json:"can_view_ai_content"`
	CanEditAIContent        bool `json:"can_edit_ai_content"`
}

var facilitatorBase = Capabilities{
	CanEditSettings:         true,
	CanInviteMembers:        true,
	CanRemoveMembers:        false,
	CanDeleteProject:        false,
	CanCreateStories:        false,
	CanEditStoryTitles:      true,
	CanEditTranscripts:      true,
	CanDeleteStories:        false,
	CanViewStories:          true,
	CanAddComments:          true,
	CanAskFollowUpQuestions: true,
	CanViewAIContent:        true,
	CanEditAIContent:        true,
}

var storytellerBase = Capabilities{
	CanEditSettings:         false,
	CanInviteMembers:        false,
	CanRemoveMembers:        false,
	CanDeleteProject:        false,
	CanCreateStories:        true,
	CanEditStoryTitles:      true,
	CanEditTranscripts:      true,
	CanDeleteStories:        true,
	CanViewStories:          true,
	CanAddComments:          true,
	CanAskFollowUpQuestions: false,
	CanViewAIContent:        true,
	CanEditAIContent:        false,
}

// Permissions returns the capability set for a role, with the owner overlay
// applied when isOwner is true.
//
// The overlay is asymmetric on purpose: an owner gains every administrative
// capability but loses the content-action capabilities (creating stories,
// commenting, asking follow-ups) regardless of base role. Ownership is an
// administrative capacity, not a superset of collaborator rights.
func Permissions(role Role, isOwner bool) Capabilities {
	var caps Capabilities
	switch role {
	case RoleFacilitator:
		caps = facilitatorBase
	case RoleStoryteller:
		caps = storytellerBase
	default:
		return Capabilities{}
	}

	if isOwner {
		caps.CanEditSettings = true
		caps.CanInviteMembers = true
		caps.CanRemoveMembers = true
		caps.CanDeleteProject = true
		caps.CanCreateStories = false
		caps.CanAddComments = false
		caps.CanAskFollowUpQuestions = false
	}

	return caps
}
