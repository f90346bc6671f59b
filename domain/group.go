package domain

import "time"

const (
	MemberRoleOwner     = "owner"
	MemberRoleCaregiver = "caregiver"
	MemberRoleMember    = "member"
)

// Group is a family or care circle that shares tasks and check-ins.
type Group struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	OwnerID    string    `json:"owner_id"`
	InviteCode string    `json:"invite_code,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Membership links a user to a group.
type Membership struct {
	GroupID  string    `json:"group_id"`
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`

	// Populated on member listings.
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

func (m *Membership) IsOwner() bool {
	return m != nil && m.Role == MemberRoleOwner
}

// ValidMemberRole reports whether role can be assigned to a joining member.
func ValidMemberRole(role string) bool {
	switch role {
	case MemberRoleCaregiver, MemberRoleMember:
		return true
	}
	return false
}
