package transport

type ProfileUpdateRequest struct {
	Email       string            `json:"email"`
	DisplayName string            `json:"display_name"`
	AvatarURL   string            `json:"avatar_url"`
	Meta        map[string]string `json:"metadata"`
}

type TaskRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	AssigneeID  string            `json:"assignee_id"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority"`
	DueDate     string            `json:"due_date"`
	Metadata    map[string]string `json:"metadata"`
}

type StatusEntryRequest struct {
	Moods    []string `json:"moods"`
	Feelings []string `json:"feelings"`
	Note     string   `json:"note"`
}

type GroupCreateRequest struct {
	Name string `json:"name"`
}

type GroupJoinRequest struct {
	InviteCode string `json:"invite_code"`
	Role       string `json:"role"`
}

// AuthLoginRequest carries the identity asserted by the upstream provider.
type AuthLoginRequest struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	TTL         int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}

type LogoutRequest struct {
	SessionID string `json:"session_id"`
}
