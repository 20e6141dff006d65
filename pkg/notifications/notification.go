package notifications

import "time"

// Type classifies a notification. The set is closed; unknown types are
// rejected on create.
type Type string

const (
	TypeNewFollower     Type = "new_follower"
	TypeDelivery        Type = "delivery"
	TypeRecommendations Type = "recommendations"
	TypeReferrals       Type = "referrals"
	TypeRewards         Type = "rewards"
	TypeAccount         Type = "account"
)

// Types lists every valid notification type.
func Types() []Type {
	return []Type{
		TypeNewFollower,
		TypeDelivery,
		TypeRecommendations,
		TypeReferrals,
		TypeRewards,
		TypeAccount,
	}
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	switch t {
	case TypeNewFollower, TypeDelivery, TypeRecommendations, TypeReferrals, TypeRewards, TypeAccount:
		return true
	}
	return false
}

// Status is the delivery progression of a notification. It moves forward
// (new → downloaded → read) except for an explicit mark-unread, which steps
// back to downloaded.
type Status string

const (
	StatusNew        Status = "new"
	StatusDownloaded Status = "downloaded"
	StatusRead       Status = "read"
)

// Priority represents the notification priority level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Notification is one persistent record in a user's collection.
// IsRead is kept consistent with Status: true iff Status is StatusRead.
type Notification struct {
	ID          string         `json:"id" bson:"_id"`
	UserID      string         `json:"user_id" bson:"user_id"`
	Title       string         `json:"title" bson:"title"`
	Description string         `json:"description" bson:"description"`
	Type        Type           `json:"type" bson:"type"`
	Status      Status         `json:"status" bson:"status"`
	Priority    Priority       `json:"priority" bson:"priority"`
	Category    string         `json:"category,omitempty" bson:"category,omitempty"`
	IsRead      bool           `json:"is_read" bson:"is_read"`
	ActionText  string         `json:"action_text,omitempty" bson:"action_text,omitempty"`
	ActionURL   string         `json:"action_url,omitempty" bson:"action_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" bson:"updated_at"`
}

// MarkRead advances the record to read state.
func (n *Notification) MarkRead() {
	n.Status = StatusRead
	n.IsRead = true
	n.UpdatedAt = time.Now().UTC()
}

// MarkUnread steps the record back to downloaded, keeping the progression
// consistent for a record the device has already seen.
func (n *Notification) MarkUnread() {
	n.Status = StatusDownloaded
	n.IsRead = false
	n.UpdatedAt = time.Now().UTC()
}

// Normalize derives IsRead from Status and fills zero-value fields with
// defaults.
func (n *Notification) Normalize() {
	if n.Status == "" {
		n.Status = StatusNew
	}
	if n.Priority == "" {
		n.Priority = PriorityNormal
	}
	n.IsRead = n.Status == StatusRead
}

// Validate reports whether the record can be stored.
func (n *Notification) Validate() error {
	switch {
	case n.UserID == "":
		return ErrEmptyUserID
	case n.Title == "":
		return ErrInvalidNotification
	case !n.Type.Valid():
		return ErrInvalidNotification
	}
	return nil
}

// CountUnread returns the number of unread items in the list.
func CountUnread(items []Notification) int {
	count := 0
	for _, n := range items {
		if !n.IsRead {
			count++
		}
	}
	return count
}
