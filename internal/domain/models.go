package domain

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	ClientID  string    `json:"clientId,omitempty"` // set for CLIENT-role users
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Client struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contactEmail"`
	Phone        string    `json:"phone,omitempty"`
	Website      string    `json:"website,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Issue struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       Status    `json:"status"`
	Priority     Priority  `json:"priority"`
	ClientID     string    `json:"clientId,omitempty"`
	ReportedByID string    `json:"reportedById"`
	AssignedToID string    `json:"assignedToId,omitempty"` // empty when unassigned
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Joined display fields, populated by list/get queries.
	ReporterName string    `json:"reporterName,omitempty"`
	AssigneeName string    `json:"assigneeName,omitempty"`
	Comments     []Comment `json:"comments,omitempty"`
}

type Comment struct {
	ID          string    `json:"id"`
	IssueID     string    `json:"issueId"`
	CreatedByID string    `json:"createdById"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"createdAt"`

	AuthorName string `json:"authorName,omitempty"` // joined
}

type File struct {
	ID           string    `json:"id"`
	IssueID      string    `json:"issueId"`
	UploadedByID string    `json:"uploadedById"`
	Name         string    `json:"name"`
	Key          string    `json:"-"` // blob store key, never serialized
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NotificationType labels why a notification was produced.
type NotificationType string

const (
	NotificationStatusChanged NotificationType = "STATUS_CHANGED"
	NotificationAssigned      NotificationType = "ASSIGNED"
	NotificationCommented     NotificationType = "COMMENTED"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	IssueID   string           `json:"issueId"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}
