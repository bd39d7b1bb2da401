package repository

type IssueFilter struct {
	Q          string
	Status     string
	Priority   string
	ClientID   string
	AssigneeID string
	ReporterID string
	// InvolvedUserID restricts results to issues the user reported or is
	// assigned to. Set for callers who may not browse the whole tracker.
	InvolvedUserID string
	Limit          int
	Offset         int
	Sort           string // created_at, updated_at, priority
	Order          string // asc|desc
}

type ClientFilter struct {
	Q      string
	Limit  int
	Offset int
}

type UserFilter struct {
	Q      string
	Role   string
	Active *bool
	Limit  int
	Offset int
}

type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Limit      int
	Offset     int
}
