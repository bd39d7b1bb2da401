package authz

import "github.com/thehashrocket/issue-portal-sub000/internal/domain"

// Resource names a protected entity kind.
type Resource string

const (
	ResourceIssue        Resource = "issue"
	ResourceClient       Resource = "client"
	ResourceUser         Resource = "user"
	ResourceComment      Resource = "comment"
	ResourceFile         Resource = "file"
	ResourceNotification Resource = "notification"
	ResourceReport       Resource = "report"
)

// Action names an operation on a resource.
type Action string

const (
	ActionView         Action = "view"
	ActionList         Action = "list"
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionUpdateStatus Action = "updateStatus"
)

// ResourceData carries the per-record fields rules may inspect. OwnerID is
// the creator (reporter, author, uploader, or the target user itself for
// user.update); AssigneeID is the issue assignee where one exists.
type ResourceData struct {
	OwnerID    string
	AssigneeID string
}

// Rule decides a single resource/action pair. Rules run only for non-nil
// sessions; the registry lookup handles everything else.
type Rule func(s *Session, rd ResourceData) bool

type ruleKey struct {
	Resource Resource
	Action   Action
}

func anyAuthenticated(_ *Session, _ ResourceData) bool { return true }

func roleIn(roles ...domain.Role) Rule {
	return func(s *Session, _ ResourceData) bool {
		return s.HasRole(roles...)
	}
}

// staffOrParticipant grants staff roles plus the record's owner or assignee.
func staffOrParticipant(s *Session, rd ResourceData) bool {
	return s.HasRole(domain.RoleAdmin, domain.RoleDeveloper) ||
		s.IsOwner(rd.OwnerID) ||
		s.IsAssigned(rd.AssigneeID)
}

// staffOrOwner grants staff roles plus the record's owner. Being assignee
// is not enough here.
func staffOrOwner(s *Session, rd ResourceData) bool {
	return s.HasRole(domain.RoleAdmin, domain.RoleDeveloper) || s.IsOwner(rd.OwnerID)
}

func adminOrSelf(s *Session, rd ResourceData) bool {
	return s.IsAdmin() || s.IsOwner(rd.OwnerID)
}

func ownerOnly(s *Session, rd ResourceData) bool {
	return s.IsOwner(rd.OwnerID)
}

// rules is the complete authorization table. A pair absent from the table
// is denied, so every endpoint must register what it needs here.
var rules = map[ruleKey]Rule{
	{ResourceIssue, ActionCreate}:       anyAuthenticated,
	{ResourceIssue, ActionList}:         anyAuthenticated,
	{ResourceIssue, ActionView}:         staffOrParticipant,
	{ResourceIssue, ActionUpdate}:       staffOrParticipant,
	{ResourceIssue, ActionUpdateStatus}: roleIn(domain.RoleAdmin, domain.RoleDeveloper, domain.RoleAccountManager),
	{ResourceIssue, ActionDelete}:       staffOrOwner,

	{ResourceClient, ActionView}:   roleIn(domain.RoleAdmin, domain.RoleAccountManager, domain.RoleDeveloper),
	{ResourceClient, ActionList}:   roleIn(domain.RoleAdmin, domain.RoleAccountManager, domain.RoleDeveloper),
	{ResourceClient, ActionCreate}: roleIn(domain.RoleAdmin, domain.RoleAccountManager),
	{ResourceClient, ActionUpdate}: roleIn(domain.RoleAdmin, domain.RoleAccountManager),
	{ResourceClient, ActionDelete}: roleIn(domain.RoleAdmin),

	{ResourceUser, ActionView}:   roleIn(domain.RoleAdmin),
	{ResourceUser, ActionList}:   roleIn(domain.RoleAdmin),
	{ResourceUser, ActionCreate}: roleIn(domain.RoleAdmin),
	{ResourceUser, ActionUpdate}: adminOrSelf,
	{ResourceUser, ActionDelete}: roleIn(domain.RoleAdmin),

	// Comment and file access inside an issue additionally requires
	// issue.view on the parent; handlers check that first.
	{ResourceComment, ActionCreate}: anyAuthenticated,
	{ResourceComment, ActionList}:   anyAuthenticated,
	{ResourceComment, ActionDelete}: staffOrOwner,

	{ResourceFile, ActionCreate}: anyAuthenticated,
	{ResourceFile, ActionView}:   anyAuthenticated,
	{ResourceFile, ActionDelete}: staffOrOwner,

	{ResourceNotification, ActionList}:   anyAuthenticated,
	{ResourceNotification, ActionUpdate}: ownerOnly,

	{ResourceReport, ActionView}: roleIn(domain.RoleAdmin, domain.RoleAccountManager, domain.RoleDeveloper),
}
