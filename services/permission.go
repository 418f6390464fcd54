package services

import "journal-editorial-api/models"

// Action names every gated workflow command. Controllers never check roles
// inline; every mutating service call goes through Allowed first.
type Action string

const (
	ActionSubmissionCreate   Action = "submission.create"
	ActionSubmissionUpdate   Action = "submission.update"
	ActionSubmissionSubmit   Action = "submission.submit"
	ActionSubmissionRevise   Action = "submission.revise"
	ActionSubmissionWithdraw Action = "submission.withdraw"
	ActionDocumentUpload     Action = "submission.document.upload"

	ActionReviewInvite   Action = "review.invite"
	ActionReviewAccept   Action = "review.accept"
	ActionReviewDecline  Action = "review.decline"
	ActionReviewComplete Action = "review.complete"

	ActionDecisionRecord Action = "decision.record"

	ActionCopyeditAssign   Action = "copyediting.assign"
	ActionCopyeditUpload   Action = "copyediting.upload"
	ActionCopyeditSubmit   Action = "copyediting.submit"
	ActionCopyeditConfirm  Action = "copyediting.confirm"
	ActionCopyeditComplete Action = "copyediting.complete"

	ActionProductionAssign   Action = "production.assign"
	ActionGalleyUpload       Action = "production.galley.upload"
	ActionGalleyApprove      Action = "production.galley.approve"
	ActionGalleyPublish      Action = "production.galley.publish"
	ActionProductionComplete Action = "production.complete"

	ActionScheduleCreate  Action = "schedule.create"
	ActionSchedulePublish Action = "schedule.publish"
	ActionScheduleCancel  Action = "schedule.cancel"

	ActionDiscussionCreate  Action = "discussion.create"
	ActionDiscussionMessage Action = "discussion.message"
	ActionDiscussionResolve Action = "discussion.resolve"
	ActionDiscussionClose   Action = "discussion.close"
	ActionDiscussionReopen  Action = "discussion.reopen"
)

// Actor is the resolved identity performing a command.
type Actor struct {
	ID   int
	Role string
}

// Membership holds the actor's relationships to the submission under
// action, resolved by the caller before gating.
type Membership struct {
	CorrespondingAuthor   bool
	CoAuthor              bool
	AssignedReviewer      bool // assignee of the review being acted on
	AssignedCopyeditor    bool // assignee of the active copyediting assignment
	ProductionAssignee    bool // assignee of the production assignment
	DiscussionParticipant bool
}

func (m Membership) anyAuthor() bool {
	return m.CorrespondingAuthor || m.CoAuthor
}

type capability struct {
	role     string
	requires func(Membership) bool // nil means role alone suffices
}

var capabilityTable = map[Action][]capability{
	ActionSubmissionCreate:   {{role: models.RoleAuthor}},
	ActionSubmissionUpdate:   {{role: models.RoleAuthor, requires: func(m Membership) bool { return m.CorrespondingAuthor }}},
	ActionSubmissionSubmit:   {{role: models.RoleAuthor, requires: func(m Membership) bool { return m.CorrespondingAuthor }}},
	ActionSubmissionRevise:   {{role: models.RoleAuthor, requires: Membership.anyAuthor}},
	ActionSubmissionWithdraw: {{role: models.RoleAuthor, requires: func(m Membership) bool { return m.CorrespondingAuthor }}},
	ActionDocumentUpload:     {{role: models.RoleAuthor, requires: Membership.anyAuthor}},

	ActionReviewInvite:   {{role: models.RoleEditor}},
	ActionReviewAccept:   {{role: models.RoleReviewer, requires: func(m Membership) bool { return m.AssignedReviewer }}},
	ActionReviewDecline:  {{role: models.RoleReviewer, requires: func(m Membership) bool { return m.AssignedReviewer }}},
	ActionReviewComplete: {{role: models.RoleReviewer, requires: func(m Membership) bool { return m.AssignedReviewer }}},

	ActionDecisionRecord: {{role: models.RoleEditor}},

	ActionCopyeditAssign: {{role: models.RoleEditor}},
	ActionCopyeditUpload: {{role: models.RoleCopyeditor, requires: func(m Membership) bool { return m.AssignedCopyeditor }}},
	ActionCopyeditSubmit: {{role: models.RoleCopyeditor, requires: func(m Membership) bool { return m.AssignedCopyeditor }}},
	// Co-authors may confirm on behalf of the corresponding author.
	ActionCopyeditConfirm:  {{role: models.RoleAuthor, requires: Membership.anyAuthor}},
	ActionCopyeditComplete: {{role: models.RoleEditor}},

	ActionProductionAssign: {
		{role: models.RoleEditor},
	},
	ActionGalleyUpload: {
		{role: models.RoleProduction, requires: func(m Membership) bool { return m.ProductionAssignee }},
		{role: models.RoleEditor},
	},
	ActionGalleyApprove:      {{role: models.RoleEditor}},
	ActionGalleyPublish:      {{role: models.RoleEditor}},
	ActionProductionComplete: {{role: models.RoleEditor}},

	ActionScheduleCreate:  {{role: models.RoleEditor}},
	ActionSchedulePublish: {{role: models.RoleEditor}},
	ActionScheduleCancel:  {{role: models.RoleEditor}},

	ActionDiscussionCreate: {
		{role: models.RoleEditor},
		{role: models.RoleAuthor, requires: Membership.anyAuthor},
		{role: models.RoleCopyeditor, requires: func(m Membership) bool { return m.AssignedCopyeditor }},
		{role: models.RoleProduction, requires: func(m Membership) bool { return m.ProductionAssignee }},
	},
	ActionDiscussionMessage: {
		{role: models.RoleEditor},
		{role: models.RoleAuthor, requires: func(m Membership) bool { return m.DiscussionParticipant }},
		{role: models.RoleCopyeditor, requires: func(m Membership) bool { return m.DiscussionParticipant }},
		{role: models.RoleProduction, requires: func(m Membership) bool { return m.DiscussionParticipant }},
		{role: models.RoleReviewer, requires: func(m Membership) bool { return m.DiscussionParticipant }},
	},
	ActionDiscussionResolve: {{role: models.RoleEditor}},
	ActionDiscussionClose: {
		{role: models.RoleEditor},
		{role: models.RoleAuthor, requires: func(m Membership) bool { return m.DiscussionParticipant }},
		{role: models.RoleCopyeditor, requires: func(m Membership) bool { return m.DiscussionParticipant }},
		{role: models.RoleProduction, requires: func(m Membership) bool { return m.DiscussionParticipant }},
	},
	ActionDiscussionReopen: {{role: models.RoleEditor}},
}

// Allowed is the permission gate: a pure function of role, action and
// membership. No database access, no clock.
func Allowed(actor Actor, action Action, m Membership) bool {
	caps, ok := capabilityTable[action]
	if !ok {
		return false
	}
	for _, cap := range caps {
		if cap.role != actor.Role {
			continue
		}
		if cap.requires == nil || cap.requires(m) {
			return true
		}
	}
	return false
}

// RequireAllowed wraps Allowed into the error taxonomy.
func RequireAllowed(actor Actor, action Action, m Membership) error {
	if !Allowed(actor, action, m) {
		return NewPermissionError("role %s may not perform %s", actor.Role, string(action))
	}
	return nil
}
