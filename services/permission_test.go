package services

import (
	"testing"

	"journal-editorial-api/models"
)

func TestAllowed(t *testing.T) {
	author := Actor{ID: 1, Role: models.RoleAuthor}
	editor := Actor{ID: 2, Role: models.RoleEditor}
	reviewer := Actor{ID: 3, Role: models.RoleReviewer}
	copyeditor := Actor{ID: 4, Role: models.RoleCopyeditor}
	production := Actor{ID: 5, Role: models.RoleProduction}

	tests := []struct {
		name   string
		actor  Actor
		action Action
		m      Membership
		want   bool
	}{
		{"author creates submissions", author, ActionSubmissionCreate, Membership{}, true},
		{"editor does not author submissions", editor, ActionSubmissionCreate, Membership{}, false},
		{"corresponding author submits", author, ActionSubmissionSubmit, Membership{CorrespondingAuthor: true}, true},
		{"co-author cannot submit", author, ActionSubmissionSubmit, Membership{CoAuthor: true}, false},
		{"co-author may upload documents", author, ActionDocumentUpload, Membership{CoAuthor: true}, true},

		{"editor invites reviewers", editor, ActionReviewInvite, Membership{}, true},
		{"assigned reviewer accepts", reviewer, ActionReviewAccept, Membership{AssignedReviewer: true}, true},
		{"other reviewers cannot accept", reviewer, ActionReviewAccept, Membership{}, false},
		{"editor cannot complete a review", editor, ActionReviewComplete, Membership{}, false},

		{"only editors record decisions", editor, ActionDecisionRecord, Membership{}, true},
		{"reviewers never record decisions", reviewer, ActionDecisionRecord, Membership{AssignedReviewer: true}, false},

		{"assigned copyeditor uploads", copyeditor, ActionCopyeditUpload, Membership{AssignedCopyeditor: true}, true},
		{"unassigned copyeditor cannot upload", copyeditor, ActionCopyeditUpload, Membership{}, false},
		{"co-author confirms copyedited files", author, ActionCopyeditConfirm, Membership{CoAuthor: true}, true},
		{"copyeditor cannot confirm on behalf of the author", copyeditor, ActionCopyeditConfirm, Membership{AssignedCopyeditor: true}, false},
		{"completion is editor-only", editor, ActionCopyeditComplete, Membership{}, true},

		{"production assignee uploads galleys", production, ActionGalleyUpload, Membership{ProductionAssignee: true}, true},
		{"unassigned production staff cannot", production, ActionGalleyUpload, Membership{}, false},
		{"editor uploads galleys without an assignment", editor, ActionGalleyUpload, Membership{}, true},
		{"galley approval is editor-only", production, ActionGalleyApprove, Membership{ProductionAssignee: true}, false},

		{"participant posts messages", copyeditor, ActionDiscussionMessage, Membership{DiscussionParticipant: true}, true},
		{"non-participant cannot post", reviewer, ActionDiscussionMessage, Membership{}, false},
		{"resolve is editor-only", copyeditor, ActionDiscussionResolve, Membership{DiscussionParticipant: true}, false},
		{"participant closes a thread", author, ActionDiscussionClose, Membership{DiscussionParticipant: true}, true},
		{"reopen is editor-only", editor, ActionDiscussionReopen, Membership{}, true},

		{"unknown action denies everyone", editor, Action("nonsense"), Membership{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allowed(tt.actor, tt.action, tt.m); got != tt.want {
				t.Fatalf("Allowed(%s, %s) = %v, want %v", tt.actor.Role, tt.action, got, tt.want)
			}
		})
	}
}

func TestRequireAllowedError(t *testing.T) {
	err := RequireAllowed(Actor{ID: 9, Role: models.RoleReviewer}, ActionDecisionRecord, Membership{})
	if err == nil {
		t.Fatal("expected permission error")
	}
	if kind, ok := KindOf(err); !ok || kind != KindPermission {
		t.Fatalf("expected permission kind, got %v", err)
	}
}
