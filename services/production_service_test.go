package services

import (
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"journal-editorial-api/models"
)

func galleyLookupSteps(approved bool) []*dbStep {
	return []*dbStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `production_files` WHERE galley_id = "),
			columns: []string{"galley_id", "assignment_id", "galley_format", "label", "is_approved", "is_published", "version"},
			rows: [][]driver.Value{
				{int64(11), int64(5), "PDF", "Article PDF", approved, false, int64(1)},
			},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `production_assignments` WHERE assignment_id = "),
			columns: []string{"assignment_id", "submission_id", "assigned_to", "role", "status", "version"},
			rows: [][]driver.Value{
				{int64(5), int64(7), int64(9), models.LayoutEditor, models.AssignmentInProgress, int64(1)},
			},
		},
	}
}

func TestPublishGalleyRequiresApproval(t *testing.T) {
	gormDB, state, cleanup := newScriptedGormDB(t, galleyLookupSteps(false))
	defer cleanup()

	svc := NewProductionService(gormDB)
	editor := Actor{ID: 2, Role: models.RoleEditor}

	_, err := svc.PublishGalley(editor, 11)
	if err == nil {
		t.Fatal("expected precondition error for an unapproved galley")
	}
	if kind, ok := KindOf(err); !ok || kind != KindPrecondition {
		t.Fatalf("expected precondition kind, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestApproveGalleyTwiceIsRejected(t *testing.T) {
	gormDB, state, cleanup := newScriptedGormDB(t, galleyLookupSteps(true))
	defer cleanup()

	svc := NewProductionService(gormDB)
	editor := Actor{ID: 2, Role: models.RoleEditor}

	_, err := svc.ApproveGalley(editor, 11)
	if err == nil {
		t.Fatal("expected invalid-state error for a second approval")
	}
	if kind, ok := KindOf(err); !ok || kind != KindInvalidState {
		t.Fatalf("expected invalid-state kind, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestScheduleInputValidate(t *testing.T) {
	valid := ScheduleInput{
		ScheduledDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Volume:        12,
		Issue:         3,
		Year:          2026,
	}
	if err := valid.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missingDate := valid
	missingDate.ScheduledDate = time.Time{}
	if err := missingDate.validate(); err == nil {
		t.Fatal("expected error for a missing scheduled date")
	}

	badIssue := valid
	badIssue.Issue = 0
	if err := badIssue.validate(); err == nil {
		t.Fatal("expected error for a non-positive issue")
	}
}
