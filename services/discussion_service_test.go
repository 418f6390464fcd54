package services

import (
	"database/sql/driver"
	"regexp"
	"testing"

	"journal-editorial-api/models"
)

func discussionLookupSteps(status string) []*dbStep {
	return []*dbStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `discussions` WHERE discussion_id = "),
			columns: []string{"discussion_id", "context_type", "context_id", "submission_id", "subject", "status", "created_by", "version"},
			rows: [][]driver.Value{
				{int64(3), models.ContextCopyediting, int64(5), int64(7), "Figure quality", status, int64(9), int64(1)},
			},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT count\\(\\*\\) FROM `discussion_participants`"),
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(1)}},
		},
	}
}

func TestAddMessageResolvedDiscussion(t *testing.T) {
	gormDB, state, cleanup := newScriptedGormDB(t, discussionLookupSteps(models.DiscussionResolved))
	defer cleanup()

	svc := NewDiscussionService(gormDB)
	author := Actor{ID: 4, Role: models.RoleAuthor}

	_, err := svc.AddMessage(author, 3, "one more thing")
	if err == nil {
		t.Fatal("expected invalid-state error for a resolved discussion")
	}
	if kind, ok := KindOf(err); !ok || kind != KindInvalidState {
		t.Fatalf("expected invalid-state kind, got %v", err)
	}

	// No message insert reached the database.
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAddMessageClosedDiscussion(t *testing.T) {
	gormDB, state, cleanup := newScriptedGormDB(t, discussionLookupSteps(models.DiscussionClosed))
	defer cleanup()

	svc := NewDiscussionService(gormDB)
	author := Actor{ID: 4, Role: models.RoleAuthor}

	_, err := svc.AddMessage(author, 3, "one more thing")
	if err == nil {
		t.Fatal("expected invalid-state error for a closed discussion")
	}
	if kind, ok := KindOf(err); !ok || kind != KindInvalidState {
		t.Fatalf("expected invalid-state kind, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAddMessageRacingCloseIsRejected(t *testing.T) {
	// The discussion reads as OPEN but the guarded touch inside the
	// transaction matches no row, as after a concurrent resolve.
	steps := append(discussionLookupSteps(models.DiscussionOpen), &dbStep{
		kind:    kindExec,
		pattern: regexp.MustCompile("UPDATE `discussions` SET"),
		result:  execResult{rowsAffected: 0},
	})
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewDiscussionService(gormDB)
	author := Actor{ID: 4, Role: models.RoleAuthor}

	_, err := svc.AddMessage(author, 3, "one more thing")
	if err == nil {
		t.Fatal("expected invalid-state error when the discussion closes mid-flight")
	}
	if kind, ok := KindOf(err); !ok || kind != KindInvalidState {
		t.Fatalf("expected invalid-state kind, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
