package services

import (
	"regexp"
	"testing"

	"journal-editorial-api/models"
)

func TestConditionalUpdateConflict(t *testing.T) {
	steps := []*dbStep{
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `submissions` SET"),
			result:  execResult{rowsAffected: 0},
		},
	}
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	err := conditionalUpdate(gormDB, &models.Submission{}, "submission_id", 7, 3, map[string]interface{}{
		"title": "Renamed",
	})
	if err == nil {
		t.Fatal("expected conflict error when no row matches the version")
	}
	if kind, ok := KindOf(err); !ok || kind != KindConflict {
		t.Fatalf("expected conflict kind, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestConditionalUpdateBumpsVersion(t *testing.T) {
	steps := []*dbStep{
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `submissions` SET"),
			result:  execResult{rowsAffected: 1},
		},
	}
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	updates := map[string]interface{}{"title": "Renamed"}
	if err := conditionalUpdate(gormDB, &models.Submission{}, "submission_id", 7, 3, updates); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updates["version"] != 4 {
		t.Fatalf("expected version bump to 4, got %v", updates["version"])
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestLateResubmissionPolicyDefault(t *testing.T) {
	t.Setenv("LATE_RESUBMISSION_POLICY", "")
	if got := LateResubmissionPolicy(); got != LatePolicyAcceptFlagged {
		t.Fatalf("default policy = %s, want %s", got, LatePolicyAcceptFlagged)
	}

	t.Setenv("LATE_RESUBMISSION_POLICY", "REJECT")
	if got := LateResubmissionPolicy(); got != LatePolicyReject {
		t.Fatalf("policy = %s, want %s", got, LatePolicyReject)
	}

	t.Setenv("LATE_RESUBMISSION_POLICY", "something-else")
	if got := LateResubmissionPolicy(); got != LatePolicyAcceptFlagged {
		t.Fatalf("unknown policy should fall back, got %s", got)
	}
}
