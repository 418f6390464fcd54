package services

import (
	"database/sql/driver"
	"regexp"
	"strings"
	"testing"
	"time"

	"journal-editorial-api/models"
)

func TestCanCompleteCopyediting(t *testing.T) {
	file := func(name, fileType string) models.CopyeditingFile {
		return models.CopyeditingFile{OriginalName: name, FileType: fileType}
	}

	t.Run("no files blocks completion", func(t *testing.T) {
		err := CanCompleteCopyediting(nil)
		if err == nil {
			t.Fatal("expected precondition error")
		}
		if kind, ok := KindOf(err); !ok || kind != KindPrecondition {
			t.Fatalf("expected precondition kind, got %v", err)
		}
	})

	t.Run("all files confirmed", func(t *testing.T) {
		files := []models.CopyeditingFile{
			file("manuscript.docx", models.FileAuthorFinal),
			file("figures.zip", models.FileFinal),
		}
		if err := CanCompleteCopyediting(files); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("copyedited file awaiting confirmation blocks", func(t *testing.T) {
		files := []models.CopyeditingFile{
			file("manuscript.docx", models.FileAuthorFinal),
			file("tables.docx", models.FileCopyedited),
		}
		err := CanCompleteCopyediting(files)
		if err == nil {
			t.Fatal("expected precondition error")
		}
		if kind, ok := KindOf(err); !ok || kind != KindPrecondition {
			t.Fatalf("expected precondition kind, got %v", err)
		}
		if !strings.Contains(err.Error(), "tables.docx") {
			t.Fatalf("error should name the blocking file, got %q", err.Error())
		}
		if !strings.Contains(err.Error(), "author confirmation") {
			t.Fatalf("error should say what is missing, got %q", err.Error())
		}
	})

	t.Run("draft file blocks with a different message", func(t *testing.T) {
		files := []models.CopyeditingFile{
			file("manuscript.docx", models.FileDraft),
		}
		err := CanCompleteCopyediting(files)
		if err == nil {
			t.Fatal("expected precondition error")
		}
		if !strings.Contains(err.Error(), "not been copyedited") {
			t.Fatalf("error should say the file was never copyedited, got %q", err.Error())
		}
	})
}

func TestCompleteAssignmentVersionConflict(t *testing.T) {
	steps := []*dbStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `copyediting_assignments` WHERE assignment_id = "),
			columns: []string{"assignment_id", "submission_id", "copyeditor_id", "status", "version"},
			rows: [][]driver.Value{
				{int64(5), int64(7), int64(4), models.AssignmentInProgress, int64(2)},
			},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `copyediting_files` WHERE assignment_id = "),
			columns: []string{"file_id", "assignment_id", "file_type", "original_name", "version"},
			rows: [][]driver.Value{
				{int64(21), int64(5), models.FileAuthorFinal, "manuscript.docx", int64(1)},
			},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `copyediting_assignments` SET"),
			result:  execResult{rowsAffected: 0},
		},
	}
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewCopyeditingService(gormDB)
	editor := Actor{ID: 2, Role: models.RoleEditor}

	_, err := svc.CompleteAssignment(editor, 5, "")
	if err == nil {
		t.Fatal("expected conflict error when the assignment changed underneath")
	}
	if kind, ok := KindOf(err); !ok || kind != KindConflict {
		t.Fatalf("expected conflict kind, got %v", err)
	}

	// The transaction stops before the AUTHOR_FINAL -> FINAL promotion.
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestConfirmFinalSupersededAssignment(t *testing.T) {
	steps := []*dbStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `copyediting_files` WHERE file_id = "),
			columns: []string{"file_id", "assignment_id", "file_type", "original_name", "version"},
			rows: [][]driver.Value{
				{int64(21), int64(5), models.FileCopyedited, "manuscript.docx", int64(1)},
			},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `copyediting_assignments` WHERE assignment_id = "),
			columns: []string{"assignment_id", "submission_id", "copyeditor_id", "status", "superseded_at", "version"},
			rows: [][]driver.Value{
				{int64(5), int64(7), int64(4), models.AssignmentInProgress, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), int64(2)},
			},
		},
	}
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewCopyeditingService(gormDB)
	author := Actor{ID: 8, Role: models.RoleAuthor}

	_, err := svc.ConfirmFinal(author, 21, "")
	if err == nil {
		t.Fatal("expected invalid-state error on a superseded assignment")
	}
	if kind, ok := KindOf(err); !ok || kind != KindInvalidState {
		t.Fatalf("expected invalid-state kind, got %v", err)
	}

	// The file stays COPYEDITED: no update was issued.
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
