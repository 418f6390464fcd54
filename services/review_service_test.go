package services

import (
	"testing"
	"time"

	"journal-editorial-api/models"
)

func TestReviewOverdueDerivation(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		status        string
		dueDate       time.Time
		wantOverdue   bool
		wantRemaining int
	}{
		{
			name:          "due yesterday while accepted",
			status:        models.ReviewAccepted,
			dueDate:       now.Add(-24 * time.Hour),
			wantOverdue:   true,
			wantRemaining: -1,
		},
		{
			name:          "due in a day and a half",
			status:        models.ReviewAccepted,
			dueDate:       now.Add(36 * time.Hour),
			wantOverdue:   false,
			wantRemaining: 1,
		},
		{
			name:          "past due but only invited",
			status:        models.ReviewInvited,
			dueDate:       now.Add(-72 * time.Hour),
			wantOverdue:   false,
			wantRemaining: -3,
		},
		{
			name:          "completed reviews are never overdue",
			status:        models.ReviewCompleted,
			dueDate:       now.Add(-24 * time.Hour),
			wantOverdue:   false,
			wantRemaining: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &models.ReviewAssignment{Status: tt.status, DueDate: tt.dueDate}
			if got := IsOverdue(r, now); got != tt.wantOverdue {
				t.Errorf("IsOverdue = %v, want %v", got, tt.wantOverdue)
			}
			if got := DaysRemaining(r, now); got != tt.wantRemaining {
				t.Errorf("DaysRemaining = %d, want %d", got, tt.wantRemaining)
			}
		})
	}
}

func TestReviewPayloadValidate(t *testing.T) {
	valid := ReviewPayload{
		Recommendation:   models.RecommendMinorRevision,
		ScoreOverall:     4,
		ScoreOriginality: 3,
	}
	if err := valid.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		payload ReviewPayload
	}{
		{
			name:    "unknown recommendation",
			payload: ReviewPayload{Recommendation: "MAYBE", ScoreOverall: 3, ScoreOriginality: 3},
		},
		{
			name:    "overall score too low",
			payload: ReviewPayload{Recommendation: models.RecommendAccept, ScoreOverall: 0, ScoreOriginality: 3},
		},
		{
			name:    "originality score too high",
			payload: ReviewPayload{Recommendation: models.RecommendAccept, ScoreOverall: 3, ScoreOriginality: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if kind, ok := KindOf(err); !ok || kind != KindValidation {
				t.Fatalf("expected validation kind, got %v", err)
			}
		})
	}
}
