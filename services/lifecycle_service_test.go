package services

import (
	"testing"
	"time"

	"journal-editorial-api/models"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-48 * time.Hour)

	tests := []struct {
		name string
		snap LifecycleSnapshot
		want string
	}{
		{
			name: "fresh submission is draft",
			snap: LifecycleSnapshot{Submission: &models.Submission{}},
			want: models.StatusDraft,
		},
		{
			name: "submitted without reviews",
			snap: LifecycleSnapshot{
				Submission: &models.Submission{SubmittedAt: &earlier},
			},
			want: models.StatusSubmitted,
		},
		{
			name: "first review assignment moves it under review",
			snap: LifecycleSnapshot{
				Submission:  &models.Submission{SubmittedAt: &earlier},
				ReviewCount: 1,
			},
			want: models.StatusUnderReview,
		},
		{
			name: "accept decision",
			snap: LifecycleSnapshot{
				Submission:     &models.Submission{SubmittedAt: &earlier},
				ReviewCount:    2,
				MaxReviewRound: 1,
				LatestDecision: &models.EditorialDecision{DecisionType: models.DecisionAccept, ReviewRound: 1, CreatedAt: earlier},
			},
			want: models.StatusAccepted,
		},
		{
			name: "reject decision",
			snap: LifecycleSnapshot{
				Submission:     &models.Submission{SubmittedAt: &earlier},
				ReviewCount:    2,
				MaxReviewRound: 1,
				LatestDecision: &models.EditorialDecision{DecisionType: models.DecisionReject, ReviewRound: 1, CreatedAt: earlier},
			},
			want: models.StatusRejected,
		},
		{
			name: "revision requested and nothing resubmitted yet",
			snap: LifecycleSnapshot{
				Submission:     &models.Submission{SubmittedAt: &earlier},
				ReviewCount:    2,
				MaxReviewRound: 1,
				LatestDecision: &models.EditorialDecision{DecisionType: models.DecisionMinorRevision, ReviewRound: 1, CreatedAt: earlier},
			},
			want: models.StatusRevisionRequired,
		},
		{
			name: "revision resubmitted after the decision",
			snap: LifecycleSnapshot{
				Submission:     &models.Submission{SubmittedAt: &earlier, RevisedAt: &now},
				ReviewCount:    2,
				MaxReviewRound: 1,
				LatestDecision: &models.EditorialDecision{DecisionType: models.DecisionMajorRevision, ReviewRound: 1, CreatedAt: earlier},
			},
			want: models.StatusRevised,
		},
		{
			name: "revised manuscript back out for a new round",
			snap: LifecycleSnapshot{
				Submission:     &models.Submission{SubmittedAt: &earlier, RevisedAt: &now},
				ReviewCount:    3,
				MaxReviewRound: 2,
				LatestDecision: &models.EditorialDecision{DecisionType: models.DecisionMinorRevision, ReviewRound: 1, CreatedAt: earlier},
			},
			want: models.StatusUnderReview,
		},
		{
			name: "active copyediting",
			snap: LifecycleSnapshot{
				Submission:        &models.Submission{SubmittedAt: &earlier},
				LatestDecision:    &models.EditorialDecision{DecisionType: models.DecisionAccept, ReviewRound: 1, CreatedAt: earlier},
				ActiveCopyediting: &models.CopyeditingAssignment{Status: models.AssignmentInProgress},
			},
			want: models.StatusCopyediting,
		},
		{
			name: "completed copyediting means production",
			snap: LifecycleSnapshot{
				Submission:        &models.Submission{SubmittedAt: &earlier},
				LatestDecision:    &models.EditorialDecision{DecisionType: models.DecisionAccept, ReviewRound: 1, CreatedAt: earlier},
				ActiveCopyediting: &models.CopyeditingAssignment{Status: models.AssignmentCompleted},
			},
			want: models.StatusProduction,
		},
		{
			name: "published schedule wins over production",
			snap: LifecycleSnapshot{
				Submission:        &models.Submission{SubmittedAt: &earlier},
				LatestDecision:    &models.EditorialDecision{DecisionType: models.DecisionAccept, ReviewRound: 1, CreatedAt: earlier},
				ActiveCopyediting: &models.CopyeditingAssignment{Status: models.AssignmentCompleted},
				LatestSchedule:    &models.PublicationSchedule{Status: models.SchedulePublished},
			},
			want: models.StatusPublished,
		},
		{
			name: "cancelled schedule leaves it in production",
			snap: LifecycleSnapshot{
				Submission:        &models.Submission{SubmittedAt: &earlier},
				LatestDecision:    &models.EditorialDecision{DecisionType: models.DecisionAccept, ReviewRound: 1, CreatedAt: earlier},
				ActiveCopyediting: &models.CopyeditingAssignment{Status: models.AssignmentCompleted},
				LatestSchedule:    &models.PublicationSchedule{Status: models.ScheduleCancelled},
			},
			want: models.StatusProduction,
		},
		{
			name: "withdrawal is terminal over everything else",
			snap: LifecycleSnapshot{
				Submission:        &models.Submission{SubmittedAt: &earlier, WithdrawnAt: &now},
				ReviewCount:       2,
				ActiveCopyediting: &models.CopyeditingAssignment{Status: models.AssignmentCompleted},
				LatestSchedule:    &models.PublicationSchedule{Status: models.SchedulePublished},
			},
			want: models.StatusWithdrawn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(tt.snap); got != tt.want {
				t.Fatalf("DeriveStatus = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIsOpenState(t *testing.T) {
	open := []string{
		models.StatusDraft, models.StatusSubmitted, models.StatusUnderReview,
		models.StatusRevisionRequired, models.StatusRevised,
	}
	for _, status := range open {
		if !IsOpenState(status) {
			t.Errorf("expected %s to be open", status)
		}
	}

	closed := []string{
		models.StatusAccepted, models.StatusRejected, models.StatusCopyediting,
		models.StatusProduction, models.StatusPublished, models.StatusWithdrawn,
	}
	for _, status := range closed {
		if IsOpenState(status) {
			t.Errorf("expected %s not to be open", status)
		}
	}
}
