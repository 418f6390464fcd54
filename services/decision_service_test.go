package services

import (
	"strings"
	"testing"
	"time"

	"journal-editorial-api/models"
)

func TestValidateDecision(t *testing.T) {
	letter := strings.Repeat("The manuscript needs work. ", 4)
	deadline := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		decisionType string
		letter       string
		deadline     *time.Time
		wantErr      bool
	}{
		{
			name:         "accept with a substantive letter",
			decisionType: models.DecisionAccept,
			letter:       letter,
		},
		{
			name:         "minor revision with deadline",
			decisionType: models.DecisionMinorRevision,
			letter:       letter,
			deadline:     &deadline,
		},
		{
			name:         "unknown decision type",
			decisionType: "DESK_REJECT",
			letter:       letter,
			wantErr:      true,
		},
		{
			name:         "letter too short",
			decisionType: models.DecisionAccept,
			letter:       "Accepted.",
			wantErr:      true,
		},
		{
			name:         "whitespace does not count toward the letter",
			decisionType: models.DecisionAccept,
			letter:       "Accepted." + strings.Repeat(" ", 100),
			wantErr:      true,
		},
		{
			name:         "revision without a deadline",
			decisionType: models.DecisionMajorRevision,
			letter:       letter,
			wantErr:      true,
		},
		{
			name:         "accept must not carry a deadline",
			decisionType: models.DecisionAccept,
			letter:       letter,
			deadline:     &deadline,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDecision(tt.decisionType, tt.letter, tt.deadline)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if kind, ok := KindOf(err); !ok || kind != KindValidation {
					t.Fatalf("expected validation kind, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
