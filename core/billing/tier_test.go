package billing

import (
	"testing"

	"github.com/pkg/errors"
)

func TestClassifyGrade(t *testing.T) {
	tests := []struct {
		grade   string
		want    Tier
		wantErr bool
	}{
		{grade: "K", want: TierK},
		{grade: "1", want: TierGrades1to2},
		{grade: "2", want: TierGrades1to2},
		{grade: "3", want: TierGrades3to8},
		{grade: "7", want: TierGrades3to8},
		{grade: "8", want: TierGrades3to8},
		{grade: "9", want: TierGrades9to12},
		{grade: "12", want: TierGrades9to12},
		{grade: "13", wantErr: true},
		{grade: "0", wantErr: true},
		{grade: "-1", wantErr: true},
		{grade: "k", wantErr: true},
		{grade: "", wantErr: true},
		{grade: "1st", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.grade, func(t *testing.T) {
			got, err := ClassifyGrade(tt.grade)
			if tt.wantErr {
				if errors.Cause(err) != ErrInvalidGrade {
					t.Errorf("ClassifyGrade(%q) error = %v, want ErrInvalidGrade", tt.grade, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ClassifyGrade(%q) unexpected error: %v", tt.grade, err)
			}
			if got != tt.want {
				t.Errorf("ClassifyGrade(%q) = %v, want %v", tt.grade, got, tt.want)
			}
		})
	}
}
