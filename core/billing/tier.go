package billing

import (
	"strconv"

	"github.com/pkg/errors"
)

// ErrInvalidGrade is returned when a grade level cannot be classified into a
// pricing tier. It is always propagated to the caller, never defaulted.
var ErrInvalidGrade = errors.New("invalid grade level")

// Tier is a pricing bracket derived from a student's grade level.
type Tier string

const (
	TierK           Tier = "K"
	TierGrades1to2  Tier = "1-2"
	TierGrades3to8  Tier = "3-8"
	TierGrades9to12 Tier = "9-12"
)

// ClassifyGrade maps a raw grade level ("K", "1".."12") to its pricing Tier.
// The mapping is total over the 13 valid grades and fixed at compile time.
func ClassifyGrade(grade string) (Tier, error) {
	if grade == "K" {
		return TierK, nil
	}
	n, err := strconv.Atoi(grade)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidGrade, "%q", grade)
	}
	switch {
	case 1 <= n && n <= 2:
		return TierGrades1to2, nil
	case 3 <= n && n <= 8:
		return TierGrades3to8, nil
	case 9 <= n && n <= 12:
		return TierGrades9to12, nil
	}
	return "", errors.Wrapf(ErrInvalidGrade, "%q", grade)
}
