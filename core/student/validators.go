package student

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

var (
	gradeTag  = "gradelevel"
	gradeText = "invalid grade level"
)

func init() {
	_ = core.Validate.RegisterValidation(gradeTag, isValidGrade)
	core.RegisterCustomTranslation(gradeTag, gradeText)
}

func isValidGrade(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, g := range ValidGrades {
		if val == g {
			return true
		}
	}
	return false
}
