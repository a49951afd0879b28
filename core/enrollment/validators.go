package enrollment

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
	// registers the "gradelevel" validation used by GradeLevels fields in this package
	_ "github.com/trezcool/shule/core/student"
)

var (
	termTag     = "term"
	termText    = "invalid term"
	programTag  = "program"
	programText = "invalid program type"
)

func init() {
	_ = core.Validate.RegisterValidation(termTag, isValidTerm)
	core.RegisterCustomTranslation(termTag, termText)

	_ = core.Validate.RegisterValidation(programTag, isValidProgram)
	core.RegisterCustomTranslation(programTag, programText)
}

func isValidTerm(fl validator.FieldLevel) bool {
	val := Term(fl.Field().String())
	for _, t := range AllTerms {
		if val == t {
			return true
		}
	}
	return false
}

func isValidProgram(fl validator.FieldLevel) bool {
	val := ProgramType(fl.Field().String())
	for _, p := range AllPrograms {
		if val == p {
			return true
		}
	}
	return false
}
