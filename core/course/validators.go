package course

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/educode/core"
)

var (
	answerRangeTag  = "answerrange"
	answerRangeText = "the correct answer must be one of the options"
)

func init() {
	core.Validate.RegisterStructValidation(quizQuestionStructValidation, QuizQuestion{})
	core.RegisterCustomTranslation(core.Validate, core.Translator, answerRangeTag, answerRangeText)
}

func quizQuestionStructValidation(sl validator.StructLevel) {
	q, ok := sl.Current().Interface().(QuizQuestion)
	if !ok {
		return
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		sl.ReportError(q.CorrectIndex, "correct_index", "CorrectIndex", answerRangeTag, "")
	}
}
