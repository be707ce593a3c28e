package trivia

import "errors"

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrPageOutOfRange   = errors.New("page out of range")
	ErrInvalidInput     = errors.New("invalid input")
)
