package meta

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/bloombooks/bloomshelf/internal/archive"
)

// QuestionGroup is one language's worth of comprehension questions.
type QuestionGroup struct {
	Lang      string     `json:"lang"`
	Font      string     `json:"font,omitempty"`
	Questions []Question `json:"questions"`
}

// Question is a single question with its candidate answers.
type Question struct {
	Question string   `json:"question"`
	Answers  []Answer `json:"answers"`
}

// Answer is one candidate answer.
type Answer struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// ReadQuiz extracts and parses questions.json. Books without a quiz (or
// with a malformed one) report ErrParse; the caller substitutes an empty
// quiz.
func ReadQuiz(a *archive.Accessor) ([]QuestionGroup, error) {
	path, ok := a.Entry("questions.json")
	if !ok {
		return nil, fmt.Errorf("questions.json: %w", ErrParse)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("questions.json: %w", ErrParse)
	}
	var groups []QuestionGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("questions.json: %w", errors.Join(ErrParse, err))
	}
	return groups, nil
}
