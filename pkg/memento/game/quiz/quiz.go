// Package quiz implements the multiple choice recall quiz.
package quiz

import (
	"errors"
	"fmt"
)

// ErrComplete is returned when answering a finished quiz.
var ErrComplete = errors.New("quiz is complete")

// State is the progress through a question list.
type State struct {
	Index    int  `json:"index"`
	Score    int  `json:"score"`
	Complete bool `json:"complete"`
}

// Next records selected as the answer to the current question. Answers after
// completion leave the state unchanged.
func Next(s State, questions []Question, selected string) State {
	if s.Complete || s.Index < 0 || s.Index >= len(questions) {
		return s
	}
	if selected == questions[s.Index].Answer {
		s.Score++
	}
	if s.Index < len(questions)-1 {
		s.Index++
	} else {
		s.Complete = true
	}
	return s
}

// Tier is the result band shown at the end of a quiz.
type Tier string

const (
	TierPerfect  Tier = "A"
	TierGood     Tier = "B"
	TierPractice Tier = "C"
)

// Band maps a final score to its tier: all correct, at least half, or less.
func Band(score, total int) Tier {
	switch {
	case score == total:
		return TierPerfect
	case 2*score >= total:
		return TierGood
	}
	return TierPractice
}

func (t Tier) Message() string {
	switch t {
	case TierPerfect:
		return "Perfect! Excellent memory!"
	case TierGood:
		return "Good job! Keep practicing!"
	}
	return "Keep playing to improve!"
}

// Summary is the end of quiz result.
type Summary struct {
	Score   int    `json:"score"`
	Total   int    `json:"total"`
	Tier    Tier   `json:"tier"`
	Message string `json:"message"`
}

// Quiz hosts a State over a fixed question list. Not safe for concurrent use.
type Quiz struct {
	questions []Question
	state     State
}

// New creates a quiz over questions.
func New(questions []Question) (*Quiz, error) {
	if err := Validate(questions); err != nil {
		return nil, err
	}
	return &Quiz{questions: append([]Question(nil), questions...)}, nil
}

// Current returns the question being asked; false once the quiz is complete.
func (q *Quiz) Current() (Question, bool) {
	if q.state.Complete {
		return Question{}, false
	}
	return q.questions[q.state.Index], true
}

// Answer records selected and reports whether it was correct.
func (q *Quiz) Answer(selected string) (bool, error) {
	if q.state.Complete {
		return false, ErrComplete
	}
	correct := selected == q.questions[q.state.Index].Answer
	q.state = Next(q.state, q.questions, selected)
	return correct, nil
}

// Reset starts over from the first question.
func (q *Quiz) Reset() {
	q.state = State{}
}

// State returns the current progress.
func (q *Quiz) State() State {
	return q.state
}

// Total returns the number of questions.
func (q *Quiz) Total() int {
	return len(q.questions)
}

// Summary returns the result band. It is only meaningful once the quiz is complete.
func (q *Quiz) Summary() Summary {
	tier := Band(q.state.Score, len(q.questions))
	return Summary{
		Score:   q.state.Score,
		Total:   len(q.questions),
		Tier:    tier,
		Message: tier.Message(),
	}
}

// Progress renders the "Question i of N" caption.
func (q *Quiz) Progress() string {
	return fmt.Sprintf("Question %d of %d", q.state.Index+1, len(q.questions))
}
