package domain

import (
	"bytes"
	"fmt"
)

const (
	// QuestionsPerLevel is the fixed number of questions in each level.
	QuestionsPerLevel = 5
	// UnlockThreshold is the number of correct answers a level needs to unlock the next one.
	UnlockThreshold = 3
)

// Answer is the recorded outcome of one question.
type Answer int8

const (
	Unanswered Answer = iota
	Correct
	Incorrect
)

// AnswerOf converts a validation result into a recorded outcome.
func AnswerOf(correct bool) Answer {
	if correct {
		return Correct
	}
	return Incorrect
}

// Defined reports whether the question was submitted at least once.
func (a Answer) Defined() bool { return a == Correct || a == Incorrect }

// MarshalJSON encodes unanswered entries as null so they stay distinct from false.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a {
	case Correct:
		return []byte("true"), nil
	case Incorrect:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*a = Correct
	case "false":
		*a = Incorrect
	case "null":
		*a = Unanswered
	default:
		return fmt.Errorf("invalid outcome %s", data)
	}
	return nil
}

// Outcomes is the ordered per-question record of one level.
type Outcomes []Answer

// At returns the outcome at index i, Unanswered when i is past the end.
func (o Outcomes) At(i int) Answer {
	if i < 0 || i >= len(o) {
		return Unanswered
	}
	return o[i]
}

// With returns a copy of o where index i holds a, growing with unanswered gaps.
func (o Outcomes) With(i int, a Answer) Outcomes {
	size := len(o)
	if i+1 > size {
		size = i + 1
	}
	out := make(Outcomes, size)
	copy(out, o)
	out[i] = a
	return out
}

// CorrectCount counts the true entries.
func (o Outcomes) CorrectCount() int {
	n := 0
	for _, a := range o {
		if a == Correct {
			n++
		}
	}
	return n
}

// AnsweredCount counts the defined entries.
func (o Outcomes) AnsweredCount() int {
	n := 0
	for _, a := range o {
		if a.Defined() {
			n++
		}
	}
	return n
}

// AllAnswered reports whether every index 0..QuestionsPerLevel-1 is defined.
func (o Outcomes) AllAnswered() bool {
	for i := 0; i < QuestionsPerLevel; i++ {
		if !o.At(i).Defined() {
			return false
		}
	}
	return true
}

// FirstUnanswered is the resume position; QuestionsPerLevel-1 when the level is fully answered.
func (o Outcomes) FirstUnanswered() int {
	for i := 0; i < QuestionsPerLevel; i++ {
		if !o.At(i).Defined() {
			return i
		}
	}
	return QuestionsPerLevel - 1
}

// UserProgress is the single persisted record of a quiz run.
type UserProgress struct {
	Username        string             `json:"username"`
	CurrentLevel    Level              `json:"currentLevel"`
	CurrentQuestion int                `json:"currentQuestion"`
	LevelProgress   map[Level]Outcomes `json:"levelProgress"`
	CompletedLevels []Level            `json:"completedLevels"`
	TotalScore      int                `json:"totalScore"`
}

// NewUserProgress returns the zero state for a freshly named user.
func NewUserProgress(username string) UserProgress {
	p := UserProgress{
		Username:        username,
		CurrentLevel:    Beginner,
		LevelProgress:   make(map[Level]Outcomes, LevelCount),
		CompletedLevels: []Level{},
	}
	for _, l := range Levels() {
		p.LevelProgress[l] = Outcomes{}
	}
	return p
}

// Clone returns a deep copy safe to hand to callers.
func (p UserProgress) Clone() UserProgress {
	out := p
	out.LevelProgress = make(map[Level]Outcomes, len(p.LevelProgress))
	for l, o := range p.LevelProgress {
		out.LevelProgress[l] = append(Outcomes{}, o...)
	}
	out.CompletedLevels = append([]Level{}, p.CompletedLevels...)
	return out
}

// Normalize restores the four-key and completed-set invariants on a decoded record.
func (p *UserProgress) Normalize() {
	if p.LevelProgress == nil {
		p.LevelProgress = make(map[Level]Outcomes, LevelCount)
	}
	for _, l := range Levels() {
		if p.LevelProgress[l] == nil {
			p.LevelProgress[l] = Outcomes{}
		}
	}
	if !p.CurrentLevel.Valid() {
		p.CurrentLevel = Beginner
	}
	// Keep the stored order, drop entries that do not hold, add the ones that are missing.
	completed := make([]Level, 0, LevelCount)
	seen := make(map[Level]bool, LevelCount)
	for _, l := range p.CompletedLevels {
		if l.Valid() && !seen[l] && p.LevelProgress[l].AllAnswered() {
			completed = append(completed, l)
			seen[l] = true
		}
	}
	for _, l := range Levels() {
		if !seen[l] && p.LevelProgress[l].AllAnswered() {
			completed = append(completed, l)
		}
	}
	p.CompletedLevels = completed
}

// IsCompleted reports whether l is in CompletedLevels.
func (p UserProgress) IsCompleted(l Level) bool {
	for _, c := range p.CompletedLevels {
		if c == l {
			return true
		}
	}
	return false
}
