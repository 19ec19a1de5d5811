package domain

import (
	"fmt"
	"strings"
)

// Level is one of the four fixed difficulty tiers, in unlock order.
type Level int

const (
	Beginner Level = iota
	Intermediate
	Advanced
	Master
)

// LevelCount is the number of levels in the quiz.
const LevelCount = 4

var levelNames = [LevelCount]string{"beginner", "intermediate", "advanced", "master"}

var levelTitles = [LevelCount]string{"Beginner", "Intermediate", "Advanced", "Master"}

// Levels returns every level in unlock order.
func Levels() []Level {
	return []Level{Beginner, Intermediate, Advanced, Master}
}

// ParseLevel maps a level identifier such as "beginner" to its Level.
func ParseLevel(raw string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return Beginner, fmt.Errorf("%w: %q", ErrUnknownLevel, raw)
}

// Valid reports whether l is one of the four defined levels.
func (l Level) Valid() bool {
	return l >= Beginner && l <= Master
}

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// Title is the display name shown on the dashboard.
func (l Level) Title() string {
	if !l.Valid() {
		return l.String()
	}
	return levelTitles[l]
}

// Next returns the level after l. ok is false for Master.
func (l Level) Next() (next Level, ok bool) {
	if l >= Master || !l.Valid() {
		return l, false
	}
	return l + 1, true
}

// Previous returns the level before l. ok is false for Beginner.
func (l Level) Previous() (prev Level, ok bool) {
	if l <= Beginner || !l.Valid() {
		return l, false
	}
	return l - 1, true
}

func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, int(l))
	}
	return []byte(levelNames[l]), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
