package app

import (
	"math"

	"progressive-quiz/internal/domain"
)

// Evaluate projects the stored outcome sequence of level into its derived status.
// It never mutates p.
func Evaluate(p domain.UserProgress, level domain.Level) domain.LevelOutcome {
	outcomes := p.LevelProgress[level]
	correct := outcomes.CorrectCount()
	all := outcomes.AllAnswered()

	out := domain.LevelOutcome{
		Level:        level,
		Title:        level.Title(),
		Answered:     outcomes.AnsweredCount(),
		CorrectCount: correct,
		AllAnswered:  all,
		Unlocked:     IsUnlocked(p, level),
		Completed:    all && correct >= domain.UnlockThreshold,
		Current:      p.CurrentLevel == level,
	}
	if correct < domain.UnlockThreshold {
		out.NeedMore = domain.UnlockThreshold - correct
	}

	switch {
	case !out.Unlocked:
		out.Status = domain.StatusLocked
	case out.Completed:
		out.Status = domain.StatusCompleted
	case all:
		out.Status = domain.StatusNeedsRetry
	default:
		out.Status = domain.StatusInProgress
	}
	return out
}

// IsUnlocked reports whether level may be played. Beginner always is; every other
// level needs UnlockThreshold correct answers in the level before it, answered or not.
func IsUnlocked(p domain.UserProgress, level domain.Level) bool {
	prev, ok := level.Previous()
	if !ok {
		return true
	}
	return p.LevelProgress[prev].CorrectCount() >= domain.UnlockThreshold
}

// BuildDashboard evaluates every level in order.
func BuildDashboard(p domain.UserProgress) domain.Dashboard {
	levels := make([]domain.LevelOutcome, 0, domain.LevelCount)
	for _, l := range domain.Levels() {
		levels = append(levels, Evaluate(p, l))
	}
	return domain.Dashboard{
		Username:     p.Username,
		CurrentLevel: p.CurrentLevel,
		Levels:       levels,
		TotalScore:   p.TotalScore,
	}
}

// AllLevelsAnswered reports whether every index of every level is defined.
func AllLevelsAnswered(p domain.UserProgress) bool {
	for _, l := range domain.Levels() {
		if !p.LevelProgress[l].AllAnswered() {
			return false
		}
	}
	return true
}

// AverageScore is the rounded unweighted mean of each level's percentage correct.
func AverageScore(p domain.UserProgress) int {
	total := 0.0
	for _, l := range domain.Levels() {
		correct := p.LevelProgress[l].CorrectCount()
		total += float64(correct) / float64(domain.QuestionsPerLevel) * 100
	}
	return int(math.Round(total / float64(domain.LevelCount)))
}

// decideAdvance is the pure half of AdvanceOrFinish.
func decideAdvance(p domain.UserProgress) domain.Advance {
	if AllLevelsAnswered(p) {
		score := AverageScore(p)
		return domain.Advance{OverallComplete: true, AverageScore: &score}
	}
	next, ok := p.CurrentLevel.Next()
	if !ok {
		current := p.CurrentLevel
		return domain.Advance{NextLevel: &current, Remain: true}
	}
	return domain.Advance{NextLevel: &next}
}

// applyAnswer writes one outcome and recomputes completedLevels membership for level.
func applyAnswer(p domain.UserProgress, level domain.Level, index int, correct bool) domain.UserProgress {
	out := p.Clone()
	out.LevelProgress[level] = out.LevelProgress[level].With(index, domain.AnswerOf(correct))

	completed := out.LevelProgress[level].AllAnswered()
	members := out.CompletedLevels[:0]
	for _, l := range out.CompletedLevels {
		if l != level {
			members = append(members, l)
		}
	}
	if completed {
		members = append(members, level)
	}
	out.CompletedLevels = members

	if out.CurrentLevel == level {
		out.CurrentQuestion = out.LevelProgress[level].FirstUnanswered()
	}
	return out
}
