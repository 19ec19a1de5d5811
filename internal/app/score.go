package app

import (
	"fmt"
	"math"

	"progressive-quiz/internal/domain"
)

// Rating is the headline shown on the results screen.
type Rating struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// RateScore maps a final percentage onto the results bands.
func RateScore(score int, username string) Rating {
	switch {
	case score < 50:
		return Rating{"Poor Performance", fmt.Sprintf("Keep practicing, %s!", username)}
	case score < 70:
		return Rating{"Not Bad", fmt.Sprintf("You're making progress, %s!", username)}
	case score < 80:
		return Rating{"Good", fmt.Sprintf("Well done, %s!", username)}
	case score < 90:
		return Rating{"Great", fmt.Sprintf("Excellent work, %s!", username)}
	default:
		return Rating{"Stanford University Level", fmt.Sprintf("Outstanding achievement, %s!", username)}
	}
}

// CorrectOutOf converts a final percentage back into correct answers out of the whole quiz.
func CorrectOutOf(score int) int {
	total := domain.LevelCount * domain.QuestionsPerLevel
	return int(math.Round(float64(score) * float64(total) / 100))
}
