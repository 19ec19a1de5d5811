package domain

// LevelStatus is the derived state of a level; it is never stored.
type LevelStatus string

const (
	StatusLocked     LevelStatus = "locked"
	StatusInProgress LevelStatus = "in_progress"
	// StatusNeedsRetry is a fully answered level below the unlock threshold.
	StatusNeedsRetry LevelStatus = "needs_retry"
	StatusCompleted  LevelStatus = "completed"
)

// LevelOutcome is the projection of one level's outcome sequence.
type LevelOutcome struct {
	Level        Level       `json:"level"`
	Title        string      `json:"title"`
	Answered     int         `json:"answered"`
	CorrectCount int         `json:"correctCount"`
	AllAnswered  bool        `json:"allAnswered"`
	Unlocked     bool        `json:"unlocked"`
	Completed    bool        `json:"completed"`
	NeedMore     int         `json:"needMore"`
	Current      bool        `json:"current"`
	Status       LevelStatus `json:"status"`
}

// Dashboard is the read model the session controller navigates from.
type Dashboard struct {
	Username     string         `json:"username"`
	CurrentLevel Level          `json:"currentLevel"`
	Levels       []LevelOutcome `json:"levels"`
	TotalScore   int            `json:"totalScore"`
}

// Advance is the decision taken once the active level is fully answered.
type Advance struct {
	// NextLevel is the level to continue with; nil when OverallComplete.
	NextLevel *Level `json:"nextLevel"`
	// Remain is true when there is no level after the current one and the caller stays put.
	Remain          bool `json:"remain"`
	OverallComplete bool `json:"overallComplete"`
	// AverageScore is set only when OverallComplete.
	AverageScore *int `json:"averageScore"`
}

// AnswerResult is the immediate feedback for one submission.
type AnswerResult struct {
	Level          Level        `json:"level"`
	QuestionIndex  int          `json:"questionIndex"`
	Correct        bool         `json:"correct"`
	CorrectAnswers []int        `json:"correctAnswers"`
	Explanation    string       `json:"explanation,omitempty"`
	LevelDone      bool         `json:"levelDone"`
	Progress       UserProgress `json:"progress"`
}
