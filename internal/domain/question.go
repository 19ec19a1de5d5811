package domain

// AnswerMode tells the presentation layer how many options may be picked.
type AnswerMode string

const (
	// SingleAnswer expects exactly one selected option.
	SingleAnswer AnswerMode = "single"
	// MultipleAnswer expects one or more selected options.
	MultipleAnswer AnswerMode = "multiple"
)

// Question is one entry of the read-only question bank.
type Question struct {
	ID             string     `json:"id" yaml:"id"`
	Text           string     `json:"text" yaml:"text"`
	Mode           AnswerMode `json:"type" yaml:"type"`
	Options        []string   `json:"options" yaml:"options"`
	CorrectAnswers []int      `json:"correctAnswers" yaml:"correctAnswers"`
	Explanation    string     `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// QuestionView is a question as shown before it is answered.
type QuestionView struct {
	Level   Level      `json:"level"`
	Index   int        `json:"index"`
	Total   int        `json:"total"`
	ID      string     `json:"id"`
	Text    string     `json:"text"`
	Mode    AnswerMode `json:"type"`
	Options []string   `json:"options"`
}

// View strips the answer key from q.
func (q Question) View(level Level, index int) QuestionView {
	return QuestionView{
		Level:   level,
		Index:   index,
		Total:   QuestionsPerLevel,
		ID:      q.ID,
		Text:    q.Text,
		Mode:    q.Mode,
		Options: append([]string{}, q.Options...),
	}
}

// Bank holds the ordered questions of every level.
type Bank map[Level][]Question
