package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"progressive-quiz/internal/domain"
	"progressive-quiz/internal/metrics"
)

const (
	minUsernameLen = 2
	maxUsernameLen = 20
)

// QuestionBank serves the read-only questions of each level.
type QuestionBank interface {
	Questions(ctx context.Context, level domain.Level) ([]domain.Question, error)
}

// ProgressEngine contains the quiz progress use cases. It owns no state of its own;
// the user's progress lives in the Session passed to each call.
type ProgressEngine struct {
	store   *ProgressStore
	bank    QuestionBank
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewProgressEngine(store *ProgressStore, bank QuestionBank, log *zap.Logger, m *metrics.Metrics) *ProgressEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgressEngine{store: store, bank: bank, log: log, metrics: m}
}

// NormalizeUsername trims and validates a username.
func NormalizeUsername(raw string) (string, error) {
	name := norm.NFC.String(strings.TrimSpace(raw))
	n := utf8.RuneCountInString(name)
	if n < minUsernameLen || n > maxUsernameLen {
		return "", domain.ErrInvalidUsername
	}
	return name, nil
}

// Restore loads the persisted record into sess. A storage failure is logged and
// leaves sess empty; found reports whether a record was restored.
func (e *ProgressEngine) Restore(ctx context.Context, sess *Session) (found bool) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	progress, err := e.store.Load(ctx)
	if err != nil {
		e.storageFailed("load", err)
		return false
	}
	if progress == nil {
		return false
	}
	sess.replaceLocked(progress)
	e.log.Info("progress restored", zap.String("username", progress.Username),
		zap.Stringer("current_level", progress.CurrentLevel))
	return true
}

// Initialize starts a fresh run for username. An active run must be reset first.
func (e *ProgressEngine) Initialize(ctx context.Context, sess *Session, username string) (domain.UserProgress, error) {
	name, err := NormalizeUsername(username)
	if err != nil {
		return domain.UserProgress{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.progress != nil {
		return domain.UserProgress{}, fmt.Errorf("%w for %q", domain.ErrProgressExists, sess.progress.Username)
	}
	progress := domain.NewUserProgress(name)
	e.commitLocked(ctx, sess, progress)
	e.log.Info("progress initialized", zap.String("username", name))
	return progress.Clone(), nil
}

// Progress returns a copy of the active progress.
func (e *ProgressEngine) Progress(sess *Session) (domain.UserProgress, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	p, err := sess.currentLocked()
	if err != nil {
		return domain.UserProgress{}, err
	}
	return p.Clone(), nil
}

// SelectLevel makes level the active one and points currentQuestion at its resume position.
func (e *ProgressEngine) SelectLevel(ctx context.Context, sess *Session, level domain.Level) (domain.UserProgress, error) {
	if !level.Valid() {
		return domain.UserProgress{}, domain.ErrUnknownLevel
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	current, err := sess.currentLocked()
	if err != nil {
		return domain.UserProgress{}, err
	}
	if !IsUnlocked(current, level) {
		return domain.UserProgress{}, fmt.Errorf("%w: %s", domain.ErrLevelLocked, level)
	}

	next := current.Clone()
	next.CurrentLevel = level
	next.CurrentQuestion = next.LevelProgress[level].FirstUnanswered()
	e.commitLocked(ctx, sess, next)
	return next.Clone(), nil
}

// RecordAnswer validates selected against correct, writes the outcome at
// questionIndex (overwriting any earlier one) and persists the result.
func (e *ProgressEngine) RecordAnswer(ctx context.Context, sess *Session, level domain.Level, questionIndex int, selected, correct []int) (bool, domain.UserProgress, error) {
	if !level.Valid() {
		return false, domain.UserProgress{}, domain.ErrUnknownLevel
	}
	if questionIndex < 0 || questionIndex >= domain.QuestionsPerLevel {
		return false, domain.UserProgress{}, fmt.Errorf("%w: %d", domain.ErrQuestionOutOfRange, questionIndex)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	current, err := sess.currentLocked()
	if err != nil {
		return false, domain.UserProgress{}, err
	}
	if !IsUnlocked(current, level) {
		return false, domain.UserProgress{}, fmt.Errorf("%w: %s", domain.ErrLevelLocked, level)
	}

	isCorrect := ValidateAnswer(selected, correct)
	wasAnswered := current.LevelProgress[level].AllAnswered()
	next := applyAnswer(current, level, questionIndex, isCorrect)
	e.commitLocked(ctx, sess, next)

	e.metrics.ObserveAnswer(level.String(), isCorrect)
	if !wasAnswered && next.LevelProgress[level].AllAnswered() {
		e.metrics.ObserveLevelAnswered(level.String())
	}
	e.log.Debug("answer recorded",
		zap.Stringer("level", level),
		zap.Int("question", questionIndex),
		zap.Bool("correct", isCorrect))
	return isCorrect, next.Clone(), nil
}

// SubmitAnswer looks the question up in the bank and records the selection.
func (e *ProgressEngine) SubmitAnswer(ctx context.Context, sess *Session, level domain.Level, questionIndex int, selected []int) (domain.AnswerResult, error) {
	question, err := e.Question(ctx, level, questionIndex)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	correct, progress, err := e.RecordAnswer(ctx, sess, level, questionIndex, selected, question.CorrectAnswers)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	return domain.AnswerResult{
		Level:          level,
		QuestionIndex:  questionIndex,
		Correct:        correct,
		CorrectAnswers: append([]int{}, question.CorrectAnswers...),
		Explanation:    question.Explanation,
		LevelDone:      progress.LevelProgress[level].AllAnswered(),
		Progress:       progress,
	}, nil
}

// Question returns one question of level from the bank.
func (e *ProgressEngine) Question(ctx context.Context, level domain.Level, questionIndex int) (domain.Question, error) {
	if !level.Valid() {
		return domain.Question{}, domain.ErrUnknownLevel
	}
	questions, err := e.bank.Questions(ctx, level)
	if err != nil {
		return domain.Question{}, fmt.Errorf("load %s questions: %w", level, err)
	}
	if questionIndex < 0 || questionIndex >= len(questions) {
		return domain.Question{}, fmt.Errorf("%w: %d", domain.ErrQuestionOutOfRange, questionIndex)
	}
	return questions[questionIndex], nil
}

// EvaluateLevelOutcome projects level from the active progress without mutating it.
func (e *ProgressEngine) EvaluateLevelOutcome(sess *Session, level domain.Level) (domain.LevelOutcome, error) {
	if !level.Valid() {
		return domain.LevelOutcome{}, domain.ErrUnknownLevel
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	current, err := sess.currentLocked()
	if err != nil {
		return domain.LevelOutcome{}, err
	}
	return Evaluate(current, level), nil
}

// Dashboard evaluates every level of the active progress.
func (e *ProgressEngine) Dashboard(sess *Session) (domain.Dashboard, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	current, err := sess.currentLocked()
	if err != nil {
		return domain.Dashboard{}, err
	}
	return BuildDashboard(current), nil
}

// AdvanceOrFinish decides what follows a fully answered level. When all four levels
// are answered it stores the average score; otherwise it moves to the next level, or
// reports Remain when the current level is the last one.
func (e *ProgressEngine) AdvanceOrFinish(ctx context.Context, sess *Session) (domain.Advance, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	current, err := sess.currentLocked()
	if err != nil {
		return domain.Advance{}, err
	}

	decision := decideAdvance(current)
	next := current.Clone()
	switch {
	case decision.OverallComplete:
		next.TotalScore = *decision.AverageScore
		e.log.Info("quiz finished", zap.String("username", next.Username), zap.Int("score", next.TotalScore))
	case decision.Remain:
		return decision, nil
	default:
		next.CurrentLevel = *decision.NextLevel
		next.CurrentQuestion = next.LevelProgress[next.CurrentLevel].FirstUnanswered()
	}
	e.commitLocked(ctx, sess, next)
	return decision, nil
}

// Reset clears the persisted record and the session.
func (e *ProgressEngine) Reset(ctx context.Context, sess *Session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := e.store.Clear(ctx); err != nil {
		e.storageFailed("clear", err)
	}
	sess.replaceLocked(nil)
	e.metrics.ObserveReset()
	e.log.Info("progress reset")
}

// commitLocked installs next as the session's progress and persists it. Storage
// failures keep the in-memory copy; the next successful save reconciles.
func (e *ProgressEngine) commitLocked(ctx context.Context, sess *Session, next domain.UserProgress) {
	stored := next.Clone()
	sess.replaceLocked(&stored)
	if err := e.store.Save(ctx, next); err != nil {
		e.storageFailed("save", err)
	}
}

func (e *ProgressEngine) storageFailed(op string, err error) {
	e.metrics.ObserveStorageFailure(op)
	var serr *domain.StorageError
	if errors.As(err, &serr) {
		e.log.Warn("progress storage unavailable, continuing in memory",
			zap.String("op", serr.Op), zap.String("key", serr.Key), zap.Error(serr.Err))
		return
	}
	e.log.Warn("progress storage unavailable, continuing in memory", zap.String("op", op), zap.Error(err))
}
