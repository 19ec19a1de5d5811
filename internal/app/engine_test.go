package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"progressive-quiz/internal/app"
	"progressive-quiz/internal/config"
	"progressive-quiz/internal/domain"
	"progressive-quiz/internal/infra/memory"
	"progressive-quiz/internal/metrics"
	"progressive-quiz/internal/questionbank"
)

type fixture struct {
	engine  *app.ProgressEngine
	session *app.Session
	backend app.Backend
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, backend app.Backend, log *zap.Logger) fixture {
	t.Helper()
	if log == nil {
		log = zaptest.NewLogger(t)
	}
	m := metrics.New(prometheus.NewRegistry())
	store := app.NewProgressStore(backend, config.DefaultStorageKey)
	bank := questionbank.NewStaticLoader(questionbank.Default())
	return fixture{
		engine:  app.NewProgressEngine(store, bank, log, m),
		session: app.NewSession(),
		backend: backend,
		metrics: m,
	}
}

// record answers index of level correctly or not without consulting the bank.
func (f fixture) record(t *testing.T, level domain.Level, index int, correct bool) domain.UserProgress {
	t.Helper()
	want := []int{0}
	if !correct {
		want = []int{1}
	}
	got, progress, err := f.engine.RecordAnswer(context.Background(), f.session, level, index, []int{0}, want)
	require.NoError(t, err)
	require.Equal(t, correct, got)
	return progress
}

func (f fixture) playLevel(t *testing.T, level domain.Level, outcomes ...bool) domain.UserProgress {
	t.Helper()
	var progress domain.UserProgress
	for i, correct := range outcomes {
		progress = f.record(t, level, i, correct)
	}
	return progress
}

type failingBackend struct{}

var errBackendDown = errors.New("backend down")

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errBackendDown
}
func (failingBackend) Set(context.Context, string, []byte) error { return errBackendDown }
func (failingBackend) Remove(context.Context, string) error      { return errBackendDown }

func TestInitializeCreatesZeroState(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	ctx := context.Background()

	progress, err := f.engine.Initialize(ctx, f.session, "  Ana  ")
	require.NoError(t, err)

	assert.Equal(t, "Ana", progress.Username)
	assert.Equal(t, domain.Beginner, progress.CurrentLevel)
	assert.Equal(t, 0, progress.CurrentQuestion)
	assert.Len(t, progress.LevelProgress, domain.LevelCount)
	for _, l := range domain.Levels() {
		assert.Empty(t, progress.LevelProgress[l], "level %s", l)
	}
	assert.Empty(t, progress.CompletedLevels)
	assert.True(t, f.session.Active())

	raw, ok, err := f.backend.Get(ctx, config.DefaultStorageKey)
	require.NoError(t, err)
	require.True(t, ok, "initialize persists the record")
	assert.Contains(t, string(raw), `"beginner":[]`)
}

func TestInitializeRejectsInvalidUsernames(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	ctx := context.Background()

	for _, name := range []string{"", " A ", "   ", strings.Repeat("x", 21)} {
		_, err := f.engine.Initialize(ctx, f.session, name)
		assert.ErrorIs(t, err, domain.ErrInvalidUsername, "name %q", name)
	}
	assert.False(t, f.session.Active())

	_, err := f.engine.Initialize(ctx, f.session, strings.Repeat("é", 20))
	assert.NoError(t, err, "length counts characters, not bytes")
}

func TestInitializeRefusesToReplaceActiveProgress(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	ctx := context.Background()
	_, err := f.engine.Initialize(ctx, f.session, "Ana")
	require.NoError(t, err)
	want := f.playLevel(t, domain.Beginner, true, true, true)

	_, err = f.engine.Initialize(ctx, f.session, "Bob")
	require.ErrorIs(t, err, domain.ErrProgressExists)

	got, err := f.engine.Progress(f.session)
	require.NoError(t, err)
	assert.Equal(t, want, got, "existing progress is untouched")

	f.engine.Reset(ctx, f.session)
	progress, err := f.engine.Initialize(ctx, f.session, "Bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob", progress.Username)
	assert.Empty(t, progress.LevelProgress[domain.Beginner])
}

func TestRecordAnswerIsIdempotent(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	_, err := f.engine.Initialize(context.Background(), f.session, "Ana")
	require.NoError(t, err)

	f.record(t, domain.Beginner, 0, true)
	progress := f.record(t, domain.Beginner, 0, true)

	assert.Equal(t, domain.Outcomes{domain.Correct}, progress.LevelProgress[domain.Beginner])
}

func TestRecordAnswerOverwritesAndLeavesGaps(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	_, err := f.engine.Initialize(context.Background(), f.session, "Ana")
	require.NoError(t, err)

	progress := f.record(t, domain.Beginner, 2, false)
	assert.Equal(t, domain.Outcomes{domain.Unanswered, domain.Unanswered, domain.Incorrect},
		progress.LevelProgress[domain.Beginner])
	assert.Equal(t, 0, progress.CurrentQuestion)

	progress = f.record(t, domain.Beginner, 2, true)
	assert.Equal(t, domain.Correct, progress.LevelProgress[domain.Beginner].At(2))
	assert.Equal(t, 1, progress.LevelProgress[domain.Beginner].AnsweredCount())
}

func TestRecordAnswerGuards(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	ctx := context.Background()

	_, _, err := f.engine.RecordAnswer(ctx, f.session, domain.Beginner, 0, []int{0}, []int{0})
	assert.ErrorIs(t, err, domain.ErrNoProgress)

	_, err = f.engine.Initialize(ctx, f.session, "Ana")
	require.NoError(t, err)

	_, _, err = f.engine.RecordAnswer(ctx, f.session, domain.Beginner, 5, []int{0}, []int{0})
	assert.ErrorIs(t, err, domain.ErrQuestionOutOfRange)
	_, _, err = f.engine.RecordAnswer(ctx, f.session, domain.Beginner, -1, []int{0}, []int{0})
	assert.ErrorIs(t, err, domain.ErrQuestionOutOfRange)
	_, _, err = f.engine.RecordAnswer(ctx, f.session, domain.Level(7), 0, []int{0}, []int{0})
	assert.ErrorIs(t, err, domain.ErrUnknownLevel)
	_, _, err = f.engine.RecordAnswer(ctx, f.session, domain.Intermediate, 0, []int{0}, []int{0})
	assert.ErrorIs(t, err, domain.ErrLevelLocked)
}

func TestEndToEndBeginnerUnlocksIntermediate(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	ctx := context.Background()

	_, err := f.engine.Initialize(ctx, f.session, "Ana")
	require.NoError(t, err)

	progress := f.playLevel(t, domain.Beginner, true, true, true, false, false)

	assert.Equal(t, domain.Outcomes{domain.Correct, domain.Correct, domain.Correct, domain.Incorrect, domain.Incorrect},
		progress.LevelProgress[domain.Beginner])
	assert.Equal(t, []domain.Level{domain.Beginner}, progress.CompletedLevels)

	beginner, err := f.engine.EvaluateLevelOutcome(f.session, domain.Beginner)
	require.NoError(t, err)
	assert.True(t, beginner.AllAnswered)
	assert.True(t, beginner.Completed)
	assert.Equal(t, 3, beginner.CorrectCount)
	assert.Equal(t, domain.StatusCompleted, beginner.Status)

	intermediate, err := f.engine.EvaluateLevelOutcome(f.session, domain.Intermediate)
	require.NoError(t, err)
	assert.True(t, intermediate.Unlocked)
	assert.Equal(t, domain.StatusInProgress, intermediate.Status)

	raw, ok, err := f.backend.Get(ctx, config.DefaultStorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(raw), `"beginner":[true,true,true,false,false]`)
	assert.Contains(t, string(raw), `"completedLevels":["beginner"]`)
}

func TestTwoCorrectDoesNotUnlock(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	_, err := f.engine.Initialize(context.Background(), f.session, "Ana")
	require.NoError(t, err)

	progress := f.playLevel(t, domain.Beginner, true, true, false, false, false)
	assert.Contains(t, progress.CompletedLevels, domain.Beginner, "all five answered")

	beginner, err := f.engine.EvaluateLevelOutcome(f.session, domain.Beginner)
	require.NoError(t, err)
	assert.True(t, beginner.AllAnswered)
	assert.False(t, beginner.Completed)
	assert.Equal(t, 1, beginner.NeedMore)
	assert.Equal(t, domain.StatusNeedsRetry, beginner.Status)

	intermediate, err := f.engine.EvaluateLevelOutcome(f.session, domain.Intermediate)
	require.NoError(t, err)
	assert.False(t, intermediate.Unlocked)
	assert.Equal(t, domain.StatusLocked, intermediate.Status)
}

func TestUnlockIsRecomputedLive(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	_, err := f.engine.Initialize(context.Background(), f.session, "Ana")
	require.NoError(t, err)

	f.playLevel(t, domain.Beginner, true, true, true, false, false)
	progress := f.record(t, domain.Beginner, 0, false)

	assert.False(t, app.IsUnlocked(progress, domain.Intermediate))
	beginner := app.Evaluate(progress, domain.Beginner)
	assert.Equal(t, domain.StatusNeedsRetry, beginner.Status, "re-answering never locks the level itself")
}

func TestAdvanceMovesToNextLevel(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	ctx := context.Background()
	_, err := f.engine.Initialize(ctx, f.session, "Ana")
	require.NoError(t, err)
	f.playLevel(t, domain.Beginner, true, true, true, true, false)

	decision, err := f.engine.AdvanceOrFinish(ctx, f.session)
	require.NoError(t, err)
	require.NotNil(t, decision.NextLevel)
	assert.Equal(t, domain.Intermediate, *decision.NextLevel)
	assert.Nil(t, decision.AverageScore)
	assert.False(t, decision.Remain)
	assert.False(t, decision.OverallComplete)

	raw, err := json.Marshal(decision)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nextLevel":"intermediate","remain":false,"overallComplete":false,"averageScore":null}`, string(raw))

	progress, err := f.engine.Progress(f.session)
	require.NoError(t, err)
	assert.Equal(t, domain.Intermediate, progress.CurrentLevel)
	assert.Equal(t, 0, progress.CurrentQuestion)
}

func TestAdvanceRemainsOnLastLevel(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	ctx := context.Background()
	_, err := f.engine.Initialize(ctx, f.session, "Ana")
	require.NoError(t, err)
	for _, l := range []domain.Level{domain.Beginner, domain.Intermediate, domain.Advanced} {
		f.playLevel(t, l, true, true, true, true, true)
	}
	_, err = f.engine.SelectLevel(ctx, f.session, domain.Master)
	require.NoError(t, err)
	f.record(t, domain.Master, 0, true)

	decision, err := f.engine.AdvanceOrFinish(ctx, f.session)
	require.NoError(t, err)
	assert.True(t, decision.Remain)
	assert.False(t, decision.OverallComplete)
	require.NotNil(t, decision.NextLevel)
	assert.Equal(t, domain.Master, *decision.NextLevel)
	assert.Nil(t, decision.AverageScore)

	progress, err := f.engine.Progress(f.session)
	require.NoError(t, err)
	assert.Equal(t, domain.Master, progress.CurrentLevel)
	assert.Equal(t, 1, progress.CurrentQuestion)
}

func TestAverageScoreOverAllLevels(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	ctx := context.Background()
	_, err := f.engine.Initialize(ctx, f.session, "Ana")
	require.NoError(t, err)
	for _, l := range domain.Levels() {
		f.playLevel(t, l, true, true, true, false, false)
	}

	decision, err := f.engine.AdvanceOrFinish(ctx, f.session)
	require.NoError(t, err)
	assert.True(t, decision.OverallComplete)
	assert.Nil(t, decision.NextLevel, "a finished quiz has no next level")
	require.NotNil(t, decision.AverageScore)
	assert.Equal(t, 60, *decision.AverageScore)

	raw, err := json.Marshal(decision)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nextLevel":null,"remain":false,"overallComplete":true,"averageScore":60}`, string(raw))

	dashboard, err := f.engine.Dashboard(f.session)
	require.NoError(t, err)
	assert.Equal(t, 60, dashboard.TotalScore)
	for _, lvl := range dashboard.Levels {
		assert.Equal(t, domain.StatusCompleted, lvl.Status, "level %s", lvl.Level)
	}
}

func TestAverageScoreRounds(t *testing.T) {
	p := domain.NewUserProgress("Ana")
	p.LevelProgress[domain.Beginner] = domain.Outcomes{domain.Correct, domain.Correct, domain.Correct, domain.Correct, domain.Correct}
	p.LevelProgress[domain.Intermediate] = domain.Outcomes{domain.Correct, domain.Correct, domain.Correct, domain.Correct, domain.Incorrect}
	p.LevelProgress[domain.Advanced] = domain.Outcomes{domain.Correct, domain.Correct, domain.Correct, domain.Incorrect, domain.Incorrect}
	p.LevelProgress[domain.Master] = domain.Outcomes{domain.Correct, domain.Incorrect, domain.Incorrect, domain.Incorrect, domain.Incorrect}

	// (100 + 80 + 60 + 20) / 4 = 65
	assert.Equal(t, 65, app.AverageScore(p))
	assert.True(t, app.AllLevelsAnswered(p))
}

func TestSelectLevel(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	ctx := context.Background()
	_, err := f.engine.Initialize(ctx, f.session, "Ana")
	require.NoError(t, err)

	_, err = f.engine.SelectLevel(ctx, f.session, domain.Advanced)
	assert.ErrorIs(t, err, domain.ErrLevelLocked)

	f.playLevel(t, domain.Beginner, true, true, true)
	progress, err := f.engine.SelectLevel(ctx, f.session, domain.Intermediate)
	require.NoError(t, err)
	assert.Equal(t, domain.Intermediate, progress.CurrentLevel)

	progress, err = f.engine.SelectLevel(ctx, f.session, domain.Beginner)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.CurrentQuestion, "resumes at the first unanswered question")
}

func TestSubmitAnswerUsesQuestionBank(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	ctx := context.Background()
	_, err := f.engine.Initialize(ctx, f.session, "Ana")
	require.NoError(t, err)

	result, err := f.engine.SubmitAnswer(ctx, f.session, domain.Beginner, 1, []int{4, 0, 2})
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, []int{0, 2, 4}, result.CorrectAnswers)
	assert.False(t, result.LevelDone)
	assert.Equal(t, domain.Correct, result.Progress.LevelProgress[domain.Beginner].At(1))

	result, err = f.engine.SubmitAnswer(ctx, f.session, domain.Beginner, 0, []int{0})
	require.NoError(t, err)
	assert.False(t, result.Correct)
}

func TestResetClearsRecordAndSession(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	ctx := context.Background()
	_, err := f.engine.Initialize(ctx, f.session, "Ana")
	require.NoError(t, err)
	f.playLevel(t, domain.Beginner, true, false)

	f.engine.Reset(ctx, f.session)

	_, ok, err := f.backend.Get(ctx, config.DefaultStorageKey)
	require.NoError(t, err)
	assert.False(t, ok, "persisted record removed")

	_, err = f.engine.Progress(f.session)
	assert.ErrorIs(t, err, domain.ErrNoProgress)
	_, err = f.engine.Dashboard(f.session)
	assert.ErrorIs(t, err, domain.ErrNoProgress)
	_, err = f.engine.EvaluateLevelOutcome(f.session, domain.Beginner)
	assert.ErrorIs(t, err, domain.ErrNoProgress)
	_, err = f.engine.AdvanceOrFinish(ctx, f.session)
	assert.ErrorIs(t, err, domain.ErrNoProgress)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Resets))
}

func TestRestoreResumesSavedProgress(t *testing.T) {
	backend := memory.NewKVStore()
	first := newFixture(t, backend, nil)
	ctx := context.Background()
	_, err := first.engine.Initialize(ctx, first.session, "Ana")
	require.NoError(t, err)
	want := first.playLevel(t, domain.Beginner, true, false, true)

	second := newFixture(t, backend, nil)
	require.True(t, second.engine.Restore(ctx, second.session))

	got, err := second.engine.Progress(second.session)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	empty := newFixture(t, memory.NewKVStore(), nil)
	assert.False(t, empty.engine.Restore(ctx, empty.session))
}

func TestStorageFailureDegradesToMemory(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	f := newFixture(t, failingBackend{}, zap.New(core))
	ctx := context.Background()

	assert.False(t, f.engine.Restore(ctx, f.session))

	_, err := f.engine.Initialize(ctx, f.session, "Ana")
	require.NoError(t, err, "storage failures are not fatal")
	progress := f.playLevel(t, domain.Beginner, true, true, true)
	assert.Equal(t, 3, progress.LevelProgress[domain.Beginner].CorrectCount())

	f.engine.Reset(ctx, f.session)
	_, err = f.engine.Progress(f.session)
	assert.ErrorIs(t, err, domain.ErrNoProgress)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StorageFailures.WithLabelValues("load")))
	assert.Equal(t, 4.0, testutil.ToFloat64(f.metrics.StorageFailures.WithLabelValues("save")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StorageFailures.WithLabelValues("clear")))
	assert.Equal(t, 6, logs.FilterMessage("progress storage unavailable, continuing in memory").Len())
}
