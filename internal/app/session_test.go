package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progressive-quiz/internal/domain"
	"progressive-quiz/internal/infra/memory"
)

func TestSubscribeReceivesDashboards(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	ctx := context.Background()

	ch, cancel := f.session.Subscribe()
	defer cancel()

	_, err := f.engine.Initialize(ctx, f.session, "Ana")
	require.NoError(t, err)
	update := receive(t, ch)
	assert.Equal(t, "Ana", update.Username)
	assert.Len(t, update.Levels, domain.LevelCount)

	f.record(t, domain.Beginner, 0, true)
	update = receive(t, ch)
	assert.Equal(t, 1, update.Levels[0].CorrectCount)

	f.engine.Reset(ctx, f.session)
	update = receive(t, ch)
	assert.Empty(t, update.Username)
	assert.Empty(t, update.Levels)
}

func TestSubscribeSendsCurrentDashboard(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	_, err := f.engine.Initialize(context.Background(), f.session, "Ana")
	require.NoError(t, err)

	ch, cancel := f.session.Subscribe()
	assert.Equal(t, "Ana", receive(t, ch).Username)

	cancel()
	_, open := <-ch
	assert.False(t, open, "cancel closes the channel")
	cancel()
}

func TestSlowSubscriberKeepsLatestDashboard(t *testing.T) {
	f := newFixture(t, memory.NewKVStore(), nil)
	_, err := f.engine.Initialize(context.Background(), f.session, "Ana")
	require.NoError(t, err)

	ch, cancel := f.session.Subscribe()
	defer cancel()

	for i := 0; i < domain.QuestionsPerLevel; i++ {
		for j := 0; j < 4; j++ {
			f.record(t, domain.Beginner, i, true)
		}
	}

	var last domain.Dashboard
drain:
	for {
		select {
		case last = <-ch:
		default:
			break drain
		}
	}
	assert.Equal(t, domain.QuestionsPerLevel, last.Levels[0].CorrectCount)
}

func receive(t *testing.T, ch <-chan domain.Dashboard) domain.Dashboard {
	t.Helper()
	select {
	case d := <-ch:
		return d
	case <-time.After(time.Second):
		t.Fatal("no dashboard update")
		return domain.Dashboard{}
	}
}
