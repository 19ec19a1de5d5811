package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"progressive-quiz/internal/domain"
	"progressive-quiz/internal/infra/memory"
	"progressive-quiz/internal/questionbank"
)

func TestQuestionRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{QuestionLoader: questionbank.NewStaticLoader(questionbank.Default())}
	repo := NewQuestionRepository(client, loader, time.Minute)

	first, err := repo.Questions(context.Background(), domain.Intermediate)
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:questions:intermediate") {
		t.Fatalf("expected questions hash in redis")
	}

	// Second call should hit cache, loader not incremented.
	second, err := repo.Questions(context.Background(), domain.Intermediate)
	if err != nil {
		t.Fatalf("get cached questions: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("cached order differs at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
	if len(second[1].CorrectAnswers) != 4 {
		t.Fatalf("expected i2 correct answers to survive cache, got %v", second[1].CorrectAnswers)
	}
}

func TestQuestionRepositoryReloadsPartialHash(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	mr.HSet("quiz:questions:master", "0", `{"id":"m1"}`)

	loader := &countingLoader{QuestionLoader: questionbank.NewStaticLoader(questionbank.Default())}
	repo := NewQuestionRepository(newClient(mr), loader, time.Minute)

	questions, err := repo.Questions(context.Background(), domain.Master)
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if loader.calls != 1 || len(questions) != domain.QuestionsPerLevel {
		t.Fatalf("expected reload of partial cache, calls=%d len=%d", loader.calls, len(questions))
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls int
}

func (l *countingLoader) LoadLevel(ctx context.Context, level domain.Level) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadLevel(ctx, level)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
