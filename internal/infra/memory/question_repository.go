package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"progressive-quiz/internal/domain"
)

// QuestionLoader fetches a level's questions from a backing store (file, Postgres).
type QuestionLoader interface {
	LoadLevel(ctx context.Context, level domain.Level) ([]domain.Question, error)
}

// QuestionRepository caches each level's questions with a TTL to avoid repeated loads.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[domain.Level]cachedLevel
}

type cachedLevel struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[domain.Level]cachedLevel),
	}
}

func (r *QuestionRepository) Questions(ctx context.Context, level domain.Level) ([]domain.Question, error) {
	if questions, ok := r.cached(level); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(level.String(), func() (interface{}, error) {
		if questions, ok := r.cached(level); ok {
			return questions, nil
		}

		questions, err := r.loader.LoadLevel(ctx, level)
		if err != nil {
			return nil, err
		}

		expiresAt := r.clock().Add(r.ttlWithJitter())
		r.mu.Lock()
		r.cache[level] = cachedLevel{
			questions: questions,
			expiresAt: expiresAt,
		}
		r.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return copyQuestions(result.([]domain.Question)), nil
}

func (r *QuestionRepository) cached(level domain.Level) ([]domain.Question, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[level]; ok && entry.expiresAt.After(now) {
		return copyQuestions(entry.questions), true
	}
	return nil, false
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func copyQuestions(in []domain.Question) []domain.Question {
	return append([]domain.Question(nil), in...)
}
