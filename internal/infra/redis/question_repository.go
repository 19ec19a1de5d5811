package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"progressive-quiz/internal/domain"
)

// QuestionLoader fetches a level's questions from a backing store (file, Postgres).
type QuestionLoader interface {
	LoadLevel(ctx context.Context, level domain.Level) ([]domain.Question, error)
}

// QuestionRepository caches questions in Redis (hash per level) and falls back to a loader on cache miss.
// Questions are stored as: HSET quiz:questions:{level} {index} {question JSON}
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) Questions(ctx context.Context, level domain.Level) ([]domain.Question, error) {
	key := r.questionsKey(level)
	if questions, ok := r.fromCache(ctx, key); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := r.fromCache(ctx, key); ok {
			return questions, nil
		}

		questions, err := r.loader.LoadLevel(ctx, level)
		if err != nil {
			return nil, err
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.Pipeline()
		for i, q := range questions {
			raw, err := json.Marshal(q)
			if err != nil {
				return nil, err
			}
			pipe.HSet(ctx, key, strconv.Itoa(i), raw)
		}
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		// best-effort: a failed fill only costs another load
		_, _ = pipe.Exec(ctx)

		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Question(nil), result.([]domain.Question)...), nil
}

// fromCache rebuilds a level from its hash; anything short of a full level is a miss.
func (r *QuestionRepository) fromCache(ctx context.Context, key string) ([]domain.Question, bool) {
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil || len(fields) != domain.QuestionsPerLevel {
		return nil, false
	}
	questions := make([]domain.Question, domain.QuestionsPerLevel)
	for field, raw := range fields {
		i, err := strconv.Atoi(field)
		if err != nil || i < 0 || i >= domain.QuestionsPerLevel {
			return nil, false
		}
		if err := json.Unmarshal([]byte(raw), &questions[i]); err != nil {
			return nil, false
		}
	}
	return questions, true
}

func (r *QuestionRepository) questionsKey(level domain.Level) string {
	return "quiz:questions:" + level.String()
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
