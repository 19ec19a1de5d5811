package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"progressive-quiz/internal/app"
	"progressive-quiz/internal/config"
	"progressive-quiz/internal/infra/file"
	"progressive-quiz/internal/infra/memory"
	pgstore "progressive-quiz/internal/infra/postgres"
	redisstore "progressive-quiz/internal/infra/redis"
	"progressive-quiz/internal/infra/sqlite"
	"progressive-quiz/internal/logger"
	"progressive-quiz/internal/metrics"
	"progressive-quiz/internal/questionbank"
)

// runtime is everything a command needs to drive the engine.
type runtime struct {
	cfg     config.Config
	log     *zap.Logger
	engine  *app.ProgressEngine
	session *app.Session
	store   *app.ProgressStore

	closers []func()
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	_ = rt.log.Sync()
}

// newRuntime loads config and wires the storage backend, question bank and engine.
// reg may be nil when metrics are not exported.
func newRuntime(ctx context.Context, configPath string, reg prometheus.Registerer) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, log: log, session: app.NewSession()}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { _ = redisClient.Close() })
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
	}

	backend, err := rt.openBackend(redisClient, pool)
	if err != nil {
		rt.Close()
		return nil, err
	}

	bank, err := rt.openQuestionBank(redisClient, pool)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.store = app.NewProgressStore(backend, cfg.Storage.Key)
	rt.engine = app.NewProgressEngine(rt.store, bank, log, metrics.New(reg))
	log.Debug("runtime ready",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("key", rt.store.Key()))
	return rt, nil
}

func (rt *runtime) openBackend(redisClient *redis.Client, pool *pgxpool.Pool) (app.Backend, error) {
	cfg := rt.cfg
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.NewKVStore(), nil
	case config.BackendFile:
		dir := cfg.Storage.Path
		if dir == "" {
			dir = "data"
		}
		return file.NewKVStore(dir)
	case config.BackendSQLite:
		path := cfg.Storage.Path
		if path == "" {
			var err error
			if path, err = sqlite.DefaultPath(); err != nil {
				return nil, err
			}
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() { _ = store.Close() })
		return store, nil
	case config.BackendRedis:
		return redisstore.NewKVStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 0)), nil
	case config.BackendPostgres:
		return pgstore.NewKVStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// openQuestionBank picks the question source (Postgres, a YAML file, or the built-in
// bank) and fronts it with a Redis or in-process cache.
func (rt *runtime) openQuestionBank(redisClient *redis.Client, pool *pgxpool.Pool) (app.QuestionBank, error) {
	var loader memory.QuestionLoader
	switch {
	case pool != nil:
		loader = pgstore.NewQuestionLoader(pool)
	case rt.cfg.Questions.Path != "":
		bank, err := questionbank.LoadFile(rt.cfg.Questions.Path)
		if err != nil {
			return nil, err
		}
		loader = questionbank.NewStaticLoader(bank)
	default:
		loader = questionbank.NewStaticLoader(questionbank.Default())
	}

	ttl := config.TTLDuration(rt.cfg.Questions.TTL, 10*time.Minute)
	if redisClient != nil {
		return redisstore.NewQuestionRepository(redisClient, loader, ttl), nil
	}
	return memory.NewQuestionRepository(loader, ttl), nil
}
