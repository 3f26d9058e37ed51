package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/edulearn/internal/api"
	"github.com/abhisek/edulearn/internal/auth"
	"github.com/abhisek/edulearn/internal/catalog"
	"github.com/abhisek/edulearn/internal/config"
	"github.com/abhisek/edulearn/internal/kv"
	"github.com/abhisek/edulearn/internal/lesson"
	"github.com/abhisek/edulearn/internal/logger"
	"github.com/abhisek/edulearn/internal/progress"
	"github.com/abhisek/edulearn/internal/quiz"
	"github.com/abhisek/edulearn/internal/screen"
	"github.com/abhisek/edulearn/internal/store"
)

// deps is everything a command needs, built from configuration.
type deps struct {
	cfg      *config.Config
	log      *zap.Logger
	backend  progress.Backend
	progress *progress.Store
	tokens   *auth.TokenStore
	client   *api.Client // nil when offline
	auth     *auth.Service
	attempts store.AttemptRepo // nil unless the sqlite backend is used

	lessonsKey string
	quizzesKey string

	closers []func()
}

// openDeps loads configuration and wires storage, the API client and the
// auth service. tui routes logs to a file instead of stderr.
func openDeps(cmd *cobra.Command, tui bool) (*deps, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{ConfigFile: configFile, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}

	d := &deps{cfg: cfg}

	logCfg := logger.Config{Level: cfg.Log.Level, Env: cfg.Log.Env, File: cfg.Log.File}
	if tui {
		if logCfg.File == "" {
			logCfg.File = defaultLogFile()
		}
	} else {
		logCfg.Fallback = zapcore.Lock(os.Stderr)
	}
	log, cleanup, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	d.log = log
	d.closers = append(d.closers, cleanup)

	if err := d.openBackend(cmd.Context()); err != nil {
		d.Close()
		return nil, err
	}
	d.progress = progress.NewStore(d.backend, log.Named("progress"))
	d.tokens = auth.NewTokenStore(d.backend, log.Named("auth"))

	if offline, _ := cmd.Flags().GetBool("offline"); !offline {
		client, err := api.New(cfg.APIConfig(),
			api.WithTokenSource(d.tokens),
			api.WithLogger(log.Named("api")))
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("create API client: %w", err)
		}
		d.client = client
		d.auth = auth.NewService(client, d.tokens, log.Named("auth"))
	}

	d.lessonsKey = progress.LessonsKey
	d.quizzesKey = progress.QuizzesKey
	if u, ok := d.tokens.User(cmd.Context()); ok && d.tokens.Token(cmd.Context()) != "" {
		d.lessonsKey = progress.ScopedKey(d.lessonsKey, u.ID)
		d.quizzesKey = progress.ScopedKey(d.quizzesKey, u.ID)
	}

	log.Debug("dependencies ready",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("api", cfg.API.BaseURL),
		zap.Bool("offline", d.client == nil),
		zap.String("scoring", cfg.Scoring))
	return d, nil
}

func (d *deps) openBackend(ctx context.Context) error {
	switch d.cfg.Storage.Backend {
	case config.BackendRedis:
		r := kv.NewRedis(d.cfg.RedisOptions())
		d.closers = append(d.closers, func() { _ = r.Close() })
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := r.Ping(pingCtx); err != nil {
			// The progress store falls back to memory on first failure.
			d.log.Warn("redis unreachable", zap.String("addr", d.cfg.Storage.Redis.Addr), zap.Error(err))
		}
		d.backend = r

	case config.BackendMemory:
		d.backend = kv.NewMemory()

	default:
		path, err := resolveDBPath(d.cfg)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		d.closers = append(d.closers, func() { _ = st.Close() })
		d.backend = st.KVRepo()
		d.attempts = st.AttemptRepo()
	}
	return nil
}

// resolveDBPath returns the configured database path, or the default XDG
// path when none is set.
func resolveDBPath(cfg *config.Config) (string, error) {
	if p := cfg.Storage.DBPath; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// defaultLogFile is $XDG_STATE_HOME/edulearn/edulearn.log. An empty
// result discards TUI logs.
func defaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "edulearn", "edulearn.log")
}

// Close releases storage connections and flushes the logger, in reverse
// order of creation.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

// requireServer fails commands that need the API when running offline.
func (d *deps) requireServer() error {
	if d.client == nil {
		return fmt.Errorf("this command needs the server; drop --offline")
	}
	return nil
}

// scorer grades catalog quizzes locally. Quizzes from the server are sent
// to it unless scoring is set to local or the client is offline.
func (d *deps) scorer() quiz.RoutedScorer {
	scorer := quiz.RoutedScorer{Local: quiz.LocalScorer{}}
	if d.client != nil && d.cfg.RemoteScoring() {
		scorer.Remote = quiz.RemoteScorer{Submitter: d.client}
	}
	return scorer
}

// newMachine builds the quiz machine. Submitted attempts are appended to
// the attempt log when one is available.
func (d *deps) newMachine() *quiz.Machine {
	cfg := quiz.Config{
		Store:    d.progress,
		StoreKey: d.quizzesKey,
		Scorer:   d.scorer(),
		Logger:   d.log.Named("quiz"),
	}
	if d.attempts != nil {
		cfg.OnSubmitted = d.recordAttempt
	}
	return quiz.NewMachine(cfg)
}

func (d *deps) recordAttempt(q quiz.Quiz, res quiz.Result) {
	ctx := context.Background()
	data := store.AttemptData{
		AttemptID:   uuid.New().String(),
		QuizKey:     q.Key,
		QuizTitle:   q.Title,
		Score:       res.Score,
		Percentage:  res.Percentage,
		Passed:      res.Passed,
		Mode:        string(res.Mode),
		SubmittedAt: time.Now(),
	}
	if u, ok := d.tokens.User(ctx); ok {
		data.UserID = u.ID
	}
	if err := d.attempts.Append(ctx, data); err != nil {
		d.log.Warn("record attempt", zap.String("quiz", q.Key), zap.Error(err))
	}
}

// services bundles the collaborators the TUI screens share.
func (d *deps) services() *screen.Services {
	svc := &screen.Services{
		Progress:   d.progress,
		QuizzesKey: d.quizzesKey,
		Lessons:    lesson.NewTracker(d.progress, d.lessonsKey, catalog.Courses()),
		Quiz:       d.newMachine(),
		Attempts:   d.attempts,
		Tokens:     d.tokens,
		Logger:     d.log.Named("ui"),
	}
	if d.client != nil {
		svc.Auth = d.auth
		svc.Remote = d.client
	}
	return svc
}
