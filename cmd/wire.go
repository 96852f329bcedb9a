package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bnema/growth-dashboard/internal/adapters/insight/gateway"
	dashboardrender "github.com/bnema/growth-dashboard/internal/adapters/render/dashboard"
	badgerrepo "github.com/bnema/growth-dashboard/internal/adapters/repo/badger"
	tomlrepo "github.com/bnema/growth-dashboard/internal/adapters/repo/toml"
	chainstore "github.com/bnema/growth-dashboard/internal/adapters/secrets/chain"
	"github.com/bnema/growth-dashboard/internal/application"
	"github.com/bnema/growth-dashboard/internal/config"
	"github.com/bnema/growth-dashboard/internal/ports"
	"github.com/spf13/viper"
)

const (
	secretsDirName  = "secrets"
	badgerDirName   = "badger"
	syncFlushWindow = 30 * time.Second
)

type app struct {
	cfg         config.Config
	viper       *viper.Viper
	logger      *slog.Logger
	clock       ports.Clock
	secretStore ports.SecretStore
	credentials *application.CredentialService

	// active is set while an interactive shell owns the session.
	active *session
}

// session is one loaded dashboard plus the collaborators that live as long
// as it does.
type session struct {
	dashboard *application.Dashboard
	notices   *application.NoticeBoard
	syncer    *application.Syncer
	insights  *application.InsightService
	closers   []func() error
}

func wireApp(configPath string, logOutput io.Writer) (*app, error) {
	cfg, v, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	dataDir, err := config.DefaultDir()
	if err != nil {
		return nil, err
	}

	secretStore, err := chainstore.NewPassFirstWithFileFallback(filepath.Join(dataDir, secretsDirName))
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	return &app{
		cfg:         cfg,
		viper:       v,
		logger:      config.NewLogger(cfg.Log, logOutput),
		clock:       ports.SystemClock{},
		secretStore: secretStore,
		credentials: application.NewCredentialService(secretStore),
	}, nil
}

// openStore returns the configured record store and its close function.
func (a *app) openStore() (ports.RecordStore, func() error, error) {
	switch a.cfg.Store.Backend {
	case config.BackendBadger:
		path := a.cfg.Store.Path
		if path == "" {
			dataDir, err := config.DefaultDir()
			if err != nil {
				return nil, nil, err
			}
			path = filepath.Join(dataDir, badgerDirName)
		}

		bcfg := badgerrepo.DefaultConfig(path)
		bcfg.Logger = a.logger
		store, err := badgerrepo.Open(bcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger store: %w", err)
		}
		return store, store.Close, nil
	default:
		repo, err := tomlrepo.NewRepository(a.viper)
		if err != nil {
			return nil, nil, fmt.Errorf("wire records repository: %w", err)
		}
		return repo, func() error { return nil }, nil
	}
}

func (a *app) insightGenerator(ctx context.Context) (ports.InsightGenerator, error) {
	key, err := a.credentials.ResolveAPIKey(ctx, a.cfg.Insights.APIKey)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, nil
	}

	return gateway.NewClient(gateway.Config{
		APIKey:  key,
		BaseURL: a.cfg.Insights.BaseURL,
		Model:   a.cfg.Insights.Model,
		Timeout: a.cfg.Insights.Timeout,
		Logger:  a.logger,
	})
}

func (a *app) openSession(ctx context.Context) (*session, error) {
	store, closeStore, err := a.openStore()
	if err != nil {
		return nil, err
	}

	seed, err := application.LoadSnapshot(ctx, store)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("load records: %w", err), closeStore())
	}

	gen, err := a.insightGenerator(ctx)
	if err != nil {
		a.logger.Warn("insights unavailable", "err", err)
		gen = nil
	}

	notices := application.NewNoticeBoard(application.DefaultNoticeCapacity, a.clock)
	syncer := application.NewSyncer(store, notices, application.WithSyncLogger(a.logger))
	dash := application.NewDashboard(seed, a.cfg.History.Capacity, a.clock,
		application.WithSyncer(syncer),
		application.WithNotices(notices),
		application.WithLogger(a.logger),
	)

	return &session{
		dashboard: dash,
		notices:   notices,
		syncer:    syncer,
		insights:  application.NewInsightService(gen, notices, a.logger),
		closers:   []func() error{syncer.Close, closeStore},
	}, nil
}

// close waits for pending sync work, then releases the syncer and store.
func (s *session) close(ctx context.Context) error {
	flushCtx, cancel := context.WithTimeout(ctx, syncFlushWindow)
	defer cancel()

	errs := []error{s.syncer.Flush(flushCtx)}
	for _, closeFn := range s.closers {
		errs = append(errs, closeFn())
	}

	return errors.Join(errs...)
}

// withSession runs fn against the shell's session when one is active, or
// against a fresh session that is flushed and closed afterwards. Notices
// raised while fn ran are printed to errOut.
func (a *app) withSession(ctx context.Context, errOut io.Writer, fn func(*session) error) error {
	if a.active != nil {
		return fn(a.active)
	}

	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}

	runErr := fn(s)
	closeErr := s.close(ctx)
	printErr := printNotices(errOut, visibleNotices(s.notices.Drain()))

	return errors.Join(runErr, closeErr, printErr)
}

// visibleNotices drops per-record sync confirmations, which would repeat
// every change the command already reported.
func visibleNotices(notices []application.Notice) []application.Notice {
	visible := notices[:0]
	for _, n := range notices {
		if n.Level == application.NoticeSuccess && n.Token != "" {
			continue
		}
		visible = append(visible, n)
	}

	return visible
}

func printNotices(w io.Writer, notices []application.Notice) error {
	if len(notices) == 0 {
		return nil
	}

	rendered, err := dashboardrender.RenderNotices(notices)
	if err != nil {
		return fmt.Errorf("render notices: %w", err)
	}

	_, err = fmt.Fprintln(w, rendered)
	return err
}
