package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"oneclickgrocery/internal/api"
	"oneclickgrocery/internal/config"
	"oneclickgrocery/internal/platform/gemini"
	"oneclickgrocery/internal/platform/localllm"
	"oneclickgrocery/internal/platform/logging"
	"oneclickgrocery/internal/recipe"
	"oneclickgrocery/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("config.yaml", ".env")
	if err != nil {
		panic(errors.Wrap(err, "failed to load configuration"))
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.JSON, os.Stdout)
	if err != nil {
		panic(err)
	}

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	catalog, closeCatalog, err := loadCatalog(ctx, cfg.Catalog, log)
	if err != nil {
		return err
	}
	defer closeCatalog()

	classifier, closeClassifier, err := newClassifier(ctx, cfg.Classifier)
	if err != nil {
		return err
	}
	defer closeClassifier()

	opts := []session.Option{session.WithLogger(log)}
	if classifier != nil {
		opts = append(opts, session.WithClassifier(classifier))
		log.WithField("provider", cfg.Classifier.Provider).Info("dish classifier enabled")
	}
	store := session.NewStore(catalog, cfg.Session.TTL, opts...)
	go sweepSessions(ctx, store, cfg.Session.SweepInterval)

	handler := api.NewHandler(catalog, store, cfg.Classifier.Timeout+5*time.Second)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newRouter(handler, cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Server.Port, "dishes": catalog.Len()}).Info("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
}

func newRouter(handler *api.Handler, cfg *config.Config, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Configure CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(api.SessionMiddleware(cfg.Session.CookieMaxAge, cfg.Session.SecureCookie))
	r.Use(api.LogMiddleware(log))

	handler.Register(r)
	return r
}

// loadCatalog reads the recipe catalog once. The returned func releases any
// database connection.
func loadCatalog(ctx context.Context, cfg config.Catalog, log logrus.FieldLogger) (*recipe.Catalog, func(), error) {
	noop := func() {}
	if cfg.Source != config.SourcePostgres {
		c, err := recipe.StaticSource{}.Load(ctx)
		return c, noop, err
	}

	store, err := recipe.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return nil, noop, errors.Wrap(err, "error creating postgres store")
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("failed to close catalog store")
		}
	}

	if cfg.Seed {
		if err := store.Seed(ctx, recipe.Builtin()); err != nil {
			closeStore()
			return nil, noop, errors.Wrap(err, "error seeding catalog")
		}
		log.Info("catalog seeded from built-in recipes")
	}

	c, err := store.Load(ctx)
	if err != nil {
		closeStore()
		return nil, noop, errors.Wrap(err, "error loading catalog")
	}
	log.WithField("dishes", c.Len()).Info("catalog loaded from postgres")
	return c, closeStore, nil
}

// newClassifier returns nil when no provider is configured.
func newClassifier(ctx context.Context, cfg config.Classifier) (session.Classifier, func(), error) {
	noop := func() {}
	switch cfg.Provider {
	case config.ClassifierGemini:
		c, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, noop, errors.Wrap(err, "error creating gemini client")
		}
		return timeoutClassifier{c, cfg.Timeout}, func() { closeQuietly(c) }, nil
	case config.ClassifierLocal:
		return timeoutClassifier{localllm.NewClient(cfg.LocalURL, cfg.LocalModel), cfg.Timeout}, noop, nil
	default:
		return nil, noop, nil
	}
}

// timeoutClassifier bounds each classification call.
type timeoutClassifier struct {
	session.Classifier
	timeout time.Duration
}

func (t timeoutClassifier) Classify(ctx context.Context, query string, keys []string) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return t.Classifier.Classify(ctx, query, keys)
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}

func sweepSessions(ctx context.Context, store *session.Store, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			store.Sweep(now)
		}
	}
}
