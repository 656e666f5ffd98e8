package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/recruitme/internal/client/config"
	"github.com/dmitrijs2005/recruitme/internal/client/models"
	"github.com/dmitrijs2005/recruitme/internal/logging"
)

// CredentialStore is the part of credstore.Store the client depends on.
type CredentialStore interface {
	Initialize(ctx context.Context) error
	Register(ctx context.Context, email, password string) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	Close() error
}

type App struct {
	config *config.Config
	store  CredentialStore
	logger logging.Logger
	reader *bufio.Reader

	user          models.User
	authenticated bool
}

func NewApp(c *config.Config, store CredentialStore, logger logging.Logger) *App {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &App{config: c, store: store, logger: logger, reader: bufio.NewReader(os.Stdin)}
}

func (a *App) initSignalHandler(cancelFunc context.CancelFunc) (stop func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// Run prepares the store and serves commands until the user exits, stdin is
// closed, ctx is cancelled or the process is signalled. A store that cannot
// be initialized is reported but does not stop the loop: every command
// retries initialization lazily.
func (a *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	stop := a.initSignalHandler(cancelFunc)
	defer stop()

	defer func() {
		if err := a.store.Close(); err != nil {
			a.logger.Warn(ctx, "closing credential store", "error", err)
		}
	}()

	if err := a.store.Initialize(ctx); err != nil {
		a.logger.Error(ctx, "credential store initialization failed", "db", a.config.DatabasePath, "error", err)
		printlnFn(userMessage(err))
	}

	printlnFn("Welcome to RecruitMe (type 'help' for commands)")

	done := make(chan struct{})
	go func() {
		defer close(done)
		runREPL(ctx, a, a.getStatus, a.reader)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Info(ctx, "shutting down")
	}
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.authenticated
}

func (a *App) getStatus() string {
	if !a.authenticated {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.user.Email)
}
