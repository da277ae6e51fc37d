package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/mithaimart/internal/client/client"
	"github.com/dmitrijs2005/mithaimart/internal/client/config"
	"github.com/dmitrijs2005/mithaimart/internal/client/form"
	"github.com/dmitrijs2005/mithaimart/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/mithaimart/internal/client/session"
	"github.com/dmitrijs2005/mithaimart/internal/client/ui"
	"github.com/dmitrijs2005/mithaimart/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// onlineCheckInterval is how often the watcher pings the server.
const onlineCheckInterval = 30 * time.Second

type App struct {
	config   *config.Config
	db       *sql.DB
	api      client.Client
	session  *session.Manager
	nav      *ui.Navigator
	form     *form.Form
	notifier ui.Notifier
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer

	modeMu sync.Mutex
	mode   Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stderr, slog.LevelWarn)

	db, err := client.InitDatabase(ctx, c.SessionDSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing session database: %w", err)
	}

	api := client.NewHTTPClient(c.ServerEndpointAddr, c.RequestTimeout)

	a := newApp(ctx, c, db, api, logger, os.Stdin, os.Stdout)
	return a, nil
}

// newApp wires the components around an already opened database and API
// client, and restores any persisted session.
func newApp(ctx context.Context, c *config.Config, db *sql.DB, api client.Client, logger logging.Logger, in io.Reader, out io.Writer) *App {
	store := session.NewMetadataStore(metadata.NewSQLiteRepository(db))
	sess := session.NewManager(api, store, logger)
	sess.Restore(ctx)

	nav := ui.NewNavigator(sess, ui.DefaultRoutes(), logger)
	notifier := ui.NewWriterNotifier(out)

	a := &App{
		config:   c,
		db:       db,
		api:      api,
		session:  sess,
		nav:      nav,
		notifier: notifier,
		logger:   logger,
		reader:   bufio.NewReader(in),
		out:      out,
	}

	a.form = form.New(sess, notifier, nav,
		form.WithSubmitTimeout(c.SubmitTimeout),
		form.WithLogger(logger),
	)
	nav.OnChange(a.render)

	return a
}

// Run starts the connectivity watcher and the REPL, and releases resources
// when the REPL ends.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)

	fmt.Fprintln(a.out, "Welcome to MithaiMart (type 'help' for commands)")
	a.render(a.nav.Current())

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	return nil
}

func (a *App) close() {
	a.nav.Close()
	if err := a.api.Close(); err != nil {
		a.logger.Warn(context.Background(), "closing api client", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn(context.Background(), "closing session database", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) getStatus() string {
	s := ""
	if u := a.session.State().User; u != nil {
		s = u.Email + " "
	}
	s += string(a.Mode())
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

// StartOnlineStatusWatcher pings the server immediately and then every
// interval until ctx is done, updating the mode shown in the prompt.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := a.api.Ping(pingCtx)
		cancel()

		if err != nil {
			a.setMode(ModeOffline)
		} else {
			a.setMode(ModeOnline)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) render(r ui.Route) {
	if err := ui.RenderView(a.out, r, a.session.State()); err != nil {
		a.logger.Warn(context.Background(), "rendering view", "error", err)
	}
}
