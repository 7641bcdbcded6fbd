package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/zootrail/zootrail/internal/client/api"
	"github.com/zootrail/zootrail/internal/client/config"
	"github.com/zootrail/zootrail/internal/client/inbox"
	"github.com/zootrail/zootrail/internal/client/localdb"
	"github.com/zootrail/zootrail/internal/client/repositories/metadata"
	"github.com/zootrail/zootrail/internal/client/repositories/searches"
	"github.com/zootrail/zootrail/internal/client/resend"
	"github.com/zootrail/zootrail/internal/client/services"
	"github.com/zootrail/zootrail/internal/client/session"
	"github.com/zootrail/zootrail/internal/logging"
)

// App is the wired-up CLI: local store, API client, session manager, and the
// application services behind the REPL commands.
type App struct {
	config   *config.Config
	log      logging.Logger
	db       *sql.DB
	store    *session.SQLiteStore
	client   *api.HTTPClient
	sessions *session.Manager
	auth     services.AuthService
	visits   services.VisitsService
	inbox    *inbox.Inbox

	verifyResend *resend.Controller
	forgotResend *resend.Controller

	resendMu     sync.Mutex
	lastResend   resend.Status
	pendingEmail string

	reader *bufio.Reader
}

// NewApp opens the local database, migrates it, and wires every component.
// The API client gets its bearer tokens from the session manager; the manager
// performs its network calls through the same client.
func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := localdb.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	apiClient := api.NewHTTPClient(api.Config{
		BaseURL: c.APIBaseURL,
		Timeout: c.RequestTimeout,
	}, log)

	store := session.NewSQLiteStore(db, log, c.StorePollInterval)
	sessions := session.NewManager(store, apiClient, log, c.RefreshMargin)
	apiClient.SetTokenSource(sessions)

	box := inbox.New(metadata.NewSQLiteRepository(db))
	auth := services.NewAuthService(apiClient, sessions, box, c.ResendCooldown, log)
	visits := services.NewVisitsService(apiClient, searches.NewSQLiteRepository(db),
		c.AchievementsEnabled, log)

	a := &App{
		config:   c,
		log:      log,
		db:       db,
		store:    store,
		client:   apiClient,
		sessions: sessions,
		auth:     auth,
		visits:   visits,
		inbox:    box,
		reader:   bufio.NewReader(os.Stdin),
	}
	a.verifyResend = auth.VerificationResend(a.printResendState)
	a.forgotResend = auth.ForgotPasswordResend(a.printResendState)
	return a, nil
}

// Run hydrates the persisted session, surfaces any pending startup notice,
// and hands control to the REPL until the user exits.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if err := a.sessions.Hydrate(ctx); err != nil {
		return err
	}

	if notice, err := a.inbox.Consume(ctx); err != nil {
		a.log.Warn(ctx, "reading startup notice failed", "error", err)
	} else if notice != "" {
		printlnFn("! " + notice)
	}

	printlnFn("ZooTrail CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
	return nil
}

func (a *App) close() {
	_ = a.verifyResend.Close()
	_ = a.forgotResend.Close()
	_ = a.sessions.Close()
	_ = a.store.Close()
	_ = a.client.Close()
	_ = a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Current().State == session.StateAuthenticated
}

func (a *App) getStatus() string {
	snap := a.sessions.Current()
	if snap.Session == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", snap.Session.User.Email)
}

// printResendState renders resend controller transitions. Countdown ticks
// keep the same status and stay silent; only status changes print.
func (a *App) printResendState(st resend.State) {
	a.resendMu.Lock()
	changed := st.Status != a.lastResend
	a.lastResend = st.Status
	a.resendMu.Unlock()
	if !changed {
		return
	}

	switch st.Status {
	case resend.StatusSuccess:
		if st.CooldownRemaining > 0 {
			printlnFn(fmt.Sprintf("%s You can request another in %ds.", st.Message, st.CooldownRemaining))
		} else if st.Message != "" {
			printlnFn(st.Message)
		}
	case resend.StatusError:
		printlnFn(st.Message)
	}
}
