package cli

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zootrail/zootrail/internal/client/api"
	"github.com/zootrail/zootrail/internal/client/resend"
	"github.com/zootrail/zootrail/internal/client/services"
)

type fakeAuthSvc struct {
	loginResult services.LoginResult
	registerOut api.Outcome
	resetOut    api.Outcome

	loginEmail    string
	loginPassword string
}

func (f *fakeAuthSvc) Login(ctx context.Context, email, password string) (services.LoginResult, error) {
	f.loginEmail = email
	f.loginPassword = password
	return f.loginResult, nil
}

func (f *fakeAuthSvc) Register(ctx context.Context, email, password string) (api.Outcome, error) {
	return f.registerOut, nil
}

func (f *fakeAuthSvc) ResetPassword(ctx context.Context, token, password, confirm string) (api.Outcome, error) {
	return f.resetOut, nil
}

func (f *fakeAuthSvc) VerificationResend(onChange func(resend.State)) *resend.Controller {
	return resend.New(api.FlowResendVerification,
		func(ctx context.Context, email string) (*api.CallResult, error) {
			return &api.CallResult{Status: 200}, nil
		}, resend.Policy{}, onChange)
}

func (f *fakeAuthSvc) ForgotPasswordResend(onChange func(resend.State)) *resend.Controller {
	return f.VerificationResend(onChange)
}

var _ services.AuthService = (*fakeAuthSvc)(nil)

// capturePrintln routes printlnFn into a slice for assertions.
func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, 0, len(a))
		for _, v := range a {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func stubInput(t *testing.T, text, password string) {
	t.Helper()
	origText := getSimpleText
	origPass := getPassword
	getSimpleText = func(r *bufio.Reader, prompt string, w io.Writer) (string, error) {
		return text, nil
	}
	getPassword = func(w io.Writer, prompt string) (string, error) {
		return password, nil
	}
	t.Cleanup(func() {
		getSimpleText = origText
		getPassword = origPass
	})
}

func TestAppLogin_PrintsOutcomeAndOffersResend(t *testing.T) {
	lines := capturePrintln(t)
	stubInput(t, "a@b.cz", "secret-password")

	auth := &fakeAuthSvc{loginResult: services.LoginResult{
		Outcome:     api.Outcome{Kind: api.KindUnverified, Message: "Your email address has not been verified yet."},
		OfferResend: true,
	}}
	app := &App{auth: auth, reader: bufio.NewReader(strings.NewReader(""))}

	require.NoError(t, app.Login(context.Background()))

	require.Equal(t, "a@b.cz", auth.loginEmail)
	require.Equal(t, "secret-password", auth.loginPassword)
	require.Contains(t, *lines, "Your email address has not been verified yet.")
	require.Contains(t, *lines, "Type 'resend' to receive a new verification email.")
	require.Equal(t, "a@b.cz", app.getPendingEmail())
}

func TestAppRegister_MismatchedPasswordsFailLocally(t *testing.T) {
	lines := capturePrintln(t)

	origText := getSimpleText
	origPass := getPassword
	getSimpleText = func(r *bufio.Reader, prompt string, w io.Writer) (string, error) {
		return "a@b.cz", nil
	}
	answers := []string{"secret-password", "other-password"}
	getPassword = func(w io.Writer, prompt string) (string, error) {
		next := answers[0]
		answers = answers[1:]
		return next, nil
	}
	t.Cleanup(func() {
		getSimpleText = origText
		getPassword = origPass
	})

	app := &App{auth: &fakeAuthSvc{}, reader: bufio.NewReader(strings.NewReader(""))}
	require.NoError(t, app.Register(context.Background()))
	require.Contains(t, *lines, "Passwords do not match.")
}

func TestAppResend_UsesPendingEmailWithoutPrompting(t *testing.T) {
	capturePrintln(t)

	var gotEmail atomic.Value
	app := &App{reader: bufio.NewReader(strings.NewReader(""))}
	app.verifyResend = resend.New(api.FlowResendVerification,
		func(ctx context.Context, email string) (*api.CallResult, error) {
			gotEmail.Store(email)
			return &api.CallResult{Status: 200}, nil
		}, resend.Policy{}, nil)
	app.setPendingEmail("a@b.cz")

	// An empty reader would fail any prompt, so passing proves none happened.
	require.NoError(t, app.Resend(context.Background()))
	require.Equal(t, "a@b.cz", gotEmail.Load())
}
