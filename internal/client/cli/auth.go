package cli

import (
	"context"
	"os"

	"github.com/zootrail/zootrail/internal/client/api"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and signs in. The classified outcome is
// printed as-is; when the account is unverified the resend action is offered
// and the address is remembered as the resend target.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}

	res, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}

	printlnFn(res.Outcome.Message)
	if res.OfferResend {
		a.setPendingEmail(email)
		printlnFn("Type 'resend' to receive a new verification email.")
	}
	return nil
}

// Logout signs out locally and, best effort, server-side.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Signed out.")
	return nil
}

// Register prompts for the new account's credentials. On success the address
// becomes the resend target, since verification must follow.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	confirm, err := getPassword(os.Stdout, "Confirm password")
	if err != nil {
		return err
	}
	if password != confirm {
		printlnFn("Passwords do not match.")
		return nil
	}

	out, err := a.auth.Register(ctx, email, password)
	if err != nil {
		return err
	}

	printlnFn(out.Message)
	if out.Kind == api.KindSuccess {
		a.setPendingEmail(email)
	}
	return nil
}

// Whoami prints the signed-in identity, or that there is none.
func (a *App) Whoami(ctx context.Context) error {
	snap := a.sessions.Current()
	if snap.Session == nil {
		printlnFn("Not signed in.")
		return nil
	}
	printlnFn("Signed in as", snap.Session.User.Email)
	printlnFn("Session expires at", snap.Session.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

// Forgot requests a password-reset email through the throttled controller.
func (a *App) Forgot(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	a.forgotResend.Request(ctx, email)
	return nil
}

// Reset submits a new password for a reset link token.
func (a *App) Reset(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter reset token", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout, "New password")
	if err != nil {
		return err
	}
	confirm, err := getPassword(os.Stdout, "Confirm password")
	if err != nil {
		return err
	}

	out, err := a.auth.ResetPassword(ctx, token, password, confirm)
	if err != nil {
		return err
	}
	printlnFn(out.Message)
	return nil
}

// Resend sends another verification email. The target is the address from
// the last unverified login or registration; otherwise the user is asked.
func (a *App) Resend(ctx context.Context) error {
	email := a.getPendingEmail()
	if email == "" {
		if snap := a.sessions.Current(); snap.Session != nil {
			email = snap.Session.User.Email
		}
	}
	if email == "" {
		var err error
		email, err = getSimpleText(a.reader, "Enter email", os.Stdout)
		if err != nil {
			return err
		}
	}
	a.verifyResend.Request(ctx, email)
	return nil
}

func (a *App) setPendingEmail(email string) {
	a.resendMu.Lock()
	defer a.resendMu.Unlock()
	a.pendingEmail = email
}

func (a *App) getPendingEmail() string {
	a.resendMu.Lock()
	defer a.resendMu.Unlock()
	return a.pendingEmail
}
