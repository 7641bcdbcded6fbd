// Package services contains application services for the ZooTrail client.
// This file defines the authentication service: sign-in, signup, password
// reset, and the throttled email-resend flows.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/zootrail/zootrail/internal/client/api"
	"github.com/zootrail/zootrail/internal/client/inbox"
	"github.com/zootrail/zootrail/internal/client/resend"
	"github.com/zootrail/zootrail/internal/client/session"
	"github.com/zootrail/zootrail/internal/logging"
)

// Password reset link states reported by the server.
const (
	resetStatusValid    = "valid"
	resetStatusConsumed = "consumed"
	resetStatusExpired  = "expired"
)

// LoginResult is what the sign-in form renders: the classified outcome plus
// whether a "resend verification email" action should be offered.
type LoginResult struct {
	Outcome     api.Outcome
	OfferResend bool
}

// AuthService defines the authentication operations for the CLI.
//
// Contract:
//   - Login: validate input, exchange credentials, persist the session.
//   - Register: create an account; the verification flow follows.
//   - ResetPassword: check the link first, then submit the new password.
//   - VerificationResend / ForgotPasswordResend: throttled controllers.
//
// All methods honor context cancellation. Outcomes carry the user-facing
// copy; errors are reserved for local faults (e.g. the store).
type AuthService interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
	Register(ctx context.Context, email, password string) (api.Outcome, error)
	ResetPassword(ctx context.Context, token, password, confirm string) (api.Outcome, error)
	VerificationResend(onChange func(resend.State)) *resend.Controller
	ForgotPasswordResend(onChange func(resend.State)) *resend.Controller
}

type authService struct {
	client   api.Client
	sessions *session.Manager
	inbox    *inbox.Inbox
	validate *validator.Validate
	cooldown time.Duration
	log      logging.Logger
}

// NewAuthService wires the service to the API client, the session manager,
// and the startup inbox. cooldown throttles successful resends.
func NewAuthService(client api.Client, sessions *session.Manager, box *inbox.Inbox,
	cooldown time.Duration, log logging.Logger) AuthService {
	return &authService{
		client:   client,
		sessions: sessions,
		inbox:    box,
		validate: validator.New(),
		cooldown: cooldown,
		log:      log,
	}
}

type credentialsInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// Login validates the form locally, exchanges the credentials, and on a
// grant persists the session. A 403 answer flips OfferResend on so the CLI
// can surface the verification resend action.
func (a *authService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	in := credentialsInput{Email: email, Password: password}
	if err := a.validate.Struct(in); err != nil {
		return LoginResult{Outcome: api.InvalidInput()}, nil
	}

	grant, res, err := a.client.Login(ctx, email, password)
	if err != nil {
		return LoginResult{Outcome: api.ClassifyTransportError(err)}, nil
	}

	out := api.Classify(api.FlowLogin, res)
	if grant != nil && out.Kind == api.KindSuccess {
		if err := a.sessions.Login(ctx, *grant); err != nil {
			return LoginResult{}, err
		}
	}

	return LoginResult{
		Outcome:     out,
		OfferResend: out.Kind == api.KindUnverified,
	}, nil
}

// Register creates the account. Email verification is required before the
// first sign-in, so no session is established here.
func (a *authService) Register(ctx context.Context, email, password string) (api.Outcome, error) {
	email = strings.TrimSpace(email)
	in := credentialsInput{Email: email, Password: password}
	if err := a.validate.Struct(in); err != nil {
		return api.InvalidInput(), nil
	}

	res, err := a.client.Register(ctx, email, password)
	if err != nil {
		return api.ClassifyTransportError(err), nil
	}
	return api.Classify(api.FlowRegister, res), nil
}

// ResetPassword checks the reset link before submitting, so a consumed or
// expired link fails with precise copy instead of a form round trip. On
// success a one-shot notice is posted for the next startup.
func (a *authService) ResetPassword(ctx context.Context, token, password, confirm string) (api.Outcome, error) {
	if password != confirm {
		return api.Outcome{
			Kind:       api.KindValidation,
			Severity:   api.SeverityDanger,
			Message:    "Passwords do not match.",
			FocusAlert: true,
		}, nil
	}
	if err := a.validate.Var(password, "required,min=8"); err != nil {
		return api.InvalidInput(), nil
	}

	status, err := a.client.ResetStatus(ctx, token)
	if err != nil {
		return classifyCallError(api.FlowPasswordReset, err), nil
	}

	switch status {
	case resetStatusValid:
		// proceed
	case resetStatusConsumed:
		return api.Classify(api.FlowPasswordReset, &api.CallResult{Status: 409}), nil
	case resetStatusExpired:
		return api.Outcome{
			Kind:       api.KindConflict,
			Severity:   api.SeverityWarning,
			Message:    "This reset link has expired. Request a new one.",
			FocusAlert: true,
		}, nil
	default:
		a.log.Warn(ctx, "unknown reset link status", "status", status)
		return api.InvalidInput(), nil
	}

	res, err := a.client.ResetPassword(ctx, token, password, confirm)
	if err != nil {
		return api.ClassifyTransportError(err), nil
	}

	out := api.Classify(api.FlowPasswordReset, res)
	if out.Kind == api.KindSuccess {
		if err := a.inbox.Post(ctx, "Password changed. Please sign in with your new password."); err != nil {
			a.log.Warn(ctx, "posting reset notice failed", "error", err)
		}
	}
	return out, nil
}

// VerificationResend builds the throttled controller for verification mails.
// Success starts the configured cooldown and the success copy stays visible.
func (a *authService) VerificationResend(onChange func(resend.State)) *resend.Controller {
	return resend.New(api.FlowResendVerification, a.client.ResendVerification,
		resend.Policy{Cooldown: a.cooldown}, onChange)
}

// ForgotPasswordResend builds the controller for reset-link mails. The form
// returns to idle after the cooldown so another address can be entered.
func (a *authService) ForgotPasswordResend(onChange func(resend.State)) *resend.Controller {
	return resend.New(api.FlowForgotPassword, a.client.ForgotPassword,
		resend.Policy{Cooldown: a.cooldown, ResetAfterCooldown: true}, onChange)
}

// classifyCallError turns an error from a decoding client method into an
// Outcome: server answers keep their status, everything else is a network
// matter.
func classifyCallError(flow api.Flow, err error) api.Outcome {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return api.Classify(flow, &api.CallResult{Status: apiErr.Status, Body: apiErr.Body})
	}
	return api.ClassifyTransportError(err)
}
