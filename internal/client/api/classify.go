package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Flow identifies which user flow produced a response. It selects the fixed
// fallback and conflict copy; it never changes the status-driven taxonomy.
type Flow string

const (
	FlowLogin              Flow = "login"
	FlowRegister           Flow = "register"
	FlowForgotPassword     Flow = "forgot_password"
	FlowPasswordReset      Flow = "password_reset"
	FlowResendVerification Flow = "resend_verification"
)

// Fixed copy. Validation details from the server are deliberately never
// shown; everything else prefers the server-provided detail text.
const (
	msgValidation   = "Please check the form and try again."
	msgRateLimited  = "Too many attempts. Please wait a moment and try again."
	msgNetwork      = "Could not reach the server. Check your connection and try again."
	msgUnverified   = "Your email address has not been verified yet."
	msgBadLogin     = "Invalid email or password."
	msgAuthRequired = "Your session has expired. Please sign in again."
)

var successFallback = map[Flow]string{
	FlowLogin:              "Signed in.",
	FlowRegister:           "Account created. Check your inbox for a verification email.",
	FlowForgotPassword:     "If that address exists, a reset link is on its way.",
	FlowPasswordReset:      "Your password has been updated.",
	FlowResendVerification: "Verification email sent.",
}

var conflictMessage = map[Flow]string{
	FlowRegister:      "An account with this email already exists.",
	FlowPasswordReset: "This reset link has already been used. Request a new one.",
}

// Classify maps a received response onto an Outcome. It is a pure function:
// same flow, status, and body always produce the same value, and nothing is
// mutated. The body is consulted only to extract server-provided human text.
func Classify(flow Flow, res *CallResult) Outcome {
	detail := res.Detail()

	switch {
	case res.OK():
		return Outcome{
			Kind:       KindSuccess,
			Severity:   SeveritySuccess,
			Message:    orElse(detail, successFallback[flow]),
			FocusAlert: true,
		}

	case res.Status == http.StatusUnauthorized:
		if flow == FlowLogin {
			return Outcome{
				Kind:       KindAuthRequired,
				Severity:   SeverityDanger,
				Message:    orElse(detail, msgBadLogin),
				FocusAlert: true,
			}
		}
		// Outside of the login form a 401 is a session matter; the session
		// manager decides what happens, not an alert box.
		return Outcome{
			Kind:     KindAuthRequired,
			Severity: SeverityDanger,
			Message:  msgAuthRequired,
		}

	case res.Status == http.StatusForbidden && (flow == FlowLogin || flow == FlowRegister):
		return Outcome{
			Kind:       KindUnverified,
			Severity:   SeverityWarning,
			Message:    orElse(detail, msgUnverified),
			FocusAlert: true,
		}

	case res.Status == http.StatusConflict:
		msg, ok := conflictMessage[flow]
		if !ok {
			msg = "The request conflicts with the current state. Reload and try again."
		}
		return Outcome{
			Kind:       KindConflict,
			Severity:   SeverityWarning,
			Message:    msg,
			FocusAlert: true,
		}

	case res.Status == http.StatusUnprocessableEntity:
		return Outcome{
			Kind:       KindValidation,
			Severity:   SeverityDanger,
			Message:    msgValidation,
			FocusAlert: true,
		}

	case res.Status == http.StatusTooManyRequests:
		return Outcome{
			Kind:       KindRateLimited,
			Severity:   SeverityWarning,
			Message:    orElse(detail, msgRateLimited),
			FocusAlert: true,
		}

	default:
		return Outcome{
			Kind:       KindNetwork,
			Severity:   SeverityDanger,
			Message:    msgNetwork,
			FocusAlert: true,
		}
	}
}

// InvalidInput is the outcome for input rejected locally, before any request
// is made. Same copy as a server-side 422 on purpose.
func InvalidInput() Outcome {
	return Outcome{
		Kind:       KindValidation,
		Severity:   SeverityDanger,
		Message:    msgValidation,
		FocusAlert: true,
	}
}

// ClassifyTransportError maps a network-level failure (no response received)
// onto an Outcome, including the underlying error text.
func ClassifyTransportError(err error) Outcome {
	msg := msgNetwork
	if err != nil {
		msg = fmt.Sprintf("%s (%v)", msgNetwork, err)
	}
	return Outcome{
		Kind:       KindNetwork,
		Severity:   SeverityDanger,
		Message:    msg,
		FocusAlert: true,
	}
}

// detailBody matches the service's error/confirmation envelope. Detail may
// also be a validation array, which is ignored on purpose.
type detailBody struct {
	Detail any `json:"detail"`
}

// Detail returns the server-provided human-readable detail string, or "".
func (r *CallResult) Detail() string {
	if r == nil || len(r.Body) == 0 {
		return ""
	}
	var b detailBody
	if err := json.Unmarshal(r.Body, &b); err != nil {
		return ""
	}
	if s, ok := b.Detail.(string); ok {
		return s
	}
	return ""
}

func orElse(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
