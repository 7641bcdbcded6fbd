package api

// Severity drives how a message is presented to the user.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
	SeveritySuccess Severity = "success"
)

// Kind is the recovery taxonomy of a classified response.
type Kind string

const (
	// KindSuccess: the request worked; show the confirmation.
	KindSuccess Kind = "success"
	// KindValidation: 422; the input must be fixed; server details are
	// never echoed.
	KindValidation Kind = "validation"
	// KindAuthRequired: 401; the credential is missing, wrong, or expired.
	KindAuthRequired Kind = "auth_required"
	// KindUnverified: 403 on a sign-in path; the account exists but the
	// email is not verified; a resend action should be offered.
	KindUnverified Kind = "unverified"
	// KindConflict: 409; the resource is already in a terminal state.
	KindConflict Kind = "conflict"
	// KindRateLimited: 429; never a dead end, retry after waiting.
	KindRateLimited Kind = "rate_limited"
	// KindNetwork: no response, or a status outside the mapped set.
	KindNetwork Kind = "network"
)

// Outcome is the normalized, user-facing interpretation of a server
// response. It is an immutable value; wiring the message into an alert or
// accessible live region is the caller's concern.
type Outcome struct {
	Kind       Kind
	Severity   Severity
	Message    string
	FocusAlert bool
}
