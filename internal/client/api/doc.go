// Package api implements the HTTP transport for the ZooTrail service and the
// classification of its responses into user-facing outcomes.
//
// The transport (HTTPClient) owns connection pooling, per-request IDs, bearer
// token injection, retry of idempotent reads, and a circuit breaker. The
// classifier (Classify) is a pure mapping from {status, body} to an Outcome
// and carries no state.
package api
