package resend

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zootrail/zootrail/internal/client/api"
)

func okSender(calls *atomic.Int32) Sender {
	return func(ctx context.Context, email string) (*api.CallResult, error) {
		calls.Add(1)
		return &api.CallResult{Status: 200}, nil
	}
}

func TestRequest_SuccessStartsCooldown(t *testing.T) {
	var calls atomic.Int32
	c := New(api.FlowResendVerification, okSender(&calls),
		Policy{Cooldown: 3 * time.Second}, nil)

	c.Request(context.Background(), "a@b.cz")

	st := c.State()
	require.Equal(t, StatusSuccess, st.Status)
	require.Equal(t, api.SeveritySuccess, st.Severity)
	require.Equal(t, 3, st.CooldownRemaining)
	require.Equal(t, "a@b.cz", st.TargetEmail)
	require.Equal(t, int32(1), calls.Load())
}

func TestRequest_NoOpDuringCooldown(t *testing.T) {
	var calls atomic.Int32
	c := New(api.FlowResendVerification, okSender(&calls),
		Policy{Cooldown: 30 * time.Second}, nil)
	ctx := context.Background()

	c.Request(ctx, "a@b.cz")
	c.Request(ctx, "a@b.cz")
	c.Request(ctx, "a@b.cz")

	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, StatusSuccess, c.State().Status)
}

func TestRequest_NoOpWhileLoading(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	c := New(api.FlowResendVerification,
		func(ctx context.Context, email string) (*api.CallResult, error) {
			calls.Add(1)
			close(started)
			<-release
			return &api.CallResult{Status: 200}, nil
		},
		Policy{}, nil)

	go c.Request(context.Background(), "a@b.cz")
	<-started

	// The overlapping request must return without sending anything.
	c.Request(context.Background(), "a@b.cz")
	require.Equal(t, int32(1), calls.Load())

	close(release)
	require.Eventually(t, func() bool {
		return c.State().Status == StatusSuccess
	}, time.Second, 5*time.Millisecond)
}

func TestRequest_SwitchingEmailResetsCooldown(t *testing.T) {
	var calls atomic.Int32
	c := New(api.FlowResendVerification, okSender(&calls),
		Policy{Cooldown: 30 * time.Second}, nil)
	ctx := context.Background()

	c.Request(ctx, "a@b.cz")
	require.Equal(t, int32(1), calls.Load())

	// A new target is never blocked by the previous one's cooldown.
	c.Request(ctx, "other@b.cz")
	require.Equal(t, int32(2), calls.Load())
	require.Equal(t, "other@b.cz", c.State().TargetEmail)
}

func TestRequest_CooldownCountsDownAndResets(t *testing.T) {
	orig := cooldownTick
	cooldownTick = 5 * time.Millisecond
	defer func() { cooldownTick = orig }()

	var calls atomic.Int32
	c := New(api.FlowResendVerification, okSender(&calls),
		Policy{Cooldown: 2 * time.Second, ResetAfterCooldown: true}, nil)

	c.Request(context.Background(), "a@b.cz")
	require.Equal(t, StatusSuccess, c.State().Status)

	require.Eventually(t, func() bool {
		st := c.State()
		return st.CooldownRemaining == 0 && st.Status == StatusIdle
	}, time.Second, 5*time.Millisecond)

	// Idle again: a new request goes through.
	c.Request(context.Background(), "a@b.cz")
	require.Equal(t, int32(2), calls.Load())
}

func TestRequest_WithoutPolicyCooldownNoCountdownStarts(t *testing.T) {
	var calls atomic.Int32
	c := New(api.FlowForgotPassword, okSender(&calls), Policy{}, nil)
	ctx := context.Background()

	c.Request(ctx, "a@b.cz")
	st := c.State()
	require.Equal(t, StatusSuccess, st.Status)
	require.Equal(t, 0, st.CooldownRemaining)

	c.Request(ctx, "a@b.cz")
	require.Equal(t, int32(2), calls.Load())
}

func TestRequest_ErrorNeverStartsCooldown(t *testing.T) {
	tests := []struct {
		name     string
		res      *api.CallResult
		err      error
		severity api.Severity
	}{
		{name: "rate limited", res: &api.CallResult{Status: 429}, severity: api.SeverityWarning},
		{name: "server error", res: &api.CallResult{Status: 500}, severity: api.SeverityDanger},
		{name: "network", err: errors.New("dial tcp: connection refused"), severity: api.SeverityDanger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := New(api.FlowResendVerification,
				func(ctx context.Context, email string) (*api.CallResult, error) {
					calls.Add(1)
					return tt.res, tt.err
				},
				Policy{Cooldown: 30 * time.Second}, nil)
			ctx := context.Background()

			c.Request(ctx, "a@b.cz")
			st := c.State()
			require.Equal(t, StatusError, st.Status)
			require.Equal(t, tt.severity, st.Severity)
			require.NotEmpty(t, st.Message)
			require.Zero(t, st.CooldownRemaining)

			// Retry is allowed immediately after a failure.
			c.Request(ctx, "a@b.cz")
			require.Equal(t, int32(2), calls.Load())
		})
	}
}

func TestRequest_CancelledContextLeavesNoTrace(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := New(api.FlowResendVerification,
		func(ctx context.Context, email string) (*api.CallResult, error) {
			cancel()
			return nil, ctx.Err()
		},
		Policy{Cooldown: 30 * time.Second}, nil)

	c.Request(ctx, "a@b.cz")

	st := c.State()
	require.Equal(t, StatusIdle, st.Status)
	require.Empty(t, st.Message)
	require.Zero(t, st.CooldownRemaining)
}

func TestReset_DiscardsInFlightCompletion(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := New(api.FlowResendVerification,
		func(ctx context.Context, email string) (*api.CallResult, error) {
			close(started)
			<-release
			return &api.CallResult{Status: 200}, nil
		},
		Policy{Cooldown: 30 * time.Second}, nil)

	done := make(chan struct{})
	go func() {
		c.Request(context.Background(), "a@b.cz")
		close(done)
	}()
	<-started

	c.Reset()
	close(release)
	<-done

	// The stale completion must not resurrect success or a cooldown.
	st := c.State()
	require.Equal(t, StatusIdle, st.Status)
	require.Zero(t, st.CooldownRemaining)
}

func TestOnChange_ObservesTransitions(t *testing.T) {
	var notified atomic.Int32
	c := New(api.FlowResendVerification, okSender(&atomic.Int32{}),
		Policy{}, func(State) { notified.Add(1) })

	c.Request(context.Background(), "a@b.cz")

	// loading + success
	require.Eventually(t, func() bool {
		return notified.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}
