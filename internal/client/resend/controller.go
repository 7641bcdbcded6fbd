// Package resend throttles "send me that email again" actions: verification
// mails and password-reset mails share the same state machine.
package resend

import (
	"context"
	"sync"
	"time"

	"github.com/zootrail/zootrail/internal/client/api"
)

// Status is the controller's user-visible phase.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// cooldownTick is a test seam for the countdown cadence.
var cooldownTick = time.Second

// State is a snapshot of the controller.
type State struct {
	Status            Status
	Severity          api.Severity
	Message           string
	CooldownRemaining int // seconds
	TargetEmail       string
}

// Sender issues the actual resend call for one email address.
type Sender func(ctx context.Context, email string) (*api.CallResult, error)

// Policy configures one flow's throttling behavior.
type Policy struct {
	// Cooldown is the wait imposed after a successful send. Zero disables
	// the programmatic cooldown for the flow.
	Cooldown time.Duration

	// ResetAfterCooldown returns the controller to idle once the countdown
	// ends; otherwise it stays in success with a new request permitted.
	ResetAfterCooldown bool
}

// Controller tracks a single outstanding resend action for one target email.
//
// Request is a silent no-op while a request is in flight or a cooldown is
// counting down. Switching the target email resets the controller first, so
// a fresh address is never blocked by the previous one's cooldown. Errors
// never start a cooldown: the user may retry immediately, and a rate-limit
// answer only advises waiting.
type Controller struct {
	flow   api.Flow
	send   Sender
	policy Policy

	// onChange, when set, observes every state transition.
	onChange func(State)

	mu    sync.Mutex
	state State
	gen   int // invalidates countdowns and in-flight completions
}

// New builds a controller for one flow. onChange may be nil.
func New(flow api.Flow, send Sender, policy Policy, onChange func(State)) *Controller {
	return &Controller{
		flow:     flow,
		send:     send,
		policy:   policy,
		onChange: onChange,
		state:    State{Status: StatusIdle},
	}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Request starts one resend for email, unless one is already in flight or a
// cooldown is active for the same target. It blocks until the call settles
// or ctx is cancelled; a cancelled call leaves no trace in the state.
func (c *Controller) Request(ctx context.Context, email string) {
	c.mu.Lock()
	if email != c.state.TargetEmail {
		c.resetLocked()
	}
	if c.state.Status == StatusLoading || c.state.CooldownRemaining > 0 {
		c.mu.Unlock()
		return
	}
	c.state.Status = StatusLoading
	c.state.Message = ""
	c.state.TargetEmail = email
	c.gen++
	gen := c.gen
	c.changedLocked()
	c.mu.Unlock()

	res, err := c.send(ctx, email)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// Reset or retarget happened while the call was in flight.
		return
	}
	if ctx.Err() != nil {
		// Torn down mid-flight: the completion must not mutate state.
		c.state.Status = StatusIdle
		return
	}

	if err != nil {
		out := api.ClassifyTransportError(err)
		c.state.Status = StatusError
		c.state.Severity = out.Severity
		c.state.Message = out.Message
		c.changedLocked()
		return
	}

	out := api.Classify(c.flow, res)
	if out.Kind != api.KindSuccess {
		c.state.Status = StatusError
		c.state.Severity = out.Severity
		c.state.Message = out.Message
		c.changedLocked()
		return
	}

	c.state.Status = StatusSuccess
	c.state.Severity = out.Severity
	c.state.Message = out.Message
	if c.policy.Cooldown > 0 {
		c.state.CooldownRemaining = int(c.policy.Cooldown / time.Second)
		go c.countdown(gen)
	}
	c.changedLocked()
}

// Reset clears the controller back to idle; any countdown or in-flight
// completion is discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.changedLocked()
}

// Close discards any countdown or in-flight completion. The controller is
// left idle; it is safe to drop afterwards.
func (c *Controller) Close() error {
	c.Reset()
	return nil
}

func (c *Controller) resetLocked() {
	c.gen++
	c.state = State{Status: StatusIdle}
}

// countdown decrements CooldownRemaining once per tick until zero.
func (c *Controller) countdown(gen int) {
	ticker := time.NewTicker(cooldownTick)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if gen != c.gen {
			c.mu.Unlock()
			return
		}
		c.state.CooldownRemaining--
		done := c.state.CooldownRemaining <= 0
		if done {
			c.state.CooldownRemaining = 0
			if c.policy.ResetAfterCooldown {
				c.state.Status = StatusIdle
				c.state.Message = ""
			}
		}
		c.changedLocked()
		c.mu.Unlock()
		if done {
			return
		}
	}
}

func (c *Controller) changedLocked() {
	if c.onChange == nil {
		return
	}
	snap := c.state
	go c.onChange(snap)
}
