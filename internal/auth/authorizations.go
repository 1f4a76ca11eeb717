package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type authorizationResult struct {
	code string
	err  error
}

// Authorizations correlates OAuth2 redirects with the attempts waiting for
// them. Each attempt gets its own id, sent as the OAuth2 state parameter.
type Authorizations struct {
	mu      sync.Mutex
	pending map[string]chan authorizationResult
	newID   func() string
}

func NewAuthorizations() *Authorizations {
	return &Authorizations{
		pending: make(map[string]chan authorizationResult),
		newID:   uuid.NewString,
	}
}

// Pending is one in-flight authorization attempt.
type Pending struct {
	id       string
	result   <-chan authorizationResult
	registry *Authorizations
}

// Begin registers a new attempt.
func (a *Authorizations) Begin() *Pending {
	ch := make(chan authorizationResult, 1)

	a.mu.Lock()
	id := a.newID()
	a.pending[id] = ch
	a.mu.Unlock()

	return &Pending{id: id, result: ch, registry: a}
}

// Complete delivers code to the attempt registered under id.
func (a *Authorizations) Complete(id, code string) error {
	return a.deliver(id, authorizationResult{code: code})
}

// Fail delivers err to the attempt registered under id.
func (a *Authorizations) Fail(id string, err error) error {
	return a.deliver(id, authorizationResult{err: err})
}

// Len returns the number of attempts still waiting.
func (a *Authorizations) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

func (a *Authorizations) deliver(id string, result authorizationResult) error {
	a.mu.Lock()
	ch, ok := a.pending[id]
	delete(a.pending, id)
	a.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAuthorization, id)
	}
	ch <- result
	return nil
}

func (a *Authorizations) remove(id string) {
	a.mu.Lock()
	delete(a.pending, id)
	a.mu.Unlock()
}

func (p *Pending) ID() string {
	return p.id
}

// Wait blocks until a code or error is delivered, ctx ends, or timeout
// elapses. A zero timeout waits for ctx only. The attempt is unregistered
// when Wait returns.
func (p *Pending) Wait(ctx context.Context, timeout time.Duration) (string, error) {
	defer p.registry.remove(p.id)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, timeout, ErrAuthorizationTimeout)
		defer cancel()
	}

	select {
	case r := <-p.result:
		return r.code, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for authorization code: %w", context.Cause(ctx))
	}
}

// Cancel unregisters the attempt without waiting.
func (p *Pending) Cancel() {
	p.registry.remove(p.id)
}
