// SPDX-License-Identifier: MIT

package portal

import (
	"context"
	"errors"
	"sync"
)

// Step is one scripted CheckCourse response.
type Step struct {
	Result CheckResult
	Err    error
}

// ScriptedClient replays a fixed sequence of check results. It backs the dev
// portal mode and the monitor tests. When the script runs out the last step
// repeats.
type ScriptedClient struct {
	mu sync.Mutex

	AcceptLogin bool
	LoginErr    error
	SlotErrs    []error // consumed one per SelectSlot call, then nil
	Steps       []Step

	loginCalls int
	slotCalls  int
	checkCalls int
	closed     bool
}

// NewScriptedClient returns a client that accepts any credentials and replays
// the given steps.
func NewScriptedClient(steps ...Step) *ScriptedClient {
	return &ScriptedClient{AcceptLogin: true, Steps: steps}
}

func (c *ScriptedClient) Login(ctx context.Context, username, password string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.loginCalls++
	if c.LoginErr != nil {
		return false, c.LoginErr
	}
	return c.AcceptLogin, nil
}

func (c *ScriptedClient) SelectSlot(ctx context.Context, letter string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateSlot(letter); err != nil {
		return err
	}
	i := c.slotCalls
	c.slotCalls++
	if i < len(c.SlotErrs) {
		return c.SlotErrs[i]
	}
	return nil
}

func (c *ScriptedClient) CheckCourse(ctx context.Context, courseCode string) (CheckResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return CheckResult{}, err
	}
	if len(c.Steps) == 0 {
		return CheckResult{}, errors.New("scripted client has no steps")
	}
	i := c.checkCalls
	c.checkCalls++
	if i >= len(c.Steps) {
		i = len(c.Steps) - 1
	}
	step := c.Steps[i]
	return step.Result, step.Err
}

func (c *ScriptedClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (c *ScriptedClient) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Calls returns the number of Login, SelectSlot and CheckCourse calls made.
func (c *ScriptedClient) Calls() (login, slot, check int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginCalls, c.slotCalls, c.checkCalls
}
