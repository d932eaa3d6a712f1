// SPDX-License-Identifier: MIT

package portal

import (
	"context"

	"golang.org/x/time/rate"
)

// PacedClient wraps a Client and paces every portal interaction through a
// shared rate limiter. The enrollment site tolerates very little traffic, so
// the daemon shares one limiter across all concurrent sessions.
type PacedClient struct {
	inner   Client
	limiter *rate.Limiter
}

// Paced wraps client with the given limiter. A nil limiter returns the client
// unchanged.
func Paced(client Client, limiter *rate.Limiter) Client {
	if limiter == nil {
		return client
	}
	return &PacedClient{inner: client, limiter: limiter}
}

func (p *PacedClient) Login(ctx context.Context, username, password string) (bool, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return false, err
	}
	return p.inner.Login(ctx, username, password)
}

func (p *PacedClient) SelectSlot(ctx context.Context, letter string) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	return p.inner.SelectSlot(ctx, letter)
}

func (p *PacedClient) CheckCourse(ctx context.Context, courseCode string) (CheckResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return CheckResult{}, err
	}
	return p.inner.CheckCourse(ctx, courseCode)
}

func (p *PacedClient) Close() error {
	return p.inner.Close()
}
