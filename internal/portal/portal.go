// SPDX-License-Identifier: MIT

// Package portal defines the contract against the remote enrollment portal.
//
// The production adapter drives a real browser against the enrollment site
// and lives outside this repository; everything here is the contract that
// adapter must satisfy, plus a scripted in-memory implementation used by
// tests and the dev portal mode.
package portal

import (
	"context"
)

// Outcome classifies the result of a course check.
type Outcome string

const (
	OutcomeFound    Outcome = "found"
	OutcomeFull     Outcome = "full"
	OutcomeNotFound Outcome = "not_found"
)

// CheckResult is the result of one CheckCourse call.
type CheckResult struct {
	Outcome   Outcome
	Vacancies int // only meaningful for OutcomeFound / OutcomeFull
}

// Client is one authenticated handle onto the enrollment portal. A client is
// owned by exactly one monitoring session for its whole lifetime; it is not
// safe to share between sessions or to Login twice on the same instance.
//
// CheckCourse is NOT a pure query: when it reports OutcomeFound the portal
// has already been asked to claim the seat as a side effect. Callers must not
// treat it as safely retryable; two sessions racing the same course can both
// observe vacancies and both issue a claim, with no atomicity guarantee.
type Client interface {
	// Login establishes the authenticated context for all later calls.
	// ok=false means the portal rejected the credentials; err reports a
	// transport-level failure.
	Login(ctx context.Context, username, password string) (ok bool, err error)

	// SelectSlot makes the course table for the given slot letter visible.
	// It must be called before each CheckCourse.
	SelectSlot(ctx context.Context, letter string) error

	// CheckCourse looks up the course row and, when vacancies are shown,
	// attempts the claim. A returned error is a transport-level failure and
	// is treated as transient by the caller.
	CheckCourse(ctx context.Context, courseCode string) (CheckResult, error)

	// Close releases the underlying portal resource (e.g. a browser handle).
	// It must be called on every exit path of the owning session.
	Close() error
}

// Factory creates one fresh Client per monitoring session.
type Factory func(ctx context.Context) (Client, error)
