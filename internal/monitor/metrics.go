// SPDX-License-Identifier: MIT

package monitor

import (
	"github.com/arms-tools/seatwatch/internal/metrics"
)

// PromRecorder forwards monitor events to the package-level prometheus
// collectors.
type PromRecorder struct{}

func (PromRecorder) SessionStarted() { metrics.IncSessionStarted() }

func (PromRecorder) SessionFinished(status string) {
	metrics.DecSessionActive()
	metrics.IncSessionOutcome(status)
}

func (PromRecorder) Poll(outcome string) { metrics.IncPoll(outcome) }

func (PromRecorder) PollDuration(sec float64) { metrics.ObservePollDuration(sec) }

func (PromRecorder) PortalLogin(outcome string) { metrics.IncPortalLogin(outcome) }

func (PromRecorder) Notification(outcome string) { metrics.IncNotification(outcome) }

type nopRecorder struct{}

func (nopRecorder) SessionStarted()        {}
func (nopRecorder) SessionFinished(string) {}
func (nopRecorder) Poll(string)            {}
func (nopRecorder) PollDuration(float64)   {}
func (nopRecorder) PortalLogin(string)     {}
func (nopRecorder) Notification(string)    {}
