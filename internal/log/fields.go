// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID = "session_id"
	FieldRequestID = "request_id"
	FieldUsername  = "username"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Domain fields
	FieldCourse   = "course"
	FieldSlot     = "slot"
	FieldStatus   = "status"
	FieldAttempts = "attempts"
	FieldOldState = "old_state"
	FieldNewState = "new_state"
)
