// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRunID  = "run_id"
	FieldTarget = "target"
	FieldTrial  = "trial"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Request fields
	FieldMethod   = "method"
	FieldURI      = "uri"
	FieldBaseURL  = "base_url"
	FieldEndpoint = "endpoint"
	FieldStatus   = "status"
	FieldReason   = "reason"

	// Output fields
	FieldPath   = "path"
	FieldOutDir = "outdir"
)
