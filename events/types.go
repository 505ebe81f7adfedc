package events

import "time"

// SubmissionEvent represents a submitted transaction published to NATS.
// This is published to the subject "submissions.{fee_payer}" in JetStream.
type SubmissionEvent struct {
	// Transaction identifiers
	Signature string `json:"signature"`

	// Submission details
	FeePayer   string `json:"fee_payer"`
	Mode       string `json:"mode"` // partial or send
	Commitment string `json:"commitment"`

	// Timing information
	SubmittedAt time.Time `json:"submitted_at"`
	PublishedAt time.Time `json:"published_at"`
}
