package models

// ContactOutcomeStatus tags the result of one follow-up attempt.
type ContactOutcomeStatus string

const (
	OutcomeSent          ContactOutcomeStatus = "sent"
	OutcomeFailed        ContactOutcomeStatus = "failed"
	OutcomeUndeliverable ContactOutcomeStatus = "undeliverable"
	OutcomeSkipped       ContactOutcomeStatus = "skipped" // claimed by an overlapping pass
)

// ContactOutcome records what happened to a single contact during a pass.
type ContactOutcome struct {
	InquiryID    string               `json:"inquiryId"`
	SupplierID   string               `json:"supplierId"`
	SupplierName string               `json:"supplierName"`
	Status       ContactOutcomeStatus `json:"status"`
	Error        string               `json:"error,omitempty"`
}

// FollowUpPassResult summarizes one full dispatcher pass over all engagable
// inquiries. Failures are reported here, never raised to the caller.
type FollowUpPassResult struct {
	FollowedUp int              `json:"followed_up"`
	Details    []ContactOutcome `json:"details"`
}

// FollowUpBatchResult is the outcome of a manual follow-up for one inquiry.
type FollowUpBatchResult struct {
	Sent   []ContactOutcome `json:"results"`
	Failed []ContactOutcome `json:"errors"`
}

// CompletionResult reports whether every contacted supplier has quoted.
type CompletionResult struct {
	AllQuotesReceived bool `json:"allQuotesReceived"`
	TotalSuppliers    int  `json:"totalSuppliers"`
	QuotesReceived    int  `json:"quotesReceived"`
}

// DeadlineReminder identifies one reminder written during a reminder pass.
type DeadlineReminder struct {
	InquiryID string `json:"inquiryId"`
	UserID    string `json:"userId"`
	Deadline  string `json:"deadline"`
}

// DeadlineReminderResult summarizes one deadline-reminder pass.
type DeadlineReminderResult struct {
	RemindersCount int                `json:"remindersCount"`
	Reminders      []DeadlineReminder `json:"reminders"`
}
