package domain

import "time"

// FeedbackEvent is the outcome event published back to the producer after a
// review decision. Optional fields are pointers without omitempty so the
// encoded JSON always carries them, explicitly null when absent, and
// downstream consumers never need schema negotiation.
type FeedbackEvent struct {
	ProductID       int64          `json:"productId"`
	Status          ApprovalStatus `json:"status"`
	RejectionReason *string        `json:"rejectionReason"`
	ReviewedDate    time.Time      `json:"reviewedDate"`
	ReviewedBy      *string        `json:"reviewedBy"`
	Comments        *string        `json:"comments"`
}

// NewFeedbackEvent derives the feedback event from a record at the instant of
// its terminal transition. The record's reviewed fields must already be set.
func NewFeedbackEvent(record *ApprovalRecord) FeedbackEvent {
	event := FeedbackEvent{
		ProductID:       record.ProductID,
		Status:          record.Status,
		RejectionReason: record.RejectionReason,
		ReviewedBy:      record.ReviewedBy,
		Comments:        record.Comments,
	}
	if record.ReviewedAt != nil {
		event.ReviewedDate = *record.ReviewedAt
	}
	return event
}
