package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackEventExplicitNulls(t *testing.T) {
	reviewedAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	reviewer := "Admin"

	record := &ApprovalRecord{
		ProductID:  42,
		Status:     StatusApproved,
		ReviewedAt: &reviewedAt,
		ReviewedBy: &reviewer,
	}

	payload, err := json.Marshal(NewFeedbackEvent(record))
	require.NoError(t, err)

	// absent optional fields are present and explicitly null
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &raw))
	assert.Contains(t, raw, "rejectionReason")
	assert.Equal(t, "null", string(raw["rejectionReason"]))
	assert.Contains(t, raw, "comments")
	assert.Equal(t, "null", string(raw["comments"]))
	assert.Contains(t, raw, "reviewedBy")
	assert.Contains(t, raw, "productId")
	assert.Contains(t, raw, "status")
	assert.Contains(t, raw, "reviewedDate")
}

func TestFeedbackEventRoundTrip(t *testing.T) {
	reviewedAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	reviewer := "Admin"
	reason := "wrong category"
	comments := "see notes"

	event := FeedbackEvent{
		ProductID:       42,
		Status:          StatusRejected,
		RejectionReason: &reason,
		ReviewedDate:    reviewedAt,
		ReviewedBy:      &reviewer,
		Comments:        &comments,
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded FeedbackEvent
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, event, decoded)
}

func TestParseApprovalStatus(t *testing.T) {
	for raw, want := range map[string]ApprovalStatus{
		"Pending":  StatusPending,
		"pending":  StatusPending,
		"APPROVED": StatusApproved,
		"rejected": StatusRejected,
	} {
		status, err := ParseApprovalStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, want, status)
	}

	_, err := ParseApprovalStatus("Deleted")
	assert.Error(t, err)
	_, err = ParseApprovalStatus("")
	assert.Error(t, err)
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusApproved.Terminal())
	assert.True(t, StatusRejected.Terminal())
}
