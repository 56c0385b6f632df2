package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readJson rejects unknown fields, so the reject body must decode under the
// documented camelCase field names.
func TestRejectRequestFieldNames(t *testing.T) {
	body := `{"reviewer":"Admin","rejectionReason":"wrong category","comments":"see notes"}`
	r := httptest.NewRequest(http.MethodPost, "/api/v1/approvals/abc/reject", strings.NewReader(body))
	w := httptest.NewRecorder()

	var req RejectRequest
	require.NoError(t, readJson(w, r, &req))

	assert.Equal(t, "Admin", req.Reviewer)
	assert.Equal(t, "wrong category", req.RejectionReason)
	assert.Equal(t, "see notes", req.Comments)
}

func TestRejectRequestRejectsUnknownFields(t *testing.T) {
	body := `{"reviewer":"Admin","rejection_reason":"wrong category"}`
	r := httptest.NewRequest(http.MethodPost, "/api/v1/approvals/abc/reject", strings.NewReader(body))
	w := httptest.NewRecorder()

	var req RejectRequest
	require.Error(t, readJson(w, r, &req))
}
