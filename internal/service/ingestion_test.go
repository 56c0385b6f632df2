package service

import (
	"context"
	"testing"

	"github.com/Beka01247/product-approvals/internal/domain"
	"github.com/Beka01247/product-approvals/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newIngestionFixture(t *testing.T) (*IngestionService, *fakeApprovalRepo) {
	t.Helper()

	repo := newFakeApprovalRepo()
	svc := NewIngestionService(repo, &fakeTxManager{repo: repo}, zap.NewNop().Sugar())

	return svc, repo
}

func inboundMessage(offset int64, payload string) queue.Message {
	return queue.Message{
		Topic:     "products",
		Partition: 0,
		Offset:    offset,
		Value:     []byte(payload),
	}
}

func TestProcess(t *testing.T) {
	svc, repo := newIngestionFixture(t)

	payload := `{"id":42,"name":"Widget","category":"Tools","price":9.99,"description":"a widget","quantity":3,"manufacturer":"Acme","createdDate":"2026-08-01T10:00:00Z"}`
	err := svc.Process(context.Background(), inboundMessage(0, payload))
	require.NoError(t, err)

	require.Equal(t, 1, repo.len())
	record, err := repo.FindPendingByProductID(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, domain.StatusPending, record.Status)
	assert.Equal(t, "Widget", record.ProductName)
	assert.Equal(t, 9.99, record.Price)
	assert.Equal(t, 3, record.Quantity)
	require.NotNil(t, record.Manufacturer)
	assert.Equal(t, "Acme", *record.Manufacturer)
	assert.Equal(t, payload, record.RawPayload)
	assert.False(t, record.ReceivedAt.IsZero())
	assert.Nil(t, record.ReviewedAt)
	assert.Nil(t, record.ReviewedBy)
}

func TestProcessDuplicateDelivery(t *testing.T) {
	svc, repo := newIngestionFixture(t)

	payload := `{"id":42,"name":"Widget","price":9.99,"quantity":3}`
	require.NoError(t, svc.Process(context.Background(), inboundMessage(0, payload)))
	require.NoError(t, svc.Process(context.Background(), inboundMessage(1, payload)))

	// delivering the same message twice while Pending yields exactly one record
	assert.Equal(t, 1, repo.len())
}

func TestProcessMalformedPayload(t *testing.T) {
	svc, repo := newIngestionFixture(t)

	for _, payload := range []string{
		"not json at all",
		`{"id":"not-a-number"}`,
		`{"name":"no id"}`,
		`{"id":0,"name":"zero id"}`,
	} {
		err := svc.Process(context.Background(), inboundMessage(0, payload))
		require.ErrorIs(t, err, domain.ErrMalformedPayload, "payload %q", payload)
	}

	assert.Equal(t, 0, repo.len())
}

func TestProcessResubmissionAfterDecision(t *testing.T) {
	svc, repo := newIngestionFixture(t)

	payload := `{"id":42,"name":"Widget","price":9.99,"quantity":3}`
	require.NoError(t, svc.Process(context.Background(), inboundMessage(0, payload)))

	// decide the first submission
	pending, err := repo.FindPendingByProductID(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, pending)
	reviewer := "Admin"
	pending.Status = domain.StatusApproved
	pending.ReviewedBy = &reviewer
	require.NoError(t, repo.MarkReviewed(context.Background(), pending))

	// a resubmission under the same productId opens a fresh review cycle
	require.NoError(t, svc.Process(context.Background(), inboundMessage(1, payload)))
	assert.Equal(t, 2, repo.len())

	fresh, err := repo.FindPendingByProductID(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.NotEqual(t, pending.ID, fresh.ID)
}
