package service

import (
	"context"
	"sort"
	"sync"

	"github.com/Beka01247/product-approvals/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeApprovalRepo is an in-memory ApprovalRepository. It hands out copies so
// callers cannot mutate stored records without going through a write method,
// the same way a real store behaves.
type fakeApprovalRepo struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]domain.ApprovalRecord
	getByID int
}

func newFakeApprovalRepo() *fakeApprovalRepo {
	return &fakeApprovalRepo{
		records: make(map[primitive.ObjectID]domain.ApprovalRecord),
	}
}

func (f *fakeApprovalRepo) Insert(_ context.Context, record *domain.ApprovalRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	f.records[record.ID] = *record

	return nil
}

func (f *fakeApprovalRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ApprovalRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getByID++

	record, ok := f.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	return &record, nil
}

func (f *fakeApprovalRepo) FindPendingByProductID(_ context.Context, productID int64) (*domain.ApprovalRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, record := range f.records {
		if record.ProductID == productID && record.Status == domain.StatusPending {
			found := record
			return &found, nil
		}
	}

	return nil, nil
}

func (f *fakeApprovalRepo) MarkReviewed(_ context.Context, record *domain.ApprovalRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.records[record.ID]
	if !ok || stored.Status != domain.StatusPending {
		return domain.ErrInvalidState
	}

	f.records[record.ID] = *record

	return nil
}

func (f *fakeApprovalRepo) ListByStatus(_ context.Context, status *domain.ApprovalStatus) ([]domain.ApprovalRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.ApprovalRecord
	for _, record := range f.records {
		if status == nil || record.Status == *status {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.After(out[j].ReceivedAt) })

	return out, nil
}

func (f *fakeApprovalRepo) CountByStatus(_ context.Context) ([]domain.StatusCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	byStatus := make(map[domain.ApprovalStatus]int64)
	for _, record := range f.records {
		byStatus[record.Status]++
	}

	var out []domain.StatusCount
	for status, count := range byStatus {
		out = append(out, domain.StatusCount{Status: status, Count: count})
	}

	return out, nil
}

func (f *fakeApprovalRepo) CountByRejectionReason(_ context.Context) ([]domain.ReasonCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	byReason := make(map[string]int64)
	for _, record := range f.records {
		if record.Status == domain.StatusRejected && record.RejectionReason != nil {
			byReason[*record.RejectionReason]++
		}
	}

	var out []domain.ReasonCount
	for reason, count := range byReason {
		out = append(out, domain.ReasonCount{Reason: reason, Count: count})
	}

	return out, nil
}

func (f *fakeApprovalRepo) CountReceivedByDay(_ context.Context) ([]domain.DailyCount, error) {
	return nil, nil
}

func (f *fakeApprovalRepo) CountReviewedByDay(_ context.Context, _ domain.ApprovalStatus) ([]domain.DailyCount, error) {
	return nil, nil
}

func (f *fakeApprovalRepo) snapshot() map[primitive.ObjectID]domain.ApprovalRecord {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[primitive.ObjectID]domain.ApprovalRecord, len(f.records))
	for id, record := range f.records {
		out[id] = record
	}

	return out
}

func (f *fakeApprovalRepo) restore(records map[primitive.ObjectID]domain.ApprovalRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.records = records
}

func (f *fakeApprovalRepo) get(id primitive.ObjectID) domain.ApprovalRecord {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.records[id]
}

func (f *fakeApprovalRepo) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.records)
}

// fakeTxManager snapshots the repo before fn and restores it when fn fails,
// mirroring the rollback the real store performs.
type fakeTxManager struct {
	repo *fakeApprovalRepo
}

func (m *fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := m.repo.snapshot()

	if err := fn(ctx); err != nil {
		m.repo.restore(snapshot)
		return err
	}

	return nil
}

type publishedMessage struct {
	topic string
	key   []byte
	value []byte
}

type fakePublisher struct {
	mu        sync.Mutex
	published []publishedMessage
	failWith  error
}

func (p *fakePublisher) Publish(_ context.Context, topic string, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failWith != nil {
		return p.failWith
	}

	p.published = append(p.published, publishedMessage{topic: topic, key: key, value: value})

	return nil
}

func (p *fakePublisher) Ping(_ context.Context) error { return nil }

func (p *fakePublisher) Close() {}

func (p *fakePublisher) events() []publishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]publishedMessage, len(p.published))
	copy(out, p.published)

	return out
}
