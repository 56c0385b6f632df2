package repo

import (
	"context"

	"github.com/Beka01247/product-approvals/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApprovalRepository is the durable record of approval entities. All write
// methods are safe to call inside a TransactionManager scope; review
// transitions rely on that to pair a mutation with a feedback publish.
type ApprovalRepository interface {
	Insert(ctx context.Context, record *domain.ApprovalRecord) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ApprovalRecord, error)

	// FindPendingByProductID returns the Pending record for a product, or
	// (nil, nil) when there is none. At most one can exist at a time.
	FindPendingByProductID(ctx context.Context, productID int64) (*domain.ApprovalRecord, error)

	// MarkReviewed writes the record's reviewed fields, conditional on the
	// stored status still being Pending. Returns domain.ErrInvalidState when
	// a concurrent transition got there first.
	MarkReviewed(ctx context.Context, record *domain.ApprovalRecord) error

	// Read-only surface for the presentation layer.
	ListByStatus(ctx context.Context, status *domain.ApprovalStatus) ([]domain.ApprovalRecord, error)
	CountByStatus(ctx context.Context) ([]domain.StatusCount, error)
	CountByRejectionReason(ctx context.Context) ([]domain.ReasonCount, error)
	CountReceivedByDay(ctx context.Context) ([]domain.DailyCount, error)
	CountReviewedByDay(ctx context.Context, status domain.ApprovalStatus) ([]domain.DailyCount, error)
}

// TransactionManager runs fn inside a single store transaction: fn returning
// an error aborts every store write made through its context, nil commits
// them.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
