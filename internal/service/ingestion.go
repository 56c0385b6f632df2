package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Beka01247/product-approvals/internal/domain"
	"github.com/Beka01247/product-approvals/internal/queue"
	"github.com/Beka01247/product-approvals/internal/repo"
	"go.uber.org/zap"
)

// IngestionService turns inbound "new product" messages into Pending
// approval records, deduplicating redeliveries against the record that is
// still Pending for the same product.
type IngestionService struct {
	approvalRepo repo.ApprovalRepository
	txManager    repo.TransactionManager
	logger       *zap.SugaredLogger
}

func NewIngestionService(
	approvalRepo repo.ApprovalRepository,
	txManager repo.TransactionManager,
	logger *zap.SugaredLogger,
) *IngestionService {
	return &IngestionService{
		approvalRepo: approvalRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// Process parses one inbound message and, in a single transaction, inserts a
// Pending record unless one already exists for the product. A
// domain.ErrMalformedPayload return means the message's offset must not be
// committed; any nil return means the caller may commit it.
func (s *IngestionService) Process(ctx context.Context, msg queue.Message) error {
	var product domain.ReceivedProduct
	if err := json.Unmarshal(msg.Value, &product); err != nil {
		s.logger.Errorw("failed to parse inbound product",
			"offset", msg.Offset, "partition", msg.Partition, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	if product.ID <= 0 || product.Name == "" {
		s.logger.Errorw("inbound product is missing required fields",
			"product_id", product.ID, "offset", msg.Offset, "partition", msg.Partition)
		return fmt.Errorf("%w: missing id or name", domain.ErrMalformedPayload)
	}

	return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.approvalRepo.FindPendingByProductID(ctx, product.ID)
		if err != nil {
			return fmt.Errorf("failed to check for pending record: %w", err)
		}

		// duplicate delivery while the record is still Pending: succeed
		// without inserting
		if existing != nil {
			s.logger.Infow("duplicate product message skipped",
				"product_id", product.ID, "record_id", existing.ID.Hex(), "offset", msg.Offset)
			return nil
		}

		record := domain.NewApprovalRecord(product, msg.Value, time.Now().UTC())
		if err := s.approvalRepo.Insert(ctx, record); err != nil {
			return fmt.Errorf("failed to insert approval record: %w", err)
		}

		s.logger.Infow("new product accepted for review",
			"product_id", product.ID, "record_id", record.ID.Hex(), "offset", msg.Offset)

		return nil
	})
}
