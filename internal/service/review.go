package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Beka01247/product-approvals/internal/domain"
	"github.com/Beka01247/product-approvals/internal/queue"
	"github.com/Beka01247/product-approvals/internal/repo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ReviewService drives Pending records through their single terminal
// transition. Store mutation and feedback publish form one atomic unit: the
// publish runs inside the transaction, so a publish failure rolls the
// mutation back and the record stays Pending.
type ReviewService struct {
	approvalRepo  repo.ApprovalRepository
	txManager     repo.TransactionManager
	publisher     queue.Publisher
	feedbackTopic string
	bulkPacing    time.Duration
	logger        *zap.SugaredLogger
}

func NewReviewService(
	approvalRepo repo.ApprovalRepository,
	txManager repo.TransactionManager,
	publisher queue.Publisher,
	feedbackTopic string,
	bulkPacing time.Duration,
	logger *zap.SugaredLogger,
) *ReviewService {
	return &ReviewService{
		approvalRepo:  approvalRepo,
		txManager:     txManager,
		publisher:     publisher,
		feedbackTopic: feedbackTopic,
		bulkPacing:    bulkPacing,
		logger:        logger,
	}
}

func (s *ReviewService) Approve(ctx context.Context, id primitive.ObjectID, reviewer, comments string) error {
	return s.review(ctx, id, domain.StatusApproved, "", reviewer, comments)
}

func (s *ReviewService) Reject(ctx context.Context, id primitive.ObjectID, reason, reviewer, comments string) error {
	// validated before anything is loaded, mutated or published
	if strings.TrimSpace(reason) == "" {
		return domain.ErrEmptyRejectionReason
	}

	return s.review(ctx, id, domain.StatusRejected, reason, reviewer, comments)
}

func (s *ReviewService) review(ctx context.Context, id primitive.ObjectID, target domain.ApprovalStatus, reason, reviewer, comments string) error {
	return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		record, err := s.approvalRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Infow("review refused, record not found", "record_id", id.Hex())
			}
			return err
		}

		if record.Status != domain.StatusPending {
			s.logger.Infow("review refused, record already reviewed",
				"record_id", id.Hex(), "product_id", record.ProductID, "status", record.Status)
			return domain.ErrInvalidState
		}

		now := time.Now().UTC()
		record.Status = target
		record.ReviewedAt = &now
		record.ReviewedBy = &reviewer
		if reason != "" {
			record.RejectionReason = &reason
		}
		if comments != "" {
			record.Comments = &comments
		}

		if err := s.approvalRepo.MarkReviewed(ctx, record); err != nil {
			if errors.Is(err, domain.ErrInvalidState) {
				// a concurrent transition committed first
				s.logger.Infow("review refused, record already reviewed",
					"record_id", id.Hex(), "product_id", record.ProductID)
			}
			return err
		}

		event := domain.NewFeedbackEvent(record)
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal feedback event: %w", err)
		}

		key := []byte(strconv.FormatInt(record.ProductID, 10))
		if err := s.publisher.Publish(ctx, s.feedbackTopic, key, payload); err != nil {
			s.logger.Errorw("feedback publish failed, rolling back review",
				"record_id", id.Hex(), "product_id", record.ProductID, "status", target, "error", err)
			return fmt.Errorf("%w: %v", domain.ErrPublishFailed, err)
		}

		s.logger.Infow("review decision recorded",
			"record_id", id.Hex(), "product_id", record.ProductID, "status", target, "reviewed_by", reviewer)

		return nil
	})
}

type BulkItemFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BulkResult partitions a bulk operation's ids: Succeeded transitioned,
// Skipped were no longer Pending (a no-op, not an error), Failed hit a real
// fault and may be retried.
type BulkResult struct {
	Succeeded []string          `json:"succeeded"`
	Skipped   []string          `json:"skipped"`
	Failed    []BulkItemFailure `json:"failed"`
}

// BulkApprove approves each id in its own atomic unit, strictly in order. A
// failure on one id never stops the rest. The pacing delay between items only
// bounds the outbound publish rate.
func (s *ReviewService) BulkApprove(ctx context.Context, ids []primitive.ObjectID, reviewer string) BulkResult {
	result := BulkResult{
		Succeeded: []string{},
		Skipped:   []string{},
		Failed:    []BulkItemFailure{},
	}

	for i, id := range ids {
		if i > 0 && s.bulkPacing > 0 {
			time.Sleep(s.bulkPacing)
		}

		err := s.Approve(ctx, id, reviewer, "")
		switch {
		case err == nil:
			result.Succeeded = append(result.Succeeded, id.Hex())
		case errors.Is(err, domain.ErrInvalidState):
			result.Skipped = append(result.Skipped, id.Hex())
		default:
			result.Failed = append(result.Failed, BulkItemFailure{
				ID:     id.Hex(),
				Reason: err.Error(),
			})
		}
	}

	s.logger.Infow("bulk approve finished",
		"total", len(ids),
		"succeeded", len(result.Succeeded),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
	)

	return result
}
