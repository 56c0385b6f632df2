package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/Beka01247/product-approvals/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ApprovalRepository struct {
	collection *mongo.Collection
}

func NewApprovalRepository(db *mongo.Database) *ApprovalRepository {
	return &ApprovalRepository{
		collection: db.Collection("approvals"),
	}
}

// Insert and the other write methods take the caller's context as-is: inside
// WithTransaction that context carries the session, and the transaction owns
// its own lifetime.
func (r *ApprovalRepository) Insert(ctx context.Context, record *domain.ApprovalRecord) error {
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to insert approval record: %w", err)
	}

	return nil
}

func (r *ApprovalRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ApprovalRecord, error) {
	var record domain.ApprovalRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get approval record: %w", err)
	}

	return &record, nil
}

func (r *ApprovalRepository) FindPendingByProductID(ctx context.Context, productID int64) (*domain.ApprovalRecord, error) {
	var record domain.ApprovalRecord
	filter := bson.M{
		"product_id": productID,
		"status":     domain.StatusPending,
	}
	err := r.collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pending record: %w", err)
	}

	return &record, nil
}

func (r *ApprovalRepository) MarkReviewed(ctx context.Context, record *domain.ApprovalRecord) error {
	set := bson.M{
		"status":      record.Status,
		"reviewed_at": record.ReviewedAt,
		"reviewed_by": record.ReviewedBy,
	}
	if record.RejectionReason != nil {
		set["rejection_reason"] = record.RejectionReason
	}
	if record.Comments != nil {
		set["comments"] = record.Comments
	}

	// the status filter makes concurrent transitions first-committer-wins
	filter := bson.M{
		"_id":    record.ID,
		"status": domain.StatusPending,
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to mark record reviewed: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrInvalidState
	}

	return nil
}

func (r *ApprovalRepository) ListByStatus(ctx context.Context, status *domain.ApprovalStatus) ([]domain.ApprovalRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if status != nil {
		filter["status"] = *status
	}
	opts := options.Find().SetSort(bson.D{{Key: "received_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []domain.ApprovalRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode approval records: %w", err)
	}

	return records, nil
}

func (r *ApprovalRepository) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count records by status: %w", err)
	}
	defer cursor.Close(ctx)

	var counts []domain.StatusCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode status counts: %w", err)
	}

	return counts, nil
}

func (r *ApprovalRepository) CountByRejectionReason(ctx context.Context) ([]domain.ReasonCount, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": domain.StatusRejected}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$rejection_reason",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count records by rejection reason: %w", err)
	}
	defer cursor.Close(ctx)

	var counts []domain.ReasonCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode rejection reason counts: %w", err)
	}

	return counts, nil
}

func (r *ApprovalRepository) CountReceivedByDay(ctx context.Context) ([]domain.DailyCount, error) {
	return r.countByDay(ctx, "received_at", nil)
}

func (r *ApprovalRepository) CountReviewedByDay(ctx context.Context, status domain.ApprovalStatus) ([]domain.DailyCount, error) {
	return r.countByDay(ctx, "reviewed_at", &status)
}

func (r *ApprovalRepository) countByDay(ctx context.Context, field string, status *domain.ApprovalStatus) ([]domain.DailyCount, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{}
	if status != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"status": *status}}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$" + field,
			}},
			"count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"_id": 1}}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count records by day: %w", err)
	}
	defer cursor.Close(ctx)

	var counts []domain.DailyCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode daily counts: %w", err)
	}

	return counts, nil
}
