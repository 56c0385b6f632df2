package domain

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "Pending"
	StatusApproved ApprovalStatus = "Approved"
	StatusRejected ApprovalStatus = "Rejected"
)

// Terminal reports whether the status is absorbing: a record in a terminal
// status is never mutated again.
func (s ApprovalStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseApprovalStatus maps a user-supplied status name, in any casing, to
// its canonical form.
func ParseApprovalStatus(raw string) (ApprovalStatus, error) {
	switch strings.ToLower(raw) {
	case "pending":
		return StatusPending, nil
	case "approved":
		return StatusApproved, nil
	case "rejected":
		return StatusRejected, nil
	default:
		return "", fmt.Errorf("unknown approval status %q", raw)
	}
}

// ReceivedProduct is the inbound "new product" event as the producer
// publishes it.
type ReceivedProduct struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Price        float64   `json:"price"`
	Description  string    `json:"description"`
	Quantity     int       `json:"quantity"`
	Manufacturer *string   `json:"manufacturer"`
	CreatedDate  time.Time `json:"createdDate"`
}

// ApprovalRecord is one submitted product under review. Records are created
// Pending by ingestion, moved to a terminal status exactly once by a review
// transition, and never deleted.
type ApprovalRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID int64              `bson:"product_id" json:"product_id"`

	ProductName  string  `bson:"product_name" json:"product_name"`
	Category     string  `bson:"category" json:"category"`
	Price        float64 `bson:"price" json:"price"`
	Description  string  `bson:"description" json:"description"`
	Quantity     int     `bson:"quantity" json:"quantity"`
	Manufacturer *string `bson:"manufacturer,omitempty" json:"manufacturer,omitempty"`

	// RawPayload keeps the inbound message verbatim for audit and replay.
	RawPayload string    `bson:"raw_payload" json:"raw_payload"`
	ReceivedAt time.Time `bson:"received_at" json:"received_at"`

	Status          ApprovalStatus `bson:"status" json:"status"`
	ReviewedAt      *time.Time     `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	ReviewedBy      *string        `bson:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
	RejectionReason *string        `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	Comments        *string        `bson:"comments,omitempty" json:"comments,omitempty"`
}

// NewApprovalRecord builds a Pending record from an inbound product event and
// the raw message it was parsed from.
func NewApprovalRecord(product ReceivedProduct, rawPayload []byte, receivedAt time.Time) *ApprovalRecord {
	return &ApprovalRecord{
		ProductID:    product.ID,
		ProductName:  product.Name,
		Category:     product.Category,
		Price:        product.Price,
		Description:  product.Description,
		Quantity:     product.Quantity,
		Manufacturer: product.Manufacturer,
		RawPayload:   string(rawPayload),
		ReceivedAt:   receivedAt,
		Status:       StatusPending,
	}
}

// StatusCount is a count of records per approval status.
type StatusCount struct {
	Status ApprovalStatus `bson:"_id" json:"status"`
	Count  int64          `bson:"count" json:"count"`
}

// ReasonCount is a count of rejected records per rejection reason.
type ReasonCount struct {
	Reason string `bson:"_id" json:"reason"`
	Count  int64  `bson:"count" json:"count"`
}

// DailyCount is a per-day record count, with the day formatted YYYY-MM-DD.
type DailyCount struct {
	Day   string `bson:"_id" json:"day"`
	Count int64  `bson:"count" json:"count"`
}
