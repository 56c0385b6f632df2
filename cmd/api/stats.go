package main

import (
	"net/http"

	"github.com/Beka01247/product-approvals/internal/domain"
)

type StatisticsResponse struct {
	Total           int64                `json:"total"`
	Pending         int64                `json:"pending"`
	Approved        int64                `json:"approved"`
	Rejected        int64                `json:"rejected"`
	RejectionReason []domain.ReasonCount `json:"rejection_reasons"`
	ReceivedByDay   []domain.DailyCount  `json:"received_by_day"`
	ApprovedByDay   []domain.DailyCount  `json:"approved_by_day"`
	RejectedByDay   []domain.DailyCount  `json:"rejected_by_day"`
}

// statisticsHandler godoc
//
//	@Summary		Approval statistics
//	@Description	Counts by status, rejection reason breakdown, per-day buckets
//	@Tags			approvals
//	@Produce		json
//	@Success		200	{object}	StatisticsResponse
//	@Failure		500	{object}	map[string]string
//	@Router			/approvals/stats [get]
func (app *application) statisticsHandler(w http.ResponseWriter, r *http.Request) {
	statusCounts, err := app.approvalRepo.CountByStatus(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	reasonCounts, err := app.approvalRepo.CountByRejectionReason(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	receivedByDay, err := app.approvalRepo.CountReceivedByDay(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	approvedByDay, err := app.approvalRepo.CountReviewedByDay(r.Context(), domain.StatusApproved)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	rejectedByDay, err := app.approvalRepo.CountReviewedByDay(r.Context(), domain.StatusRejected)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	response := StatisticsResponse{
		RejectionReason: reasonCounts,
		ReceivedByDay:   receivedByDay,
		ApprovedByDay:   approvedByDay,
		RejectedByDay:   rejectedByDay,
	}

	for _, c := range statusCounts {
		response.Total += c.Count
		switch c.Status {
		case domain.StatusPending:
			response.Pending = c.Count
		case domain.StatusApproved:
			response.Approved = c.Count
		case domain.StatusRejected:
			response.Rejected = c.Count
		}
	}

	if err := app.jsonRespone(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}
