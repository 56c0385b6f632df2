package main

import (
	"errors"
	"net/http"

	"github.com/Beka01247/product-approvals/internal/domain"
	"github.com/go-chi/chi"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidID = errors.New("invalid ID format")

const defaultReviewer = "Admin"

type ReviewRequest struct {
	Reviewer string `json:"reviewer"`
	Comments string `json:"comments"`
}

type RejectRequest struct {
	Reviewer        string `json:"reviewer"`
	RejectionReason string `json:"rejectionReason"`
	Comments        string `json:"comments"`
}

type BulkApproveRequest struct {
	IDs      []string `json:"ids" validate:"required,min=1"`
	Reviewer string   `json:"reviewer"`
}

// listApprovalsHandler godoc
//
//	@Summary		List approval records
//	@Description	List approval records, optionally filtered by status
//	@Tags			approvals
//	@Produce		json
//	@Param			filter	query		string	false	"pending | approved | rejected | all"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		400		{object}	map[string]string
//	@Failure		500		{object}	map[string]string
//	@Router			/approvals [get]
func (app *application) listApprovalsHandler(w http.ResponseWriter, r *http.Request) {
	var status *domain.ApprovalStatus

	if filter := r.URL.Query().Get("filter"); filter != "all" {
		s, err := domain.ParseApprovalStatus(filter)
		if err != nil {
			// unknown or missing filter falls back to the review queue
			s = domain.StatusPending
		}
		status = &s
	}

	records, err := app.approvalRepo.ListByStatus(r.Context(), status)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, records); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getApprovalHandler godoc
//
//	@Summary		Get one approval record
//	@Description	Get an approval record by id for review
//	@Tags			approvals
//	@Produce		json
//	@Param			id	path		string	true	"Record ID"
//	@Success		200	{object}	domain.ApprovalRecord
//	@Failure		400	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Failure		500	{object}	map[string]string
//	@Router			/approvals/{id} [get]
func (app *application) getApprovalHandler(w http.ResponseWriter, r *http.Request) {
	id, err := recordIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	record, err := app.approvalRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			app.notFoundError(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, record); err != nil {
		app.internalServerError(w, r, err)
	}
}

// approveHandler godoc
//
//	@Summary		Approve a pending record
//	@Description	Approve a pending record and publish the feedback event
//	@Tags			approvals
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Record ID"
//	@Param			request	body		ReviewRequest	true	"Approval request"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Failure		409		{object}	map[string]string
//	@Failure		502		{object}	map[string]string
//	@Router			/approvals/{id}/approve [post]
func (app *application) approveHandler(w http.ResponseWriter, r *http.Request) {
	id, err := recordIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var req ReviewRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.reviewService.Approve(r.Context(), id, reviewerOrDefault(req.Reviewer), req.Comments); err != nil {
		app.reviewErrorResponse(w, r, err)
		return
	}

	response := map[string]interface{}{
		"success": true,
		"status":  domain.StatusApproved,
	}

	if err := app.jsonRespone(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

// rejectHandler godoc
//
//	@Summary		Reject a pending record
//	@Description	Reject a pending record with a reason and publish the feedback event
//	@Tags			approvals
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Record ID"
//	@Param			request	body		RejectRequest	true	"Rejection request"
//	@Success		200		{object}	map[string]interface{}
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Failure		409		{object}	map[string]string
//	@Failure		502		{object}	map[string]string
//	@Router			/approvals/{id}/reject [post]
func (app *application) rejectHandler(w http.ResponseWriter, r *http.Request) {
	id, err := recordIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var req RejectRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.reviewService.Reject(r.Context(), id, req.RejectionReason, reviewerOrDefault(req.Reviewer), req.Comments)
	if err != nil {
		app.reviewErrorResponse(w, r, err)
		return
	}

	response := map[string]interface{}{
		"success": true,
		"status":  domain.StatusRejected,
	}

	if err := app.jsonRespone(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

// bulkApproveHandler godoc
//
//	@Summary		Approve multiple pending records
//	@Description	Approve each id independently; failures on one id do not stop the rest
//	@Tags			approvals
//	@Accept			json
//	@Produce		json
//	@Param			request	body		BulkApproveRequest	true	"Bulk approval request"
//	@Success		200		{object}	service.BulkResult
//	@Failure		400		{object}	map[string]string
//	@Failure		500		{object}	map[string]string
//	@Router			/approvals/bulk-approve [post]
func (app *application) bulkApproveHandler(w http.ResponseWriter, r *http.Request) {
	var req BulkApproveRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			app.badRequestResponse(w, r, ErrInvalidID)
			return
		}
		ids = append(ids, id)
	}

	result := app.reviewService.BulkApprove(r.Context(), ids, reviewerOrDefault(req.Reviewer))

	if err := app.jsonRespone(w, http.StatusOK, result); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) reviewErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyRejectionReason):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, domain.ErrNotFound):
		app.notFoundError(w, r, err)
	case errors.Is(err, domain.ErrInvalidState):
		app.conflictResponse(w, r, err)
	case errors.Is(err, domain.ErrPublishFailed):
		app.badGatewayResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}

func recordIDParam(r *http.Request) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return primitive.NilObjectID, ErrInvalidID
	}

	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}

	return id, nil
}

func reviewerOrDefault(reviewer string) string {
	// identity resolution is the caller's job; fall back to the fixed
	// reviewer when none is supplied
	if reviewer == "" {
		return defaultReviewer
	}

	return reviewer
}
