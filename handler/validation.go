package handler

import (
	"errors"
	"net/http"

	"github.com/CCA-SociedadeAdvogados/legalhub-backend/model"
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/pkg/logger"
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/service"
	"github.com/gin-gonic/gin"
)

type ValidationHandler struct {
	store     service.Store
	pipeline  *service.Pipeline
	extractor *service.ExtractorService
	docs      *service.DocumentStore
}

func NewValidationHandler(store service.Store, pipeline *service.Pipeline, extractor *service.ExtractorService, docs *service.DocumentStore) *ValidationHandler {
	return &ValidationHandler{
		store:     store,
		pipeline:  pipeline,
		extractor: extractor,
		docs:      docs,
	}
}

// RequestValidation asks the extraction service for the next pass the
// contract needs: a canonical verification when a job is awaiting one,
// otherwise a fresh draft reading.
func (h *ValidationHandler) RequestValidation(c *gin.Context) {
	contract, ok := tenantContract(c, h.store)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if contract.Filename == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Contract has no document to extract"})
		return
	}

	state, err := h.pipeline.Validation(ctx, contract.ID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	kind := model.KindDraft
	if state.Job != nil && !state.Job.Status.IsTerminal() {
		kind = model.KindCanonical
	}

	// Presigned URLs expire; mint a fresh one per extraction request.
	objectName := service.ObjectName(contract.Tenant, contract.ID, contract.Filename)
	docURL, err := h.docs.PresignedURL(ctx, objectName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate URL: " + err.Error()})
		return
	}

	taskID, err := h.extractor.RequestExtraction(ctx, docURL, kind, contract.ID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"requested": kind,
		"task_id":   taskID,
	}
	if kind == model.KindCanonical {
		resp["job_id"] = state.Job.ID
	}
	c.JSON(http.StatusAccepted, resp)
}

// GetValidation returns the contract's validation status, its most
// recent job and that job's field diffs.
func (h *ValidationHandler) GetValidation(c *gin.Context) {
	contract, ok := tenantContract(c, h.store)
	if !ok {
		return
	}

	state, err := h.pipeline.Validation(c.Request.Context(), contract.ID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

type CallbackRequest struct {
	Checksum string `json:"checksum" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

// Callback receives extraction results. The checksum is verified before
// anything is trusted; the uid under the hash is our contract ID.
func (h *ValidationHandler) Callback(c *gin.Context) {
	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := service.ParseResult(req.Content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid content format"})
		return
	}

	if !h.extractor.VerifyCallback(req.Checksum, req.Content, result.DataID) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Checksum verification failed"})
		return
	}

	ctx := logger.WithContract(c.Request.Context(), result.DataID)
	extraction := result.Extraction()

	switch extraction.Kind {
	case model.KindDraft:
		_, err = h.pipeline.StartValidation(ctx, result.DataID, extraction)
		if errors.Is(err, model.ErrExtractionFailure) {
			// The failed draft is recorded on the contract; the callback
			// itself did its job.
			err = nil
		}
	case model.KindCanonical:
		jobID := result.JobID
		if jobID == "" {
			state, verr := h.pipeline.Validation(ctx, result.DataID)
			if verr != nil || state.Job == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "No validation job for contract"})
				return
			}
			jobID = state.Job.ID
		}
		err = h.pipeline.AttachCanonical(ctx, jobID, extraction)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown extraction kind"})
		return
	}

	if err != nil {
		logger.Error(ctx, "callback processing failed", "kind", extraction.Kind, "error", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Callback received"})
}
