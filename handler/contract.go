package handler

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/CCA-SociedadeAdvogados/legalhub-backend/deadline"
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/middleware"
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/model"
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/pkg/logger"
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Extractor is the slice of the extraction client the contract handler
// needs: requesting a read of a stored document.
type Extractor interface {
	RequestExtraction(ctx context.Context, documentURL string, kind model.ExtractionKind, contractID string) (string, error)
}

type ContractHandler struct {
	store     service.Store
	ledger    *service.Ledger
	docs      *service.DocumentStore
	extractor Extractor
}

func NewContractHandler(store service.Store, ledger *service.Ledger, docs *service.DocumentStore, extractor Extractor) *ContractHandler {
	return &ContractHandler{
		store:     store,
		ledger:    ledger,
		docs:      docs,
		extractor: extractor,
	}
}

// Upload receives a contract document, stores it, opens the contract in
// draft with its criacao event, and asks the extraction service for a
// draft reading.
func (h *ContractHandler) Upload(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" && ext != ".docx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF and DOCX files are allowed"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if ext == ".pdf" {
			contentType = "application/pdf"
		} else {
			contentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
		}
	}

	title := c.PostForm("title")
	if title == "" {
		title = strings.TrimSuffix(header.Filename, ext)
	}

	contractID := uuid.New().String()
	objectName := service.ObjectName(tenant, contractID, header.Filename)

	ctx := c.Request.Context()
	if err := h.docs.UploadDocument(ctx, objectName, file, header.Size, contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload document: " + err.Error()})
		return
	}

	docURL, err := h.docs.PresignedURL(ctx, objectName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate URL: " + err.Error()})
		return
	}

	now := time.Now()
	contract := &model.Contract{
		ID:               contractID,
		Tenant:           tenant,
		Title:            title,
		Filename:         header.Filename,
		DocumentURL:      docURL,
		State:            model.StateDraft,
		ValidationStatus: model.ValidationNone,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := h.store.CreateContract(ctx, contract); err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to create contract: " + err.Error()})
		return
	}

	if _, err := h.ledger.RecordEvent(ctx, contractID, model.EventCriacao, now, "uploaded "+header.Filename); err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to record creation event: " + err.Error()})
		return
	}

	// The extraction runs out of band; its result arrives via callback.
	go h.requestDraftExtraction(contract, docURL)

	c.JSON(http.StatusOK, gin.H{
		"id":       contractID,
		"title":    title,
		"filename": header.Filename,
		"state":    model.StateDraft,
	})
}

func (h *ContractHandler) requestDraftExtraction(contract *model.Contract, docURL string) {
	ctx := logger.WithContract(context.Background(), contract.ID)

	taskID, err := h.extractor.RequestExtraction(ctx, docURL, model.KindDraft, contract.ID)
	if err != nil {
		logger.Error(ctx, "draft extraction request failed", "error", err)
		return
	}
	logger.Info(ctx, "draft extraction requested", "task_id", taskID)
}

// List returns all contracts for the current tenant
func (h *ContractHandler) List(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	contracts, err := h.store.ListContracts(c.Request.Context(), tenant)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contracts": contracts})
}

// Get returns a single contract
func (h *ContractHandler) Get(c *gin.Context) {
	contract, ok := h.tenantContract(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, contract)
}

type RecordEventRequest struct {
	EventType  string `json:"event_type" binding:"required"`
	OccurredAt string `json:"occurred_at"`
	Note       string `json:"note"`
}

// RecordEvent appends a lifecycle event to the contract's ledger and
// applies its state effect.
func (h *ContractHandler) RecordEvent(c *gin.Context) {
	contract, ok := h.tenantContract(c)
	if !ok {
		return
	}

	var req RecordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	occurredAt := time.Now()
	if req.OccurredAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "occurred_at must be RFC 3339"})
			return
		}
		occurredAt = parsed
	}

	event, err := h.ledger.RecordEvent(c.Request.Context(), contract.ID, model.EventType(req.EventType), occurredAt, req.Note)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	updated, err := h.store.GetContract(c.Request.Context(), contract.ID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event": event,
		"state": updated.State,
	})
}

// ListEvents returns the contract's event history, newest first.
func (h *ContractHandler) ListEvents(c *gin.Context) {
	contract, ok := h.tenantContract(c)
	if !ok {
		return
	}

	events, err := h.ledger.ListEvents(c.Request.Context(), contract.ID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// AllowedEvents returns the event kinds legal in the contract's current
// state, for the UI to offer.
func (h *ContractHandler) AllowedEvents(c *gin.Context) {
	contract, ok := h.tenantContract(c)
	if !ok {
		return
	}

	allowed, err := h.ledger.AllowedEvents(c.Request.Context(), contract.ID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":          contract.State,
		"allowed_events": allowed,
	})
}

// Deadline returns the contract's next deadline, if any.
func (h *ContractHandler) Deadline(c *gin.Context) {
	contract, ok := h.tenantContract(c)
	if !ok {
		return
	}

	next := deadline.NextDeadline(contract, time.Now())
	if next == nil {
		c.JSON(http.StatusOK, gin.H{"deadline": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deadline": next})
}

// NoticeWindow returns the renewal-notice window, if defined.
func (h *ContractHandler) NoticeWindow(c *gin.Context) {
	contract, ok := h.tenantContract(c)
	if !ok {
		return
	}

	window := deadline.NoticeWindow(contract, time.Now())
	if window == nil {
		c.JSON(http.StatusOK, gin.H{"notice_window": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notice_window": window})
}

func (h *ContractHandler) tenantContract(c *gin.Context) (*model.Contract, bool) {
	return tenantContract(c, h.store)
}

// tenantContract loads the path contract and enforces tenant scoping.
// A contract from another tenant reads as not found.
func tenantContract(c *gin.Context, store service.Store) (*model.Contract, bool) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	contract, err := store.GetContract(c.Request.Context(), id)
	if err != nil || contract.Tenant != tenant {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return nil, false
	}
	return contract, true
}
