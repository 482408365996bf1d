package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/CCA-SociedadeAdvogados/legalhub-backend/config"
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/model"
)

// ExtractorService is the client for the external AI extraction service.
// The service reads a contract document and returns a field-path → value
// payload with a confidence score, delivered through a signed callback.
type ExtractorService struct {
	config     *config.ExtractorConfig
	httpClient *http.Client
}

// ExtractionTaskRequest is the request to create an extraction task.
type ExtractionTaskRequest struct {
	DocumentURL  string `json:"document_url"`
	Kind         string `json:"kind"` // draft or canonical
	ModelVersion string `json:"model_version"`
	Callback     string `json:"callback,omitempty"`
	Seed         string `json:"seed,omitempty"`
	DataID       string `json:"data_id,omitempty"`
}

// ExtractionTaskResponse is the response from task creation.
type ExtractionTaskResponse struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
	Data    struct {
		TaskID string `json:"task_id"`
	} `json:"data"`
}

// ExtractionCallback is the payload delivered to the callback endpoint.
// Content is the raw JSON of ExtractionResult; Checksum signs it.
type ExtractionCallback struct {
	Checksum string `json:"checksum"`
	Content  string `json:"content"`
}

// ExtractionResult is the content of a callback: the extraction outcome
// for one task.
type ExtractionResult struct {
	TaskID     string          `json:"task_id"`
	DataID     string          `json:"data_id"` // contract ID
	JobID      string          `json:"job_id,omitempty"`
	Kind       string          `json:"kind"` // draft or canonical
	State      string          `json:"state"` // done or failed
	Fields     json.RawMessage `json:"fields,omitempty"`
	Confidence float64         `json:"confidence"`
	ErrorMsg   string          `json:"err_msg,omitempty"`
}

func NewExtractorService(cfg *config.ExtractorConfig) *ExtractorService {
	return &ExtractorService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// RequestExtraction asks the extraction service to read the document and
// produce a payload of the given kind. The result arrives via callback.
func (s *ExtractorService) RequestExtraction(ctx context.Context, documentURL string, kind model.ExtractionKind, contractID string) (string, error) {
	reqBody := ExtractionTaskRequest{
		DocumentURL:  documentURL,
		Kind:         string(kind),
		ModelVersion: s.config.ModelVersion,
		DataID:       contractID,
	}

	if s.config.CallbackURL != "" {
		reqBody.Callback = s.config.CallbackURL
		reqBody.Seed = s.config.Seed
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.APIURL+"/extract/task", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.config.APIToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var result ExtractionTaskResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w, body: %s", err, string(body))
	}

	if result.Code != 0 {
		return "", fmt.Errorf("extractor API error: %s: %w", result.Message, model.ErrExtractionFailure)
	}

	return result.Data.TaskID, nil
}

// VerifyCallback verifies the callback checksum.
// Checksum = SHA256(uid + seed + content), uid being our data_id.
func (s *ExtractorService) VerifyCallback(checksum, content, uid string) bool {
	data := uid + s.config.Seed + content
	hash := sha256.Sum256([]byte(data))
	expected := hex.EncodeToString(hash[:])
	return checksum == expected
}

// SignCallback computes the checksum the extraction service would attach
// for the given content and uid. Shared with tests and local tooling.
func (s *ExtractorService) SignCallback(content, uid string) string {
	hash := sha256.Sum256([]byte(uid + s.config.Seed + content))
	return hex.EncodeToString(hash[:])
}

// ParseResult decodes a callback content string.
func ParseResult(content string) (*ExtractionResult, error) {
	var result ExtractionResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("invalid callback content: %w", err)
	}
	return &result, nil
}

// Extraction converts the result into the stored extraction record. The
// err_msg of a failed task travels on the record so the pipeline can
// surface it instead of silently defaulting.
func (r *ExtractionResult) Extraction() *model.Extraction {
	e := &model.Extraction{
		ContractID: r.DataID,
		Kind:       model.ExtractionKind(r.Kind),
		Payload:    r.Fields,
		Confidence: r.Confidence,
	}
	if r.State == "failed" {
		e.Error = r.ErrorMsg
		if e.Error == "" {
			e.Error = "extraction failed"
		}
	}
	return e
}
