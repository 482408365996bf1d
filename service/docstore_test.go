package service

import (
	"testing"

	"github.com/CCA-SociedadeAdvogados/legalhub-backend/config"
)

func TestNewDocumentStore(t *testing.T) {
	cfg := &config.MinioConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "contracts",
		UseSSL:    false,
	}

	// Client construction does not dial; the connection is exercised on
	// the first operation.
	store, err := NewDocumentStore(cfg)
	if err != nil {
		t.Fatalf("NewDocumentStore failed: %v", err)
	}
	if store == nil {
		t.Fatal("Expected non-nil store")
	}
}

func TestObjectName(t *testing.T) {
	tests := []struct {
		name     string
		tenant   string
		contract string
		filename string
		expected string
	}{
		{
			name:     "plain filename",
			tenant:   "cca",
			contract: "c1",
			filename: "contrato.pdf",
			expected: "cca/c1/contrato.pdf",
		},
		{
			name:     "spaces replaced",
			tenant:   "cca",
			contract: "c1",
			filename: "contrato de arrendamento.pdf",
			expected: "cca/c1/contrato_de_arrendamento.pdf",
		},
		{
			name:     "path traversal stripped",
			tenant:   "cca",
			contract: "c1",
			filename: "../../etc/passwd",
			expected: "cca/c1/passwd",
		},
		{
			name:     "empty filename",
			tenant:   "cca",
			contract: "c1",
			filename: "",
			expected: "cca/c1/document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ObjectName(tt.tenant, tt.contract, tt.filename)
			if result != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, result)
			}
		})
	}
}
