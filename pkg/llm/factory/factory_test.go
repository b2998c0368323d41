package factory

import (
	"testing"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name         string
		providerType string
		wantErr      bool
	}{
		{name: "huggingface", providerType: "huggingface", wantErr: false},
		{name: "ollama", providerType: "ollama", wantErr: false},
		{name: "unknown", providerType: "openai", wantErr: true},
		{name: "empty", providerType: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.providerType, "", "", "")
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider failed: %v", err)
			}
			if p == nil {
				t.Fatal("nil provider")
			}
		})
	}
}
