package logger

import (
	"testing"

	"github.com/shubh389/College-ti/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		wantErr bool
	}{
		{"json", config.LogConfig{Level: "info", Format: "json"}, false},
		{"console", config.LogConfig{Level: "debug", Format: "console"}, false},
		{"非法级别", config.LogConfig{Level: "loud", Format: "json"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLogger err=%v, wantErr=%v", err, tt.wantErr)
			}
			if err == nil && l == nil {
				t.Fatal("logger 不应为 nil")
			}
		})
	}
}

func TestComponent_NilBase(t *testing.T) {
	if Component(nil, "ingest") == nil {
		t.Fatal("nil base 应返回 Nop logger")
	}
}
