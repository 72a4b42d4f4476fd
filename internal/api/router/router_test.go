package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/shubh389/College-ti/config"
	"github.com/shubh389/College-ti/internal/api/handler"
	"github.com/shubh389/College-ti/internal/service"
	"github.com/shubh389/College-ti/internal/source"
)

const testRoster = "TIG00001 Asha Rao CSE TINT 2025-08 20  TIG00002 Ravi Kumar CSE TINT 2025-08 18  TIG00003 Sai Patel BSH TINT 2025-08 17"

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			MaxBodyBytes: 1 << 20,
			RateLimit:    config.RateLimitConfig{Requests: 10, Window: time.Minute},
		},
	}
	logger := zap.NewNop()
	fetcher := source.NewFetcher(source.FetcherConfig{}, nil, logger)
	svc := service.NewService(cfg, fetcher, source.DefaultChain(logger), "", logger)
	return Setup(cfg, handler.NewHandler(svc), nil, logger)
}

func TestSetup_Health(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("响应应携带 X-Request-ID")
	}
}

func TestSetup_ImportThenQuery(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/import/roster", strings.NewReader(testRoster))
	req.Header.Set("Content-Type", "text/plain")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("导入期望 200，实际 %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/departments", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	var body struct {
		Data struct {
			List []json.RawMessage `json:"list"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if len(body.Data.List) != 2 {
		t.Errorf("期望 2 个部门，实际 %d", len(body.Data.List))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/export/department-people", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("导出期望 200，实际 %d", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "PK") {
		t.Error("导出内容应为 xlsx")
	}
}

func TestSetup_SyncWithoutSource(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/import/sync", nil))
	if w.Code != http.StatusConflict {
		t.Errorf("未配置来源期望 409，实际 %d", w.Code)
	}
}
