package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"NQFlow/internal/usecase"
	xhttp "NQFlow/pkg/http"
	xlogger "NQFlow/pkg/logger"

	"github.com/labstack/echo/v4"
)

func newHandlerWithoutQueue(t *testing.T) *PipelineEchoHandler {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	// mirrors the DI wiring when redis is disabled: no queue publisher
	return NewPipelineEchoHandler(l,
		usecase.NewSignalsUseCase(nil),
		usecase.NewSummaryUseCase(nil),
		usecase.NewContinuousUseCase(nil),
		nil,
	)
}

func TestRunWithoutQueueReturnsUnavailable(t *testing.T) {
	h := newHandlerWithoutQueue(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/pipeline/run",
		strings.NewReader(`{"from":"2024-12-02","to":"2024-12-03"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Run(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var body xhttp.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, body.Status)
	}
}
