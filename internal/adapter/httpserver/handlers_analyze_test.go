package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/reviewpulse/internal/aspect"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/platform/config"
	apperrors "github.com/pscheid92/reviewpulse/internal/platform/errors"
)

func TestHandleAnalyze_MixedPredictions(t *testing.T) {
	const text = "Great camera, but the charger broke."
	mock := &mockAppService{
		analyzeFn: func(_ context.Context, got string) (aspect.Result, error) {
			assert.Equal(t, text, got)
			return mustDecode(t, got, 3, 0, 0, 0, 0, 0, 0, 0, 0, 1), nil
		},
	}
	srv := newTestServer(t, mock)

	c, rec := newJSONContext(srv, http.MethodPost, "/analyze", `{"text":"Great camera, but the charger broke."}`)
	err := callHandler(srv.handleAnalyze, c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		`{"input_text":"Great camera, but the charger broke.","predictions":{"CAMERA":"POSITIVE","PERFORMANCE":"null","FEATURES":"null","DESIGN":"null","PRICE":"null","SCREEN":"null","BATTERY":"null","GENERAL":"null","STORAGE":"null","SER&ACC":"NEGATIVE"}}`,
		strings.TrimSpace(rec.Body.String()))
}

func TestHandleAnalyze_NothingMentioned(t *testing.T) {
	mock := &mockAppService{
		analyzeFn: func(_ context.Context, text string) (aspect.Result, error) {
			return mustDecode(t, text, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0), nil
		},
	}
	srv := newTestServer(t, mock)

	rec := serve(t, srv, http.MethodPost, "/analyze", `{"text":"ok"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"input_text":"ok","predictions":"0"}`, rec.Body.String())
}

func TestHandleAnalyze_NoHTMLEscaping(t *testing.T) {
	mock := &mockAppService{
		analyzeFn: func(_ context.Context, text string) (aspect.Result, error) {
			return mustDecode(t, text, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2), nil
		},
	}
	srv := newTestServer(t, mock)

	rec := serve(t, srv, http.MethodPost, "/analyze", `{"text":"<b>\"fine\"</b>"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"SER&ACC":"NEUTRAL"`)
	assert.Contains(t, body, `"input_text":"<b>\"fine\"</b>"`)
}

func TestHandleAnalyze_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing text", `{}`},
		{"empty text", `{"text":""}`},
		{"wrong type", `{"text":42}`},
		{"malformed", `{"text":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mock := &mockAppService{
				analyzeFn: func(context.Context, string) (aspect.Result, error) {
					called = true
					return aspect.Result{}, nil
				},
			}
			srv := newTestServer(t, mock)

			rec := serve(t, srv, http.MethodPost, "/analyze", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, called)

			var resp apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, apperrors.TypeValidation, resp.Type)
		})
	}
}

func TestHandleAnalyze_ErrorMapping(t *testing.T) {
	upstream := errors.New("connection refused")
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   apperrors.ErrorType
	}{
		{
			name:       "blank text",
			err:        aspect.ErrEmptyText,
			wantStatus: http.StatusBadRequest,
			wantType:   apperrors.TypeValidation,
		},
		{
			name:       "malformed model output",
			err:        &aspect.MalformedOutputError{SchemaID: "aspects/v1", Reason: "expected 10 outputs, got 3"},
			wantStatus: http.StatusBadGateway,
			wantType:   apperrors.TypeExternal,
		},
		{
			name:       "inference failure",
			err:        &aspect.InferenceError{Cause: upstream},
			wantStatus: http.StatusBadGateway,
			wantType:   apperrors.TypeExternal,
		},
		{
			name: "breaker open",
			err: &aspect.InferenceError{
				Cause: fmt.Errorf("predict: %w: %w", domain.ErrInferenceUnavailable, gobreaker.ErrOpenState),
			},
			wantStatus: http.StatusServiceUnavailable,
			wantType:   apperrors.TypeUnavailable,
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   apperrors.TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAppService{
				analyzeFn: func(context.Context, string) (aspect.Result, error) {
					return aspect.Result{}, tt.err
				},
			}
			srv := newTestServer(t, mock)

			rec := serve(t, srv, http.MethodPost, "/analyze", `{"text":"anything"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantType, resp.Type)
			assert.NotContains(t, rec.Body.String(), "predictions")
		})
	}
}

func TestHandleAnalyze_RateLimited(t *testing.T) {
	mock := &mockAppService{
		analyzeFn: func(_ context.Context, text string) (aspect.Result, error) {
			return mustDecode(t, text, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0), nil
		},
	}
	srv := newTestServer(t, mock, withConfig(&config.Config{
		AnalyzeRateLimit: 0.01,
		AnalyzeRateBurst: 1,
	}))

	first := serve(t, srv, http.MethodPost, "/analyze", `{"text":"a"}`)
	second := serve(t, srv, http.MethodPost, "/analyze", `{"text":"b"}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// Catalog routes are not rate limited.
	other := serve(t, srv, http.MethodGet, "/products", "")
	assert.Equal(t, http.StatusOK, other.Code)
}
