package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "edipulse/internal/errors"
)

type analyzeForm struct {
	TopN    int    `form:"top_n" validate:"gte=1,lte=100"`
	Measure string `form:"measure" validate:"omitempty,oneof=documents revenue"`
	Mode    string `form:"on_parse_error" validate:"required"`
}

func TestValidator_ValidateStruct(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		form    analyzeForm
		fields  []string
		message string
	}{
		{
			name: "valid",
			form: analyzeForm{TopN: 10, Measure: "documents", Mode: "skip"},
		},
		{
			name:    "top_n too large",
			form:    analyzeForm{TopN: 500, Mode: "skip"},
			fields:  []string{"top_n"},
			message: "top_n must be less than or equal to 100",
		},
		{
			name:    "unknown measure",
			form:    analyzeForm{TopN: 5, Measure: "volume", Mode: "skip"},
			fields:  []string{"measure"},
			message: "measure must be one of: documents, revenue",
		},
		{
			name:   "several fields",
			form:   analyzeForm{TopN: 0},
			fields: []string{"top_n", "on_parse_error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.form)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

			details, ok := apiErr.Details.([]apierrors.ValidationError)
			require.True(t, ok)
			got := make([]string, 0, len(details))
			for _, d := range details {
				got = append(got, d.Field)
			}
			assert.Equal(t, tt.fields, got)
			if tt.message != "" {
				assert.Equal(t, tt.message, details[0].Message)
			}
		})
	}
}

func TestValidator_NonStruct(t *testing.T) {
	err := NewValidator().ValidateStruct("not a struct")

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "INVALID_REQUEST", apiErr.ErrorCode)
}

func TestContentTypeValidator(t *testing.T) {
	h := ContentTypeValidator(apierrors.NewErrorHandler(nil, false), "multipart/form-data")(http.HandlerFunc(okHandler))

	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
		code        string
	}{
		{"multipart with boundary", http.MethodPost, "multipart/form-data; boundary=xyz", http.StatusOK, ""},
		{"case insensitive", http.MethodPost, "Multipart/Form-Data; boundary=xyz", http.StatusOK, ""},
		{"get skips check", http.MethodGet, "", http.StatusOK, ""},
		{"missing header", http.MethodPost, "", http.StatusBadRequest, "MISSING_CONTENT_TYPE"},
		{"json rejected", http.MethodPost, "application/json", http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/analyze", strings.NewReader(""))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.code != "" {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.code, body["error_code"])
			}
		})
	}
}
