package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"inova/pkg/apierrors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error hides the underlying message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("sql: connection refused"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]any
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if body["message"] != "internal server error" {
			t.Fatalf("expected generic message, got %q", body["message"])
		}
		if body["success"] != false {
			t.Fatalf("expected success=false")
		}
	})

	t.Run("validation error keeps its message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, apierrors.New(apierrors.CodeValidation, "email is required"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]any
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "validation_error" {
			t.Fatalf("expected error code validation_error, got %q", body["error"])
		}
		if body["message"] != "email is required" {
			t.Fatalf("expected message to be preserved, got %q", body["message"])
		}
	})
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, http.StatusCreated, "registration created", map[string]any{"id": 7})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["success"] != true {
		t.Fatalf("expected success=true")
	}
	if body["message"] != "registration created" {
		t.Fatalf("unexpected message %q", body["message"])
	}
	if body["id"] != float64(7) {
		t.Fatalf("expected id 7, got %v", body["id"])
	}
}
