package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func doRequest(t *testing.T, router *chi.Mux, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return doAuthedRequest(t, router, method, path, body, "")
}

func doAuthedRequest(t *testing.T, router *chi.Mux, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// decodeEnvelope unwraps the {"success": ..., <key>: ...} response envelope.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func entityFromEnvelope(t *testing.T, rr *httptest.ResponseRecorder, key string) map[string]interface{} {
	t.Helper()
	resp := decodeEnvelope(t, rr)
	if resp["success"] != true {
		t.Fatalf("expected success envelope, got %v", resp)
	}
	entity, ok := resp[key].(map[string]interface{})
	if !ok {
		t.Fatalf("envelope missing %q: %v", key, resp)
	}
	return entity
}

func listFromEnvelope(t *testing.T, rr *httptest.ResponseRecorder, key string) []interface{} {
	t.Helper()
	resp := decodeEnvelope(t, rr)
	if resp["success"] != true {
		t.Fatalf("expected success envelope, got %v", resp)
	}
	list, ok := resp[key].([]interface{})
	if !ok {
		t.Fatalf("envelope missing list %q: %v", key, resp)
	}
	return list
}
