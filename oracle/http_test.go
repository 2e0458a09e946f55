package oracle

import (
	"context"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func hexEncode(b []byte) string {
	return hex.EncodeToString(b)
}

// fakePaddingServer returns 200 for every request whose ciphertext query
// parameter ends in a byte equal to 0x01 (simulating "valid PKCS#7 padding
// of length 1"), and 403 otherwise.
func fakePaddingServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct := r.URL.Query().Get("ct")
		raw, err := hex.DecodeString(ct)
		if err != nil || len(raw) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if raw[len(raw)-1] == 0x01 {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
}

func TestNewHTTPRejectsMissingKeyword(t *testing.T) {
	_, err := NewHTTP(HTTPConfig{
		URLTemplate: "https://example.test/decrypt",
		Keyword:     "CTEXT",
	}, hexEncode)
	if err == nil {
		t.Fatal("expected error when the keyword appears nowhere in the request template")
	}
}

func TestAskValidationBeforeCalibrationErrors(t *testing.T) {
	h, err := NewHTTP(HTTPConfig{
		URLTemplate: "https://example.test/decrypt?ct=CTEXT",
		Keyword:     "CTEXT",
	}, hexEncode)
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}

	_, err = h.AskValidation(context.Background(), []byte{0x01})
	if err != ErrNotCalibrated {
		t.Errorf("AskValidation() error = %v, want ErrNotCalibrated", err)
	}
}

func TestAskValidationClassifiesAgainstSignature(t *testing.T) {
	srv := fakePaddingServer(t)
	defer srv.Close()

	h, err := NewHTTP(HTTPConfig{
		URLTemplate: srv.URL + "/?ct=CTEXT",
		Keyword:     "CTEXT",
		Timeout:     5 * time.Second,
	}, hexEncode)
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}
	h.SetPaddingErrorResponse(CalibrationResponse{Status: http.StatusForbidden})

	valid, err := h.AskValidation(context.Background(), []byte{0xAA, 0x01})
	if err != nil {
		t.Fatalf("AskValidation: %v", err)
	}
	if !valid {
		t.Error("expected padding-valid ciphertext to classify as valid")
	}

	valid, err = h.AskValidation(context.Background(), []byte{0xAA, 0x02})
	if err != nil {
		t.Fatalf("AskValidation: %v", err)
	}
	if valid {
		t.Error("expected padding-invalid ciphertext to classify as invalid")
	}
}

func TestProbeSubstitutesKeywordInHeaderAndBody(t *testing.T) {
	var gotHeader, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Token")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	body := "payload=CTEXT"
	h, err := NewHTTP(HTTPConfig{
		URLTemplate:  srv.URL + "/",
		BodyTemplate: &body,
		Headers:      []Header{{Name: "X-Token", Value: "CTEXT"}},
		Keyword:      "CTEXT",
	}, hexEncode)
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}

	if _, err := h.Probe(context.Background(), []byte{0xDE, 0xAD}); err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if gotHeader != "dead" {
		t.Errorf("header substitution = %q, want %q", gotHeader, "dead")
	}
	if gotBody != "payload=dead" {
		t.Errorf("body substitution = %q, want %q", gotBody, "payload=dead")
	}
}

func TestMethodInferredFromBodyPresence(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h, err := NewHTTP(HTTPConfig{URLTemplate: srv.URL + "/?ct=CTEXT", Keyword: "CTEXT"}, hexEncode)
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}
	if _, err := h.Probe(context.Background(), []byte{0x01}); err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if gotMethod != http.MethodGet {
		t.Errorf("method = %s, want GET when no body template is set", gotMethod)
	}

	body := "ct=CTEXT"
	h2, err := NewHTTP(HTTPConfig{URLTemplate: srv.URL + "/", BodyTemplate: &body, Keyword: "CTEXT"}, hexEncode)
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}
	if _, err := h2.Probe(context.Background(), []byte{0x01}); err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST when a body template is set", gotMethod)
	}
}
