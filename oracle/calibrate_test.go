package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rook-sec/padoracle/block"
	"github.com/rook-sec/padoracle/events"
)

func TestCalibratePicksMajorityResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct := r.URL.Query().Get("ct")
		// The candidate byte sits at the last byte of the first (forged)
		// block: hex characters [30:32] of the 64-character payload.
		if len(ct) == 64 && ct[30:32] == "2a" { // one specific candidate byte (0x2a) gets the minority response
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	h, err := NewHTTP(HTTPConfig{URLTemplate: srv.URL + "/?ct=CTEXT", Keyword: "CTEXT", Timeout: 5 * time.Second}, hexEncode)
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}

	got, err := Calibrate(context.Background(), h, block.Sixteen, time.Millisecond, 2, events.NopSink{})
	if err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	if got.Status != http.StatusForbidden {
		t.Errorf("Calibrate() chose status %d, want %d (the majority class)", got.Status, http.StatusForbidden)
	}
}

func TestCalibrateFailsWhenIndistinguishable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h, err := NewHTTP(HTTPConfig{URLTemplate: srv.URL + "/?ct=CTEXT", Keyword: "CTEXT", Timeout: 5 * time.Second}, hexEncode)
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}

	_, err = Calibrate(context.Background(), h, block.Sixteen, time.Millisecond, 2, events.NopSink{})
	if err == nil {
		t.Fatal("expected calibration to fail when every response looks identical")
	}
}
