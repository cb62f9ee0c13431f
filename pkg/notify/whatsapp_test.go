package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWhatsAppStubMode(t *testing.T) {
	w := NewWhatsApp("")

	delivery, err := w.Send(context.Background(), "+911234567890", "check in please")
	if err != nil {
		t.Fatal(err)
	}
	if delivery.Status != "stubbed" || delivery.Channel != "parent_whatsapp" {
		t.Errorf("delivery = %+v, want stubbed parent_whatsapp", delivery)
	}
}

func TestWhatsAppRelayDelivery(t *testing.T) {
	var got whatsappPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := NewWhatsApp(srv.URL)
	delivery, err := w.Send(context.Background(), "+911234567890", "check in please")
	if err != nil {
		t.Fatal(err)
	}
	if delivery.Status != "sent" {
		t.Errorf("status = %s, want sent", delivery.Status)
	}
	if got.To != "+911234567890" || got.Body != "check in please" {
		t.Errorf("relay payload = %+v", got)
	}
}

func TestWhatsAppRelayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	w := NewWhatsApp(srv.URL)
	if _, err := w.Send(context.Background(), "+911234567890", "check in please"); err == nil {
		t.Error("expected error on relay 502")
	}
}

func TestMaskPhone(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"+911234567890", "****7890"},
		{"1234", "****"},
		{"", "****"},
	}
	for _, tc := range testCases {
		if got := maskPhone(tc.in); got != tc.want {
			t.Errorf("maskPhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
