package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sahayak-health/beacon/pkg/escalation"
	"github.com/sahayak-health/beacon/pkg/httputil"
)

// channelTimeout bounds one delivery attempt. Notifier timeouts are
// independent per channel; a stuck relay must not hold the dispatcher.
const channelTimeout = 5 * time.Second

// WhatsApp sends guardian notifications. With a relay URL configured it
// POSTs to the relay (a thin bridge in front of the WhatsApp Business API);
// without one it is a log-only stub. Either way the channel is best-effort
// with its own timeout.
type WhatsApp struct {
	apiURL string
	client *http.Client
}

// NewWhatsApp creates the parent channel. apiURL may be empty (log-only).
func NewWhatsApp(apiURL string) *WhatsApp {
	return &WhatsApp{
		apiURL: apiURL,
		client: httputil.Client(httputil.TierFast),
	}
}

type whatsappPayload struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// Send delivers one message to a parent contact.
func (w *WhatsApp) Send(ctx context.Context, phone, message string) (escalation.Delivery, error) {
	if w.apiURL == "" {
		log.Printf("[whatsapp] stub delivery to %s: %s", maskPhone(phone), message)
		return escalation.Delivery{
			Channel: "parent_whatsapp",
			Status:  "stubbed",
			Detail:  "no relay configured, logged only",
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, channelTimeout)
	defer cancel()

	body, err := json.Marshal(whatsappPayload{To: phone, Body: message})
	if err != nil {
		return escalation.Delivery{}, fmt.Errorf("whatsapp: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.apiURL, bytes.NewReader(body))
	if err != nil {
		return escalation.Delivery{}, fmt.Errorf("whatsapp: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return escalation.Delivery{}, fmt.Errorf("whatsapp: relay request: %w", err)
	}
	defer httputil.DrainAndClose(resp.Body)

	if resp.StatusCode/100 != 2 {
		errBody, _ := httputil.ReadErrorBody(resp.Body)
		return escalation.Delivery{}, fmt.Errorf("whatsapp: relay %d: %s", resp.StatusCode, string(errBody))
	}

	log.Printf("[whatsapp] delivered to %s via relay", maskPhone(phone))
	return escalation.Delivery{Channel: "parent_whatsapp", Status: "sent"}, nil
}

// maskPhone keeps the last four digits for log correlation.
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return "****" + phone[len(phone)-4:]
}
