// Package automation is the boundary with the external automation
// engine. User-originated operations are serialized into commands and
// forwarded; the engine later re-enters the API with the shared secret
// and the same operation runs directly.
package automation

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"facturation-backend/apperrors"
	"facturation-backend/logger"
)

// webhookPaths maps operation names to the webhook paths the engine
// exposes. Operations missing here fall back to hyphenation.
var webhookPaths = map[string]string{
	"devis_create":    "devis-created",
	"devis_send":      "devis-sent",
	"devis_accept":    "devis-accepted",
	"devis_delete":    "devis-deleted",
	"bdc_create":      "bdc-created",
	"bdc_validate":    "bdc-validated",
	"bdc_delete":      "bdc-deleted",
	"proforma_create": "proforma-created",
	"proforma_send":   "proforma-sent",
	"proforma_accept": "proforma-accepted",
	"proforma_delete": "proforma-deleted",
	"facture_pay":     "invoice-paid",
	"facture_overdue": "invoice-overdue",
}

// Command is the envelope posted to the engine.
type Command struct {
	Event     string         `json:"event"`
	TenantID  string         `json:"tenantId"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

type Client struct {
	baseURL string
	httpc   *http.Client
}

// Default is the process-wide client, set at startup.
var Default *Client

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

func webhookPath(operation string) string {
	if p, ok := webhookPaths[operation]; ok {
		return p
	}
	return strings.ReplaceAll(operation, "_", "-")
}

// Call forwards one command and returns the engine's synchronous JSON
// response verbatim. Any transport or non-2xx failure is an upstream
// error; the core never retries.
func (c *Client) Call(tenantID, operation string, payload map[string]any) (json.RawMessage, error) {
	log := logger.WithComponent("automation")

	if c == nil || c.baseURL == "" {
		return nil, apperrors.New(apperrors.Upstream, "moteur d'automatisation non configure")
	}

	cmd := Command{
		Event:     operation,
		TenantID:  tenantID,
		Timestamp: time.Now().UTC(),
		Data:      payload,
	}
	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "serialisation de la commande impossible", err)
	}

	url := c.baseURL + "/webhook/" + webhookPath(operation)
	resp, err := c.httpc.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Str("operation", operation).Msg("automation call failed")
		return nil, apperrors.Wrap(apperrors.Upstream, "moteur d'automatisation injoignable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Upstream, "reponse du moteur illisible", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Str("operation", operation).Int("status", resp.StatusCode).Msg("automation returned failure")
		return nil, apperrors.Newf(apperrors.Upstream,
			"le moteur d'automatisation a repondu %d pour %s", resp.StatusCode, operation)
	}
	if len(raw) == 0 {
		raw = []byte(`{}`)
	}
	return raw, nil
}
