package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// VoiceAdapter submits a call request to a Bland.ai-shaped endpoint.
// The call's final outcome is never read here — it arrives later via
// the webhook ingress — so Dispatch only needs the provider-assigned
// call id back as ExternalRef.
type VoiceAdapter struct {
	BaseURL    string
	APIKey     string
	WebhookURL string
	HTTPClient *http.Client
}

type blandCallRequest struct {
	PhoneNumber           string `json:"phone_number"`
	Task                  string `json:"task"`
	Voice                 string `json:"voice"`
	WaitForGreeting       bool   `json:"wait_for_greeting"`
	Record                bool   `json:"record"`
	Webhook               string `json:"webhook"`
	MaxDuration           int    `json:"max_duration"`
	Language              string `json:"language"`
	InterruptionThreshold int    `json:"interruption_threshold"`
	VoicemailAction       string `json:"voicemail_action"`
	VoicemailMessage      string `json:"voicemail_message"`
}

type blandCallResponse struct {
	CallID string `json:"call_id"`
}

func (a *VoiceAdapter) Dispatch(ctx context.Context, msg Message) Result {
	if a.APIKey == "" {
		return permanent("voice adapter not configured: missing API key")
	}

	payload := blandCallRequest{
		PhoneNumber:           msg.ToPhone,
		Task:                  msg.Script,
		Voice:                 "nat",
		WaitForGreeting:       true,
		Record:                true,
		Webhook:               a.WebhookURL,
		MaxDuration:           5,
		Language:              "en",
		InterruptionThreshold: 100,
		VoicemailAction:       "leave_message",
		VoicemailMessage:      "We'll follow up by email. Talk soon.",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return permanent(fmt.Sprintf("marshal call payload: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/calls", bytes.NewReader(body))
	if err != nil {
		return permanent(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Authorization", a.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := a.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return transient(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return transient(fmt.Sprintf("voice provider error: %d", resp.StatusCode))
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return transient("voice provider rate limited")
	}
	if resp.StatusCode >= 400 {
		return permanent(fmt.Sprintf("voice provider rejected call: %d", resp.StatusCode))
	}

	var decoded blandCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return transient(fmt.Sprintf("decode response: %v", err))
	}
	if decoded.CallID == "" {
		return transient("voice provider returned no call id")
	}

	return sent(decoded.CallID, map[string]string{"provider": "bland_ai"})
}
