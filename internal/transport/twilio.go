package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioClient sends WhatsApp messages through the Twilio Messages API.
// There is no official Twilio Go SDK dependency here; the API is a
// single form-encoded POST with basic auth.
type TwilioClient struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *http.Client
}

// NewTwilioClient creates a client for the given account. fromNumber is
// the WhatsApp-enabled number without the "whatsapp:" prefix.
func NewTwilioClient(accountSID, authToken, fromNumber string) *TwilioClient {
	return &TwilioClient{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		baseURL:    twilioAPIBase,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SendResult is the delivery receipt Twilio returns
type SendResult struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// Send delivers body to recipientID over WhatsApp
func (c *TwilioClient) Send(ctx context.Context, recipientID, body string) error {
	_, err := c.SendWithResult(ctx, recipientID, body)
	return err
}

// SendWithResult delivers body and returns the Twilio receipt
func (c *TwilioClient) SendWithResult(ctx context.Context, recipientID, body string) (*SendResult, error) {
	form := url.Values{}
	form.Set("Body", body)
	form.Set("From", whatsappAddr(c.fromNumber))
	form.Set("To", whatsappAddr(recipientID))

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build twilio request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send twilio message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("twilio returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result SendResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode twilio response: %w", err)
	}
	return &result, nil
}

// whatsappAddr prefixes a number for the WhatsApp channel, leaving
// already-prefixed addresses alone (webhook senders arrive prefixed).
func whatsappAddr(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
