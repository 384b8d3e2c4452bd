package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"google.golang.org/api/gmail/v1"
)

// Notifier is the outbound channel for reminders, feedback requests and
// reports. Implementations must be safe for concurrent use.
type Notifier interface {
	SendEmail(to, subject, body string) error
	SendSlack(text string) error
}

// MockNotifier prints to the log instead of sending anything. Default for
// local dev so the whole pipeline runs without credentials.
type MockNotifier struct{}

func (MockNotifier) SendEmail(to, subject, body string) error {
	log.Printf("\n=== MOCK EMAIL ===\nTO: %s\nSUBJECT: %s\n%s\n=== /MOCK EMAIL ===\n", to, subject, body)
	return nil
}

func (MockNotifier) SendSlack(text string) error {
	log.Printf("\n=== MOCK SLACK ===\n%s\n=== /MOCK SLACK ===\n", text)
	return nil
}

// LiveNotifier sends email through the Gmail API and chat messages through a
// Slack incoming webhook. Either side falls back to the mock when it is not
// configured, so partial setups still work.
type LiveNotifier struct {
	Gmail      *gmail.Service
	WebhookURL string
	HTTP       *http.Client
}

func NewLiveNotifier(gmailSvc *gmail.Service, webhookURL string) *LiveNotifier {
	return &LiveNotifier{
		Gmail:      gmailSvc,
		WebhookURL: webhookURL,
		HTTP:       &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *LiveNotifier) SendEmail(to, subject, body string) error {
	if n.Gmail == nil {
		return MockNotifier{}.SendEmail(to, subject, body)
	}

	raw := fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body)
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString([]byte(raw))}

	return retryNotify(3, 1*time.Second, func() error {
		_, err := n.Gmail.Users.Messages.Send("me", msg).Do()
		return err
	})
}

func (n *LiveNotifier) SendSlack(text string) error {
	if n.WebhookURL == "" {
		return MockNotifier{}.SendSlack(text)
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}

	return retryNotify(3, 1*time.Second, func() error {
		resp, err := n.HTTP.Post(n.WebhookURL, "application/json", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			return fmt.Errorf("slack webhook returned %d", resp.StatusCode)
		}
		return nil
	})
}

// retryNotify executes a function with exponential backoff. Bounded: a dead
// collaborator costs a few retries, never a wedged pipeline.
func retryNotify(attempts int, sleep time.Duration, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		log.Printf("⚠️ Notify error: %v. Retrying in %v...", err, sleep)
		time.Sleep(sleep)
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}
