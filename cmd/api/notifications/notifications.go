package notifications

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/book-exchange/cmd/api/book"
)

const (
	topicExchangeRequested = "Exchange_requested"
	topicExchangeResponded = "Exchange_responded"
	topicExchangeCompleted = "Exchange_completed"
)

var ErrNotificationFailed = errors.New("notification not accepted by ntfy")

// Ntfy publishes exchange events as plain-text ntfy messages. Each event
// kind goes to its own topic, "<baseURL>_<topic>".
type Ntfy struct {
	baseURL string
	enabled bool
	client  *http.Client
}

func NewNtfy(enableNotifications bool, notificationsBaseURL string, client *http.Client) *Ntfy {
	if client == nil {
		client = &http.Client{}
	}
	return &Ntfy{
		baseURL: strings.TrimRight(notificationsBaseURL, "/"),
		enabled: enableNotifications,
		client:  client,
	}
}

func (ntf *Ntfy) ExchangeRequested(ctx context.Context, e book.Exchange) error {
	return ntf.publish(ctx, topicExchangeRequested,
		fmt.Sprintf("Exchange requested:\nBook: %s\nRequester: %s\nOwner: %s", e.BookTitle, e.RequesterName, e.ProviderName))
}

func (ntf *Ntfy) ExchangeResponded(ctx context.Context, e book.Exchange) error {
	return ntf.publish(ctx, topicExchangeResponded,
		fmt.Sprintf("Exchange %s:\nBook: %s\nRequester: %s\nOwner: %s", strings.ToLower(string(e.Status)), e.BookTitle, e.RequesterName, e.ProviderName))
}

func (ntf *Ntfy) ExchangeCompleted(ctx context.Context, e book.Exchange) error {
	return ntf.publish(ctx, topicExchangeCompleted,
		fmt.Sprintf("Exchange completed:\nBook: %s\nNew owner: %s", e.BookTitle, e.RequesterName))
}

/* Posts the message to the topic. Disabled notifiers send nothing. */
func (ntf *Ntfy) publish(ctx context.Context, topic, message string) error {
	if !ntf.enabled {
		return nil
	}
	url := ntf.baseURL + "_" + topic
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("error delivering message to topic (%s): %w", url, err)
	}
	resp, err := ntf.client.Do(req)
	if err != nil {
		return fmt.Errorf("error delivering message to topic (%s): %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("error delivering message to topic (%s), status %d: %w", url, resp.StatusCode, ErrNotificationFailed)
	}
	return nil
}
