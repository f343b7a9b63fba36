package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"octane-arena/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"
)

// WebhookDispatcher POSTs one envelope per recipient to the configured
// webhook, fanning deliveries out concurrently. Individual failures are
// logged and swallowed so one bad recipient never blocks the roster.
type WebhookDispatcher struct {
	url    string
	client *fasthttp.Client
	logger zerolog.Logger
}

// envelope wraps a payload with its addressee for the relay on the other
// side of the webhook.
type envelope struct {
	Recipient domain.PlayerID `json:"recipient"`
	Payload   Payload         `json:"payload"`
}

func NewWebhookDispatcher(url string, logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{
		url: url,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

func (d *WebhookDispatcher) Dispatch(ctx context.Context, recipients []domain.PlayerID, payload Payload) error {
	g := new(errgroup.Group)
	for _, recipient := range recipients {
		g.Go(func() error {
			if err := d.post(ctx, envelope{Recipient: recipient, Payload: payload}); err != nil {
				d.logger.Warn().
					Err(err).
					Str("recipient", string(recipient)).
					Str("match_id", payload.MatchID).
					Str("kind", string(payload.Kind)).
					Msg("notification delivery failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	d.logger.Debug().
		Str("kind", string(payload.Kind)).
		Str("match_id", payload.MatchID).
		Int("recipients", len(recipients)).
		Msg("notification batch dispatched")
	return nil
}

func (d *WebhookDispatcher) post(ctx context.Context, env envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(d.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if deadline, ok := ctx.Deadline(); ok {
		err = d.client.DoDeadline(req, resp, deadline)
	} else {
		err = d.client.Do(req, resp)
	}
	if err != nil {
		return err
	}

	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return fmt.Errorf("webhook returned %d", code)
	}
	return nil
}
