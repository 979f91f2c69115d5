package telegram

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookPoller is a telebot.Poller fed by the shared HTTP server. Requests
// are refused with 503 until Poll has registered the webhook and after it
// stops, so Telegram keeps them for a retry.
type WebhookPoller struct {
	hook   *telebot.Webhook
	logger *logrus.Entry

	mu      sync.RWMutex
	dest    chan<- telebot.Update
	stopped <-chan struct{}
}

func NewWebhookPoller(publicURL, secret string, logger *logrus.Entry) *WebhookPoller {
	return &WebhookPoller{
		hook: &telebot.Webhook{
			SecretToken:    secret,
			AllowedUpdates: []string{"message"},
			Endpoint:       &telebot.WebhookEndpoint{PublicURL: publicURL},
		},
		logger: logger,
	}
}

// Poll registers the webhook with Telegram and accepts updates until stop is
// closed. A failed registration leaves the endpoint refusing updates.
func (p *WebhookPoller) Poll(b *telebot.Bot, dest chan telebot.Update, stop chan struct{}) {
	if err := b.SetWebhook(p.hook); err != nil {
		p.logger.WithError(err).WithField("url", p.hook.Endpoint.PublicURL).Error("Failed to register Telegram webhook")
		return
	}

	p.mu.Lock()
	p.dest, p.stopped = dest, stop
	p.mu.Unlock()
	p.logger.WithField("url", p.hook.Endpoint.PublicURL).Info("Telegram webhook registered")

	<-stop

	p.mu.Lock()
	p.dest, p.stopped = nil, nil
	p.mu.Unlock()
}

// Ready reports whether updates are being accepted.
func (p *WebhookPoller) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dest != nil
}

func (p *WebhookPoller) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if secret := p.hook.SecretToken; secret != "" && r.Header.Get(secretTokenHeader) != secret {
		p.logger.Warn("Webhook request with invalid secret token")
		http.Error(w, "invalid secret token", http.StatusUnauthorized)
		return
	}

	p.mu.RLock()
	dest, stopped := p.dest, p.stopped
	p.mu.RUnlock()
	if dest == nil {
		http.Error(w, "bot is not accepting updates", http.StatusServiceUnavailable)
		return
	}

	var update telebot.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		p.logger.WithError(err).Warn("Cannot decode webhook update")
		http.Error(w, "cannot decode update", http.StatusBadRequest)
		return
	}

	select {
	case dest <- update:
		w.WriteHeader(http.StatusOK)
	case <-stopped:
		http.Error(w, "bot is stopping", http.StatusServiceUnavailable)
	case <-r.Context().Done():
	}
}
