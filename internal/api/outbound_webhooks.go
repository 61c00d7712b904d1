package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/annel0/alien-planet/internal/eventbus"
	"github.com/annel0/alien-planet/internal/logging"
)

// OutboundWebhook - внешний адрес, на который пересылаются игровые события
type OutboundWebhook struct {
	ID           uint64     `json:"id"`
	Name         string     `json:"name" binding:"required"`
	URL          string     `json:"url" binding:"required,url"`
	Secret       string     `json:"secret,omitempty"`
	Events       []string   `json:"events" binding:"required"` // типы событий; "*": все
	Active       bool       `json:"active"`
	Timeout      int        `json:"timeout"` // Таймаут в секундах
	RetryCount   int        `json:"retry_count"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsed     *time.Time `json:"last_used,omitempty"`
	FailureCount int        `json:"failure_count"`
}

// OutboundWebhookEvent - тело запроса к webhook'у
type OutboundWebhookEvent struct {
	EventType string          `json:"event_type"`
	Timestamp int64           `json:"timestamp"`
	ServerID  string          `json:"server_id"`
	SessionID string          `json:"session_id"`
	Tick      string          `json:"tick,omitempty"`
	Data      json.RawMessage `json:"data"`
}

// OutboundWebhookManager подписывается на шину событий и рассылает события
// зарегистрированным webhook'ам. Звуковые подсказки не пересылаются.
type OutboundWebhookManager struct {
	webhooks   map[uint64]*OutboundWebhook
	eventQueue chan OutboundWebhookEvent
	mu         sync.RWMutex
	nextID     uint64
	httpClient *http.Client
	serverID   string
	retryDelay time.Duration
	sub        eventbus.Subscription
	quit       chan struct{}
	closeOnce  sync.Once
}

// NewOutboundWebhookManager создает менеджер и запускает воркер очереди
func NewOutboundWebhookManager(serverID string) *OutboundWebhookManager {
	manager := &OutboundWebhookManager{
		webhooks:   make(map[uint64]*OutboundWebhook),
		eventQueue: make(chan OutboundWebhookEvent, 1000),
		nextID:     1,
		serverID:   serverID,
		retryDelay: time.Second,
		quit:       make(chan struct{}),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	go manager.eventWorker()

	return manager
}

// Attach подписывает менеджер на все игровые события шины, кроме подсказок
func (owm *OutboundWebhookManager) Attach(ctx context.Context, bus eventbus.EventBus) error {
	types := owm.GetEventTypes()
	sub, err := bus.Subscribe(ctx, eventbus.Filter{Types: types}, func(_ context.Context, ev *eventbus.Envelope) {
		owm.SendEnvelope(ev)
	})
	if err != nil {
		return fmt.Errorf("подписка webhook'ов на шину: %w", err)
	}
	owm.sub = sub
	return nil
}

// Close отписывает менеджер от шины и останавливает воркер
func (owm *OutboundWebhookManager) Close() {
	owm.closeOnce.Do(func() {
		if owm.sub != nil {
			owm.sub.Unsubscribe()
		}
		close(owm.quit)
	})
}

// AddWebhook добавляет новый webhook
func (owm *OutboundWebhookManager) AddWebhook(webhook OutboundWebhook) *OutboundWebhook {
	owm.mu.Lock()
	defer owm.mu.Unlock()

	webhook.ID = owm.nextID
	owm.nextID++
	webhook.CreatedAt = time.Now()
	webhook.Active = true

	if webhook.Timeout == 0 {
		webhook.Timeout = 30
	}
	if webhook.RetryCount == 0 {
		webhook.RetryCount = 3
	}

	owm.webhooks[webhook.ID] = &webhook
	cp := webhook
	return &cp
}

// GetWebhooks возвращает копии всех webhook'ов по возрастанию ID
func (owm *OutboundWebhookManager) GetWebhooks() []OutboundWebhook {
	owm.mu.RLock()
	defer owm.mu.RUnlock()

	webhooks := make([]OutboundWebhook, 0, len(owm.webhooks))
	for _, webhook := range owm.webhooks {
		webhooks = append(webhooks, *webhook)
	}
	sort.Slice(webhooks, func(i, j int) bool { return webhooks[i].ID < webhooks[j].ID })
	return webhooks
}

// DeleteWebhook удаляет webhook
func (owm *OutboundWebhookManager) DeleteWebhook(id uint64) bool {
	owm.mu.Lock()
	defer owm.mu.Unlock()

	if _, exists := owm.webhooks[id]; !exists {
		return false
	}
	delete(owm.webhooks, id)
	return true
}

// SendEnvelope ставит событие шины в очередь рассылки
func (owm *OutboundWebhookManager) SendEnvelope(ev *eventbus.Envelope) {
	event := OutboundWebhookEvent{
		EventType: ev.EventType,
		Timestamp: ev.Timestamp.Unix(),
		ServerID:  owm.serverID,
		SessionID: ev.Source,
		Tick:      ev.CorrelationID,
		Data:      json.RawMessage(ev.Payload),
	}

	select {
	case <-owm.quit:
	case owm.eventQueue <- event:
	default:
		logging.Warn("⚠️ очередь webhook'ов переполнена, событие %s пропущено", ev.EventType)
	}
}

// eventWorker обрабатывает события из очереди
func (owm *OutboundWebhookManager) eventWorker() {
	for {
		select {
		case event := <-owm.eventQueue:
			owm.processEvent(event)
		case <-owm.quit:
			return
		}
	}
}

func (owm *OutboundWebhookManager) processEvent(event OutboundWebhookEvent) {
	owm.mu.RLock()
	var webhooks []*OutboundWebhook
	for _, webhook := range owm.webhooks {
		if webhook.Active && isSubscribedToEvent(webhook, event.EventType) {
			webhooks = append(webhooks, webhook)
		}
	}
	owm.mu.RUnlock()

	for _, webhook := range webhooks {
		go owm.sendToWebhook(webhook, event)
	}
}

func isSubscribedToEvent(webhook *OutboundWebhook, eventType string) bool {
	for _, subscribedEvent := range webhook.Events {
		if subscribedEvent == eventType || subscribedEvent == "*" {
			return true
		}
	}
	return false
}

// sendToWebhook отправляет событие с повторами и обновляет статистику webhook'а
func (owm *OutboundWebhookManager) sendToWebhook(webhook *OutboundWebhook, event OutboundWebhookEvent) {
	jsonData, err := json.Marshal(event)
	if err != nil {
		logging.Error("❌ ошибка маршалинга события для webhook %s: %v", webhook.Name, err)
		return
	}

	owm.mu.RLock()
	name, url, secret := webhook.Name, webhook.URL, webhook.Secret
	timeout, retries := webhook.Timeout, webhook.RetryCount
	owm.mu.RUnlock()

	success := false
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * owm.retryDelay)
		}
		err := owm.post(url, secret, jsonData, event, time.Duration(timeout)*time.Second)
		if err == nil {
			success = true
			logging.Debug("событие %s отправлено в webhook %s", event.EventType, name)
			break
		}
		logging.Warn("⚠️ попытка %d/%d для webhook %s: %v", attempt+1, retries+1, name, err)
	}

	owm.mu.Lock()
	now := time.Now()
	webhook.LastUsed = &now
	if !success {
		webhook.FailureCount++
	}
	owm.mu.Unlock()
}

func (owm *OutboundWebhookManager) post(url, secret string, body []byte, event OutboundWebhookEvent, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Alien-Planet-Server/1.0")
	req.Header.Set("X-Event-Type", event.EventType)
	req.Header.Set("X-Server-ID", event.ServerID)
	if secret != "" {
		req.Header.Set("X-Webhook-Signature", generateSignature(body, secret))
	}

	resp, err := owm.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("статус %d", resp.StatusCode)
	}
	return nil
}

// generateSignature генерирует HMAC подпись тела запроса
func generateSignature(data []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// GetEventTypes возвращает типы событий, доступные для подписки
func (owm *OutboundWebhookManager) GetEventTypes() []string {
	return []string{
		eventbus.TypeSessionReset,
		eventbus.TypeTileDestroyed,
		eventbus.TypeItemCollected,
		eventbus.TypeWormSpawned,
		eventbus.TypeWormKilled,
		eventbus.TypePlayerHit,
		eventbus.TypePowerBlockActivated,
		eventbus.TypeUpgradeOffered,
		eventbus.TypeUpgradeSelected,
		eventbus.TypeGameOver,
		eventbus.TypeSnapshotSaved,
		eventbus.TypeSnapshotLoaded,
	}
}
