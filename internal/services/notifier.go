package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/models"
	"gorm.io/gorm"
)

// Notifier is the notification emitter. Every ride/booking state transition
// calls Emit; delivery is strictly best-effort and never blocks or rolls
// back the transition that triggered it. The persisted row feeds the
// client's inbox, the hub push covers connected devices, FCM covers
// backgrounded ones.
type Notifier struct {
	db  *gorm.DB
	hub *Hub
}

func NewNotifier(db *gorm.DB, hub *Hub) *Notifier {
	return &Notifier{db: db, hub: hub}
}

// Emit records and fans out one notification to a single recipient.
func (n *Notifier) Emit(recipientID uint, notifType, title, message string, data map[string]interface{}) {
	payload := "{}"
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			payload = string(raw)
		} else {
			log.Printf("Notifier: failed to marshal data for %s: %v", notifType, err)
		}
	}

	notification := models.Notification{
		RecipientID: recipientID,
		Type:        notifType,
		Title:       title,
		Message:     message,
		Data:        payload,
	}
	if err := n.db.Create(&notification).Error; err != nil {
		log.Printf("Notifier: failed to persist %s for user %d: %v", notifType, recipientID, err)
	}

	if n.hub != nil {
		wsMessage := WebSocketMessage{Type: notifType, Data: data}
		if raw, err := json.Marshal(wsMessage); err == nil {
			n.hub.BroadcastToUser(recipientID, raw)
		}
	}

	var recipient models.User
	if err := n.db.First(&recipient, recipientID).Error; err != nil {
		log.Printf("Notifier: failed to load recipient %d: %v", recipientID, err)
		return
	}
	if recipient.FCMToken != "" {
		token := recipient.FCMToken
		go func() {
			payload := NotificationPayload{
				Title: title,
				Body:  message,
				Data:  data,
			}
			if err := SendNotificationToToken(context.Background(), token, payload); err != nil {
				log.Printf("Notifier: push delivery failed for user %d: %v", recipientID, err)
			}
		}()
	}
}

// EmitBatch records one notification per recipient and fans the push
// delivery out as a single multicast. Used for ride-wide events where every
// recipient gets the same payload, like a driver cancelling a ride.
func (n *Notifier) EmitBatch(recipientIDs []uint, notifType, title, message string, data map[string]interface{}) {
	if len(recipientIDs) == 0 {
		return
	}

	payload := "{}"
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			payload = string(raw)
		} else {
			log.Printf("Notifier: failed to marshal data for %s: %v", notifType, err)
		}
	}

	for _, recipientID := range recipientIDs {
		notification := models.Notification{
			RecipientID: recipientID,
			Type:        notifType,
			Title:       title,
			Message:     message,
			Data:        payload,
		}
		if err := n.db.Create(&notification).Error; err != nil {
			log.Printf("Notifier: failed to persist %s for user %d: %v", notifType, recipientID, err)
		}
	}

	if n.hub != nil {
		wsMessage := WebSocketMessage{Type: notifType, Data: data}
		if raw, err := json.Marshal(wsMessage); err == nil {
			for _, recipientID := range recipientIDs {
				n.hub.BroadcastToUser(recipientID, raw)
			}
		}
	}

	var tokens []string
	if err := n.db.Model(&models.User{}).
		Where("id IN ? AND fcm_token <> ''", recipientIDs).
		Pluck("fcm_token", &tokens).Error; err != nil {
		log.Printf("Notifier: failed to load push tokens for %s: %v", notifType, err)
		return
	}
	if len(tokens) > 0 {
		go func() {
			payload := NotificationPayload{
				Title: title,
				Body:  message,
				Data:  data,
			}
			if _, err := SendNotificationToMultipleTokens(context.Background(), tokens, payload); err != nil {
				log.Printf("Notifier: multicast push delivery failed: %v", err)
			}
		}()
	}
}
