// Package notify alerts an on-call Telegram chat about emergency presentations.
package notify

import (
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const maxSymptomRunes = 500

// Sender is satisfied by *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	sender Sender
	chatID int64
	logger *zap.Logger
	wg     sync.WaitGroup
}

func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}
	logger.Info("Telegram alerts enabled",
		zap.String("bot", api.Self.UserName),
		zap.Int64("chat_id", chatID))

	return NewTelegramNotifierWithSender(api, chatID, logger), nil
}

func NewTelegramNotifierWithSender(sender Sender, chatID int64, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		sender: sender,
		chatID: chatID,
		logger: logger,
	}
}

// NotifyEmergency sends the alert in the background. Failures are logged and
// never reach the caller.
func (n *TelegramNotifier) NotifyEmergency(userID, symptoms string, terms []string) {
	msg := tgbotapi.NewMessage(n.chatID, alertText(userID, symptoms, terms))
	msg.DisableWebPagePreview = true

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if _, err := n.sender.Send(msg); err != nil {
			n.logger.Error("Failed to send emergency alert",
				zap.Error(err),
				zap.String("user_id", userID))
			return
		}
		n.logger.Info("Emergency alert sent", zap.String("user_id", userID))
	}()
}

// Wait blocks until pending alerts have been sent or failed.
func (n *TelegramNotifier) Wait() {
	n.wg.Wait()
}

func alertText(userID, symptoms string, terms []string) string {
	if userID == "" {
		userID = "anonymous"
	}
	if r := []rune(symptoms); len(r) > maxSymptomRunes {
		symptoms = string(r[:maxSymptomRunes]) + "..."
	}

	var b strings.Builder
	b.WriteString("🚨 Emergency symptoms reported\n\n")
	fmt.Fprintf(&b, "User: %s\n", userID)
	if len(terms) > 0 {
		fmt.Fprintf(&b, "Matched: %s\n", strings.Join(terms, ", "))
	}
	fmt.Fprintf(&b, "Symptoms: %s", symptoms)
	return b.String()
}
