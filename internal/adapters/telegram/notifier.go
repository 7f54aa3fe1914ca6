package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/selivandex/market-intel/internal/adapters/config"
	"github.com/selivandex/market-intel/pkg/logger"
	"github.com/selivandex/market-intel/pkg/models"
)

// Notifier sends fired alerts to the configured Telegram chat
type Notifier struct {
	api             *tgbotapi.BotAPI
	cfg             *config.TelegramConfig
	templateManager *TemplateManager
}

// NewNotifier creates new Telegram notifier
func NewNotifier(cfg *config.TelegramConfig, templateManager *TemplateManager) (*Notifier, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot.Debug = false

	logger.Info("telegram notifier initialized",
		zap.String("bot_username", bot.Self.UserName),
	)

	return &Notifier{
		api:             bot,
		cfg:             cfg,
		templateManager: templateManager,
	}, nil
}

// SendAlert sends the fired alert to the configured chat
func (n *Notifier) SendAlert(trigger models.TriggerPayload) error {
	templateName, data := n.prepareAlert(trigger)

	msg, err := n.templateManager.ExecuteTemplate(templateName, data)
	if err != nil {
		return err
	}

	return n.sendMessageMarkdown(n.cfg.ChatID, msg)
}

// SendDailySummary sends the daily cycle summary to the configured chat
func (n *Notifier) SendDailySummary(date string, signals, changes, conflicts int, regime models.RegimeType) error {
	data := map[string]interface{}{
		"Date":      date,
		"Signals":   signals,
		"Changes":   changes,
		"Conflicts": conflicts,
		"Regime":    string(regime),
	}

	msg, err := n.templateManager.ExecuteTemplate("daily_summary.tmpl", data)
	if err != nil {
		return err
	}

	return n.sendMessageMarkdown(n.cfg.ChatID, msg)
}

// prepareAlert picks the template and builds its data for a fired alert
func (n *Notifier) prepareAlert(trigger models.TriggerPayload) (string, map[string]interface{}) {
	data := map[string]interface{}{
		"AlertName": trigger.AlertName,
		"Reason":    trigger.Reason,
		"FiredAt":   trigger.FiredAt.Format("2006-01-02 15:04"),
	}

	switch trigger.Type {
	case models.AlertDirectionChange:
		if trigger.Change != nil {
			data["SignalName"] = trigger.Change.SignalName
			data["Market"] = trigger.Change.Market
			data["OldDirection"] = string(trigger.Change.OldDirection)
			data["NewDirection"] = string(trigger.Change.NewDirection)
			data["Emoji"] = directionEmoji(trigger.Change.NewDirection)
		}
		return "direction_change.tmpl", data

	case models.AlertConfidenceChange:
		if trigger.Change != nil {
			data["SignalName"] = trigger.Change.SignalName
			data["Market"] = trigger.Change.Market
			data["OldConfidence"] = string(trigger.Change.OldConfidence)
			data["NewConfidence"] = string(trigger.Change.NewConfidence)
		}
		return "confidence_change.tmpl", data

	case models.AlertNewConflict:
		data["Conflicts"] = trigger.Conflicts
		return "new_conflict.tmpl", data

	case models.AlertRegimeTransition:
		if trigger.Transition != nil {
			data["FromRegime"] = string(trigger.Transition.From)
			data["ToRegime"] = string(trigger.Transition.To)
		}
		return "regime_transition.tmpl", data

	default:
		data["StaleSignals"] = trigger.StaleSignals
		return "stale_signal.tmpl", data
	}
}

func (n *Notifier) sendMessageMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"

	_, err := n.api.Send(msg)
	if err != nil {
		logger.Error("failed to send telegram message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func directionEmoji(direction models.Direction) string {
	switch direction {
	case models.DirectionBullish:
		return "📈"
	case models.DirectionBearish:
		return "📉"
	default:
		return "➡️"
	}
}
