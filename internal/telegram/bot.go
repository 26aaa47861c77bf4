package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chefmate/internal/app"
	"chefmate/internal/config"
	"chefmate/internal/metrics"
	"chefmate/internal/recipe"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	// SessionTTL is how long listing numbers stay valid.
	SessionTTL      = 30 * time.Minute
	messageTimeout  = time.Minute
	cleanupInterval = 10 * time.Minute
)

// Sender delivers messages to Telegram.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Clipper builds a recipe from a web page.
type Clipper interface {
	Clip(ctx context.Context, url string) (recipe.Recipe, error)
}

// UsageReader reads daily action totals.
type UsageReader interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// Bot wraps the Telegram API, the App and the Clipper.
type Bot struct {
	api      Sender
	app      *app.App
	clipper  Clipper
	usage    UsageReader
	cfg      *config.Config
	sessions Sessions
	logger   *zap.Logger
}

// NewBot initializes the Telegram Bot and sets the Webhook. A nil sessions
// keeps listing numbers in memory.
func NewBot(cfg *config.Config, a *app.App, clipper Clipper, usage UsageReader, sessions Sessions, logger *zap.Logger) (*Bot, error) {
	if err := cfg.RequireTelegram(); err != nil {
		return nil, err
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	b := newBot(api, cfg, a, clipper, usage, sessions, logger)
	b.logger.Info("authorized", zap.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	b.logger.Info("webhook set", zap.String("response", resp.Description))
	return b, nil
}

func newBot(api Sender, cfg *config.Config, a *app.App, clipper Clipper, usage UsageReader, sessions Sessions, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessions == nil {
		sessions = NewSessionStore(SessionTTL)
	}
	return &Bot{
		api:      api,
		app:      a,
		clipper:  clipper,
		usage:    usage,
		cfg:      cfg,
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterHandlers registers the webhook and health handlers on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// CleanupSessions removes expired sessions every interval until ctx is done.
func (b *Bot) CleanupSessions(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = cleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := b.sessions.CleanupExpired(ctx)
			if err != nil {
				b.logger.Warn("failed to clean up sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				b.logger.Debug("expired sessions removed", zap.Int64("count", n))
			}
		}
	}
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("error parsing update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	if !b.cfg.IsAllowedUser(msg.From.ID) {
		b.logger.Warn("unauthorized access attempt", zap.Int64("user_id", msg.From.ID), zap.String("username", msg.From.UserName))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), messageTimeout)
		defer cancel()
		b.HandleMessage(ctx, msg)
	}()
}

// HandleMessage runs the command in msg and replies to its chat.
func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleClip(ctx, msg.Chat.ID, strings.Fields(text)[0])
		return
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}
	cmd, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]
	chatID := msg.Chat.ID

	switch cmd {
	case "/recipes":
		b.handleRecipes(ctx, chatID, strings.Join(args, " "))
	case "/list":
		b.sendItems(ctx, chatID)
	case "/add":
		b.handleAdd(ctx, chatID, args)
	case "/buy":
		b.handleBuy(ctx, chatID, args)
	case "/done":
		b.handleItemAction(ctx, chatID, args, b.app.ToggleItem)
	case "/remove":
		b.handleItemAction(ctx, chatID, args, b.app.RemoveItem)
	case "/clear":
		b.afterAction(ctx, chatID, b.app.ClearCompleted(ctx))
	case "/clearall":
		b.afterAction(ctx, chatID, b.app.ClearAll(ctx))
	case "/stats", "/metrics":
		b.handleStats(ctx, chatID, msg.From.ID)
	default:
		b.reply(chatID, helpText, "")
	}
}

func (b *Bot) handleRecipes(ctx context.Context, chatID int64, course string) {
	recipes := b.app.Recipes(course)
	ids := make([]string, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}
	b.saveSession(ctx, chatID, SessionRecipes, ids)
	b.reply(chatID, formatRecipes(recipes, course), tgbotapi.ModeMarkdown)
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		b.reply(chatID, "Usage: /add <n> [servings]", "")
		return
	}
	id, ok := b.resolve(ctx, chatID, SessionRecipes, args[0])
	if !ok {
		b.reply(chatID, "❌ Unknown recipe number. Send /recipes first.", "")
		return
	}
	r, ok := b.app.Recipe(id)
	if !ok {
		b.reply(chatID, errorText(app.ErrRecipeNotFound), "")
		return
	}
	servings := r.Servings
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			b.reply(chatID, "❌ Servings must be a positive number.", "")
			return
		}
		servings = n
	}
	b.afterAction(ctx, chatID, b.app.AddRecipeToList(ctx, id, servings))
}

func (b *Bot) handleBuy(ctx context.Context, chatID int64, args []string) {
	name, qty, unit := parseBuyArgs(args)
	b.afterAction(ctx, chatID, b.app.AddItem(ctx, name, qty, unit))
}

// parseBuyArgs reads "[qty] [unit] name". A missing quantity is zero, which
// the list turns into one, and a lone word after the quantity is the name.
func parseBuyArgs(args []string) (name string, qty float64, unit string) {
	if len(args) == 0 {
		return "", 0, ""
	}
	q, err := strconv.ParseFloat(strings.ReplaceAll(args[0], ",", "."), 64)
	if err != nil {
		return strings.Join(args, " "), 0, ""
	}
	rest := args[1:]
	if len(rest) < 2 {
		return strings.Join(rest, " "), q, ""
	}
	return strings.Join(rest[1:], " "), q, rest[0]
}

func (b *Bot) handleItemAction(ctx context.Context, chatID int64, args []string, action func(context.Context, string) error) {
	if len(args) == 0 {
		b.reply(chatID, "Usage: /done <n> or /remove <n>", "")
		return
	}
	id, ok := b.resolve(ctx, chatID, SessionItems, args[0])
	if !ok {
		b.reply(chatID, "❌ Unknown item number. Send /list first.", "")
		return
	}
	b.afterAction(ctx, chatID, action(ctx, id))
}

// resolve maps a number from the last listing of kind to an id. Without a
// recent listing the current order is used.
func (b *Bot) resolve(ctx context.Context, chatID int64, kind SessionKind, arg string) (string, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return "", false
	}
	sess, err := b.sessions.GetActive(ctx, chatID, kind)
	if err != nil {
		b.logger.Warn("failed to load session", zap.Int64("chat_id", chatID), zap.String("kind", string(kind)), zap.Error(err))
	}
	if sess == nil {
		var ids []string
		if kind == SessionRecipes {
			for _, r := range b.app.Recipes("") {
				ids = append(ids, r.ID)
			}
		} else {
			for _, it := range b.app.Items() {
				ids = append(ids, it.ID)
			}
		}
		b.saveSession(ctx, chatID, kind, ids)
		sess = &Session{ChatID: chatID, Kind: kind, IDs: ids}
	}
	return sess.Resolve(n)
}

func (b *Bot) saveSession(ctx context.Context, chatID int64, kind SessionKind, ids []string) {
	if err := b.sessions.Save(ctx, chatID, kind, ids); err != nil {
		b.logger.Warn("failed to save session", zap.Int64("chat_id", chatID), zap.String("kind", string(kind)), zap.Error(err))
	}
}

func (b *Bot) handleClip(ctx context.Context, chatID int64, url string) {
	if b.clipper == nil {
		b.reply(chatID, "❌ Recipe import is not configured.", "")
		return
	}
	b.reply(chatID, "✂️ *Clipping recipe...*", tgbotapi.ModeMarkdown)

	r, err := b.clipper.Clip(ctx, url)
	if err != nil {
		b.logger.Warn("error clipping recipe", zap.String("url", url), zap.Error(err))
		b.reply(chatID, errorText(err), "")
		return
	}
	saved, err := b.app.SaveRecipe(ctx, r)
	if err != nil {
		b.reply(chatID, errorText(err), "")
		return
	}
	b.reply(chatID, formatRecipeSaved(saved), tgbotapi.ModeMarkdown)
}

func (b *Bot) handleStats(ctx context.Context, chatID, userID int64) {
	if userID != b.cfg.AdminTelegramID || b.cfg.AdminTelegramID == 0 {
		b.reply(chatID, "⛔ Access Denied: Admin only.", "")
		return
	}
	if b.usage == nil {
		b.reply(chatID, "❌ Metrics are not enabled.", "")
		return
	}
	usage, err := b.usage.GetDailyUsage(ctx, 7)
	if err != nil {
		b.logger.Error("error fetching metrics", zap.Error(err))
		b.reply(chatID, "❌ Error fetching metrics.", "")
		return
	}
	b.reply(chatID, formatStats(usage, metrics.GetSysHealth(b.cfg.DataDir)), tgbotapi.ModeMarkdown)
}

// afterAction replies with the error of a list action or the updated list.
func (b *Bot) afterAction(ctx context.Context, chatID int64, err error) {
	if err != nil {
		b.reply(chatID, errorText(err), "")
		return
	}
	b.sendItems(ctx, chatID)
}

func (b *Bot) sendItems(ctx context.Context, chatID int64) {
	items := b.app.Items()
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	b.saveSession(ctx, chatID, SessionItems, ids)
	b.reply(chatID, formatItems(items), tgbotapi.ModeMarkdown)
}

func (b *Bot) reply(chatID int64, text, parseMode string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
