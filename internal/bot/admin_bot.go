package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"clicker_webapp/internal/logger"
	"clicker_webapp/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AdminBot handles admin commands via Telegram
type AdminBot struct {
	bot              *tgbotapi.BotAPI
	adminService     *service.AdminService
	userService      *service.UserService
	adminIDs         []int64 // Telegram user IDs who can use admin commands
	stopCh           chan struct{}
	wg               sync.WaitGroup
	log              *slog.Logger
	broadcastPending map[int64]bool // Track admins waiting to enter broadcast message
}

// NewAdminBot creates a new admin bot on an already authorized client.
func NewAdminBot(botAPI *tgbotapi.BotAPI, adminService *service.AdminService, userService *service.UserService, adminIDs []int64) *AdminBot {
	log := logger.With("component", "admin_bot")
	log.Info("admin bot ready", "username", botAPI.Self.UserName)

	return &AdminBot{
		bot:              botAPI,
		adminService:     adminService,
		userService:      userService,
		adminIDs:         adminIDs,
		stopCh:           make(chan struct{}),
		log:              log,
		broadcastPending: make(map[int64]bool),
	}
}

// Start starts listening for commands
func (b *AdminBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			if update.Message == nil {
				continue
			}

			// Check if user is admin
			if !b.isAdmin(update.Message.From.ID) {
				continue
			}

			// Check if admin is in broadcast mode (waiting for message)
			if b.broadcastPending[update.Message.From.ID] && !update.Message.IsCommand() {
				b.wg.Add(1)
				go func(msg *tgbotapi.Message) {
					defer b.wg.Done()
					b.executeBroadcast(msg)
				}(update.Message)
				continue
			}

			if !update.Message.IsCommand() {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(update.Message)
		}
	}
}

// Stop gracefully stops the bot
func (b *AdminBot) Stop() {
	b.log.Info("stopping admin bot...")
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	// Wait for pending handlers with timeout
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("admin bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("admin bot shutdown timeout, some handlers may not have completed")
	}
}

// isAdmin checks if user is an admin
func (b *AdminBot) isAdmin(userID int64) bool {
	for _, id := range b.adminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// handleCommand processes admin commands
func (b *AdminBot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var response string

	switch msg.Command() {
	case "start", "help":
		response = b.helpMessage()

	case "stats":
		response = b.handleStats(ctx)

	case "addbalance":
		response = b.handleAddBalance(ctx, msg.CommandArguments())

	case "ban":
		response = b.handleBan(ctx, msg.CommandArguments())

	case "unban":
		response = b.handleUnban(ctx, msg.CommandArguments())

	case "top":
		response = b.handleTop(ctx, msg.CommandArguments())

	case "reloadcatalog":
		b.adminService.InvalidateCatalog()
		response = "✅ Кэш каталога сброшен"

	case "broadcast":
		response = b.handleBroadcastStart(msg.From.ID)

	case "addadmin":
		response = b.handleAddAdmin(msg.CommandArguments())

	default:
		response = "❌ Неизвестная команда. Используйте /help для списка команд."
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, response)
	reply.ParseMode = "HTML"
	reply.ReplyToMessageID = msg.MessageID

	if _, err := b.bot.Send(reply); err != nil {
		b.log.Error("error sending message", "error", err)
	}
}

func (b *AdminBot) helpMessage() string {
	return `<b>🤖 Команды администратора</b>

<b>📊 Статистика:</b>
/stats - Статистика платформы
/top [лимит] - Топ пользователей по балансу

<b>👤 Управление пользователями:</b>
/addbalance &lt;tg_id&gt; &lt;сумма&gt; - Добавить баланс
/ban &lt;tg_id&gt; - Заблокировать
/unban &lt;tg_id&gt; - Разблокировать

<b>🔐 Управление админами:</b>
/addadmin &lt;tg_id&gt; - Добавить админа

<b>⚙️ Прочее:</b>
/reloadcatalog - Сбросить кэш каталога
/broadcast - Отправить сообщение всем`
}

func (b *AdminBot) handleStats(ctx context.Context) string {
	stats, err := b.adminService.GetStats(ctx)
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	return fmt.Sprintf(`<b>📊 Статистика платформы</b>

<b>👥 Пользователи:</b>
• Всего: %d
• Новых сегодня: %d
• Активных сегодня: %d
• Заблокировано: %d

<b>💰 Экономика:</b>
• Всего баланса: %d
• Всего кликов: %d

<b>🤝 Рефералы и задания:</b>
• Рефералов: %d
• Выполнено заданий: %d`,
		stats.TotalUsers,
		stats.NewUsersToday,
		stats.ActiveUsersToday,
		stats.BannedUsers,
		stats.TotalBalance,
		stats.TotalClicks,
		stats.ReferralsTotal,
		stats.TasksCompleted,
	)
}

func (b *AdminBot) handleAddBalance(ctx context.Context, args string) string {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return "❌ Использование: /addbalance <tg_id> <сумма>"
	}

	tgID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "❌ Неверный Telegram ID"
	}

	amount, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "❌ Неверная сумма"
	}

	u, err := b.adminService.AddBalance(ctx, tgID, amount)
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	return fmt.Sprintf("✅ Добавлено %d пользователю %d. Новый баланс: %d", amount, tgID, u.Balance)
}

func (b *AdminBot) handleBan(ctx context.Context, args string) string {
	if args == "" {
		return "❌ Использование: /ban <tg_id>"
	}

	tgID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return "❌ Неверный Telegram ID"
	}

	if err := b.adminService.SetBanned(ctx, tgID, true); err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	return fmt.Sprintf("🚫 Пользователь %d заблокирован", tgID)
}

func (b *AdminBot) handleUnban(ctx context.Context, args string) string {
	if args == "" {
		return "❌ Использование: /unban <tg_id>"
	}

	tgID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return "❌ Неверный Telegram ID"
	}

	if err := b.adminService.SetBanned(ctx, tgID, false); err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	return fmt.Sprintf("✅ Пользователь %d разблокирован", tgID)
}

func (b *AdminBot) handleTop(ctx context.Context, args string) string {
	limit := 10
	if args != "" {
		if n, err := strconv.Atoi(args); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	entries, err := b.userService.Leaderboard(ctx, limit)
	if err != nil {
		return fmt.Sprintf("❌ Ошибка: %v", err)
	}

	if len(entries) == 0 {
		return "❌ Пользователи не найдены"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>🏆 Топ %d по балансу</b>\n\n", limit))

	for _, e := range entries {
		name := e.FirstName
		if e.Username != nil && *e.Username != "" {
			name = "@" + *e.Username
		}
		sb.WriteString(fmt.Sprintf("%d. %s — %d (%s)\n", e.Rank, name, e.Balance, e.LevelName))
	}

	return sb.String()
}

func (b *AdminBot) handleBroadcastStart(adminID int64) string {
	b.broadcastPending[adminID] = true

	return `📢 <b>Broadcast Mode</b>

Введите сообщение для рассылки ниже.

<b>Поддерживается:</b>
• Текст с HTML разметкой
• Фото с подписью

Отправьте /cancel для отмены.`
}

func (b *AdminBot) executeBroadcast(msg *tgbotapi.Message) {
	adminID := msg.From.ID
	chatID := msg.Chat.ID

	// Cancel if user sends /cancel
	if msg.Text == "/cancel" {
		delete(b.broadcastPending, adminID)
		reply := tgbotapi.NewMessage(chatID, "❌ Рассылка отменена")
		b.bot.Send(reply)
		return
	}

	delete(b.broadcastPending, adminID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	b.log.Info("starting broadcast", "admin_id", adminID)

	userIDs, err := b.adminService.AllUserTgIDs(ctx)
	if err != nil {
		b.log.Error("failed to get user IDs", "error", err)
		reply := tgbotapi.NewMessage(chatID, fmt.Sprintf("❌ Ошибка: %v", err))
		b.bot.Send(reply)
		return
	}

	if len(userIDs) == 0 {
		reply := tgbotapi.NewMessage(chatID, "❌ Нет пользователей для рассылки")
		b.bot.Send(reply)
		return
	}

	// Send progress message
	progressMsg := tgbotapi.NewMessage(chatID, fmt.Sprintf("📤 Начинаю рассылку %d пользователям...", len(userIDs)))
	b.bot.Send(progressMsg)

	sent := 0
	failed := 0
	blocked := 0

	for _, tgID := range userIDs {
		var err error

		// Check if it's a photo message
		if len(msg.Photo) > 0 {
			// Get the largest photo
			photo := msg.Photo[len(msg.Photo)-1]
			photoMsg := tgbotapi.NewPhoto(tgID, tgbotapi.FileID(photo.FileID))
			photoMsg.Caption = msg.Caption
			photoMsg.ParseMode = "HTML"
			_, err = b.bot.Send(photoMsg)
		} else {
			// Text message
			textMsg := tgbotapi.NewMessage(tgID, msg.Text)
			textMsg.ParseMode = "HTML"
			textMsg.DisableWebPagePreview = true
			_, err = b.bot.Send(textMsg)
		}

		if err != nil {
			if strings.Contains(err.Error(), "blocked") || strings.Contains(err.Error(), "deactivated") {
				blocked++
			} else {
				b.log.Error("failed to send broadcast", "tg_id", tgID, "error", err)
			}
			failed++
		} else {
			sent++
		}

		// Rate limiting - 20 messages per second
		time.Sleep(50 * time.Millisecond)
	}

	b.log.Info("broadcast complete", "sent", sent, "failed", failed, "blocked", blocked)

	result := fmt.Sprintf(`✅ <b>Рассылка завершена</b>

📨 Отправлено: %d
❌ Не доставлено: %d
🚫 Заблокировали бота: %d`, sent, failed-blocked, blocked)

	reply := tgbotapi.NewMessage(chatID, result)
	reply.ParseMode = "HTML"
	b.bot.Send(reply)
}

func (b *AdminBot) handleAddAdmin(args string) string {
	if args == "" {
		return "❌ Использование: /addadmin <tg_id>"
	}

	tgID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return "❌ Неверный Telegram ID"
	}

	if b.isAdmin(tgID) {
		return fmt.Sprintf("⚠️ Пользователь %d уже админ", tgID)
	}

	b.adminIDs = append(b.adminIDs, tgID)
	b.log.Info("added new admin", "tg_id", tgID)

	return fmt.Sprintf("✅ Добавлен админ %d\n\n⚠️ Это временно до перезапуска. Добавьте в ADMIN_TELEGRAM_IDS для постоянного доступа.", tgID)
}
