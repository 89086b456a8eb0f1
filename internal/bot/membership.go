package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MembershipClient answers "did this user join our channel" for the
// telegram_join task via the Bot API.
type MembershipClient struct {
	bot     *tgbotapi.BotAPI
	timeout time.Duration
}

func NewMembershipClient(bot *tgbotapi.BotAPI) *MembershipClient {
	return &MembershipClient{bot: bot, timeout: 10 * time.Second}
}

// IsChannelMember resolves the channel by @username or numeric chat id
// and checks the user's member status. Errors are returned as-is so the
// caller can fail closed.
func (c *MembershipClient) IsChannelMember(ctx context.Context, channelID string, tgID int64) (bool, error) {
	cfg := tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{UserID: tgID},
	}
	if strings.HasPrefix(channelID, "@") {
		cfg.SuperGroupUsername = channelID
	} else if id, err := strconv.ParseInt(channelID, 10, 64); err == nil {
		cfg.ChatID = id
	} else {
		cfg.SuperGroupUsername = "@" + channelID
	}

	type reply struct {
		member tgbotapi.ChatMember
		err    error
	}
	ch := make(chan reply, 1)
	go func() {
		m, err := c.bot.GetChatMember(cfg)
		ch <- reply{member: m, err: err}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return false, r.err
		}
		switch r.member.Status {
		case "creator", "administrator", "member":
			return true, nil
		}
		return false, nil
	}
}
