// 텔레그램 봇 롱폴링 라우터
//
// 프로필/공고 작성은 미니앱에서 처리하고, 봇 명령은 구독 관리와
// 미니앱 진입 안내만 담당한다.
package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/catsflats/backend/internal/client"
	"github.com/catsflats/backend/internal/service"
	"github.com/catsflats/backend/internal/template"
)

const pollTimeoutSeconds = 30

type Router struct {
	telegram      *client.TelegramClient
	limiter       *service.ActivityLimiter
	profiles      *service.ProfileService
	subscriptions *service.SubscriptionService
	webAppURL     string
	inviteLink    string
}

func NewRouter(
	telegram *client.TelegramClient,
	limiter *service.ActivityLimiter,
	profiles *service.ProfileService,
	subscriptions *service.SubscriptionService,
	webAppURL, inviteLink string,
) *Router {
	return &Router{
		telegram:      telegram,
		limiter:       limiter,
		profiles:      profiles,
		subscriptions: subscriptions,
		webAppURL:     webAppURL,
		inviteLink:    inviteLink,
	}
}

// Run polls getUpdates until ctx is cancelled. Transient poll failures back
// off briefly instead of tearing the loop down.
func (r *Router) Run(ctx context.Context) {
	var offset int64
	log.Printf("[Bot] polling started")
	for {
		updates, err := r.telegram.GetUpdates(ctx, offset, pollTimeoutSeconds)
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("[Bot] polling stopped: %v", ctx.Err())
				return
			}
			log.Printf("[Bot] getUpdates failed: %v", err)
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			r.handleUpdate(ctx, update)
		}
	}
}

func (r *Router) handleUpdate(ctx context.Context, update client.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	// 과도한 입력은 조용히 버린다. 에러 응답조차 스팸이 된다.
	if !r.limiter.Admit(msg.From.ID) {
		return
	}

	command, _, _ := strings.Cut(strings.TrimSpace(msg.Text), " ")
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}

	var err error
	switch command {
	case "/start":
		err = r.handleStart(ctx, msg)
	case "/profile":
		err = r.handleProfile(ctx, msg)
	case "/subscribe":
		err = r.handleSubscribe(ctx, msg)
	case "/unsubscribe":
		err = r.handleUnsubscribe(ctx, msg)
	default:
		return
	}
	if err != nil {
		log.Printf("[Bot] %s from user %d failed: %v", command, msg.From.ID, err)
	}
}

func (r *Router) handleStart(ctx context.Context, msg *client.IncomingMessage) error {
	name := template.EscapeMarkdownV2(msg.From.FirstName)
	lines := []string{
		fmt.Sprintf("Hi %s\\! This is the Cats \\& Flats bot\\.", name),
		"",
		"Fill in your profile and post listings in the mini app:",
		template.EscapeMarkdownV2(r.webAppURL),
		"",
		"Published listings appear in the channel:",
		template.EscapeMarkdownV2(r.inviteLink),
	}
	_, err := r.telegram.SendMessage(ctx, msg.Chat.ID, strings.Join(lines, "\n"))
	return err
}

func (r *Router) handleProfile(ctx context.Context, msg *client.IncomingMessage) error {
	profile, err := r.profiles.Get(ctx, msg.From.ID)
	if err != nil {
		return err
	}
	if profile == nil {
		text := "No profile yet\\. Create one in the mini app:\n" +
			template.EscapeMarkdownV2(r.webAppURL)
		_, err = r.telegram.SendMessage(ctx, msg.Chat.ID, text)
		return err
	}
	_, err = r.telegram.SendMessage(ctx, msg.Chat.ID, template.ProfilePreview(*profile))
	return err
}

func (r *Router) handleSubscribe(ctx context.Context, msg *client.IncomingMessage) error {
	if !r.subscriptions.Available() {
		_, err := r.telegram.SendMessage(ctx, msg.Chat.ID, "Subscriptions are not available right now\\.")
		return err
	}
	_, args, _ := strings.Cut(strings.TrimSpace(msg.Text), " ")
	args = strings.TrimSpace(args)
	if args == "" {
		text := "Send cities to watch, for example:\n`/subscribe Lisbon, Porto`"
		_, err := r.telegram.SendMessage(ctx, msg.Chat.ID, text)
		return err
	}
	if _, err := r.subscriptions.Upsert(ctx, msg.From.ID, args, "", true); err != nil {
		return err
	}
	text := fmt.Sprintf("Subscribed to new listings in: %s", template.EscapeMarkdownV2(args))
	_, err := r.telegram.SendMessage(ctx, msg.Chat.ID, text)
	return err
}

func (r *Router) handleUnsubscribe(ctx context.Context, msg *client.IncomingMessage) error {
	if !r.subscriptions.Available() {
		_, err := r.telegram.SendMessage(ctx, msg.Chat.ID, "Subscriptions are not available right now\\.")
		return err
	}
	if _, err := r.subscriptions.Disable(ctx, msg.From.ID); err != nil {
		return err
	}
	_, err := r.telegram.SendMessage(ctx, msg.Chat.ID, "Subscription disabled\\. Use /subscribe to turn it back on\\.")
	return err
}
