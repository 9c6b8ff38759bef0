// Package discord wires the admission and generation pipeline to the chat
// platform: one goroutine per inbound message, typing indicator, reply
// with a plain-send fallback.
package discord

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"snurbo/internal/config"
	"snurbo/internal/gate"
	"snurbo/internal/orchestrator"
	"snurbo/internal/session"
	"snurbo/internal/tracker"
)

// havingIssuesChance is how often the catch-all sends a reply instead of
// failing silently.
const havingIssuesChance = 0.2

// Bot owns the Discord session and drives the pipeline.
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	gate     *gate.Gate
	activity *tracker.Tracker
	sessions *session.Store
	orch     *orchestrator.Orchestrator
}

// NewBot creates the bot around an already-wired pipeline.
func NewBot(cfg *config.Config, g *gate.Gate, activity *tracker.Tracker, sessions *session.Store, orch *orchestrator.Orchestrator) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	b := &Bot{
		dg:       dg,
		cfg:      cfg,
		gate:     g,
		activity: activity,
		sessions: sessions,
		orch:     orch,
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	return b, nil
}

// Run opens the session and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	log.Println("[INFO] Shutdown signal received, closing Discord session")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[INFO] Logged in as %s#%s", r.User.Username, r.User.Discriminator)
}

// onMessageCreate spawns one handling goroutine per inbound message so a
// slow backend call never blocks the event dispatch.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}
	go b.handleMessage(s, m)
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERR] panic handling message from %s: %v", m.Author.ID, r)
			if rand.Float64() < havingIssuesChance {
				_, _ = s.ChannelMessageSend(m.ChannelID, "having some issues rn, sorry 😅")
			}
		}
	}()

	now := time.Now()
	content := strings.TrimSpace(m.Content)
	isDM := m.GuildID == ""
	isThread, parentID, threadName := b.threadInfo(s, m.ChannelID)

	// Activity is tracked for every message, admitted or not.
	b.activity.RecordActivity(m.ChannelID, now)

	decision := b.gate.Decide(gate.Message{
		Content:     content,
		AuthorID:    m.Author.ID,
		ChannelID:   m.ChannelID,
		IsDM:        isDM,
		IsThread:    isThread,
		MentionsBot: b.mentionsMe(s, m),
	}, now)
	if !decision.Should {
		return
	}
	log.Printf("[GATE] admit user=%s channel=%s reason=%s", m.Author.ID, m.ChannelID, decision.Reason)

	if !b.activity.AllowUser(m.Author.ID, b.cfg.UserRateLimit, now) {
		log.Printf("[GATE] user rate limited user=%s", m.Author.ID)
		return
	}
	channelCap := b.cfg.ChannelRateLimit
	if isThread {
		channelCap = b.cfg.ThreadRateLimit
	}
	if !b.activity.AllowChannel(m.ChannelID, channelCap, now) {
		log.Printf("[GATE] channel rate limited channel=%s", m.ChannelID)
		return
	}

	b.sessions.SetName(m.Author.ID, m.ChannelID, m.Author.DisplayName())
	if isThread {
		b.sessions.AttachThread(m.Author.ID, m.ChannelID, parentID, threadName)
	}

	done := make(chan struct{})
	go keepTyping(s, m.ChannelID, done)
	defer close(done)

	// A human-paced delay so replies don't land the same instant.
	time.Sleep(b.sessions.ResponseDelay(len(content)))

	reply := b.orch.Respond(context.Background(), m.Author.ID, m.ChannelID, content)
	if reply == "" {
		return
	}
	b.sessions.Update(m.Author.ID, m.ChannelID, content, reply)
	b.send(s, m, reply)
}

// send replies with a message reference, falling back to one plain send.
// If both fail the turn is abandoned.
func (b *Bot) send(s *discordgo.Session, m *discordgo.MessageCreate, reply string) {
	for _, chunk := range splitMessage(reply, 2000) {
		_, err := s.ChannelMessageSendReply(m.ChannelID, chunk, m.Reference())
		if err == nil {
			continue
		}
		log.Printf("[WARN] reply failed channel=%s: %v, trying plain send", m.ChannelID, err)
		if _, err = s.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			log.Printf("[ERR] fallback send failed channel=%s: %v", m.ChannelID, err)
			return
		}
	}
}

func (b *Bot) mentionsMe(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	if s.State.User == nil {
		return false
	}
	for _, u := range m.Mentions {
		if u.ID == s.State.User.ID {
			return true
		}
	}
	return false
}

// threadInfo resolves whether the channel is a thread, preferring state
// over a REST round trip.
func (b *Bot) threadInfo(s *discordgo.Session, channelID string) (bool, string, string) {
	ch, err := s.State.Channel(channelID)
	if err != nil {
		ch, err = s.Channel(channelID)
		if err != nil {
			return false, "", ""
		}
	}
	if !ch.IsThread() {
		return false, "", ""
	}
	return true, ch.ParentID, ch.Name
}

// keepTyping refreshes the typing indicator until done closes. Best
// effort; failures are ignored.
func keepTyping(s *discordgo.Session, channelID string, done <-chan struct{}) {
	_ = s.ChannelTyping(channelID)
	ticker := time.NewTicker(8 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			_ = s.ChannelTyping(channelID)
		}
	}
}

func splitMessage(msg string, limit int) []string {
	var result []string
	for utf8.RuneCountInString(msg) > limit {
		head := string([]rune(msg)[:limit])
		cut := strings.LastIndex(head, "\n")
		if cut == -1 {
			cut = len(head)
		}
		result = append(result, strings.TrimSpace(msg[:cut]))
		msg = strings.TrimSpace(msg[cut:])
	}
	if msg != "" {
		result = append(result, msg)
	}
	return result
}
