// Package orchestrator drives one generation turn: shortcuts, health gate,
// cache, quick replies, knowledge augmentation, the backend call and
// post-processing. All paths return plain text; no error escapes.
package orchestrator

import (
	"context"
	"log"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"snurbo/internal/analyzer"
	"snurbo/internal/cache"
	"snurbo/internal/ollama"
	"snurbo/internal/prompt"
	"snurbo/internal/respond"
	"snurbo/internal/session"
)

// Backend is what the orchestrator needs from the inference client.
// *ollama.Client satisfies it; tests swap in fakes.
type Backend interface {
	Healthy(ctx context.Context) bool
	Generate(ctx context.Context, messages []ollama.Message) (string, error)
}

// Orchestrator owns the generation pipeline for admitted messages.
type Orchestrator struct {
	backend   Backend
	cache     *cache.ResponseCache
	sessions  *session.Store
	prompts   *prompt.Builder
	processor *respond.Processor
	knowledge Searcher // nil means the feature is off
	botName   string

	mu  sync.Mutex
	rng *rand.Rand
}

// New wires an Orchestrator. knowledge may be nil.
func New(backend Backend, responses *cache.ResponseCache, sessions *session.Store, prompts *prompt.Builder, processor *respond.Processor, knowledge Searcher, botName string) *Orchestrator {
	return &Orchestrator{
		backend:   backend,
		cache:     responses,
		sessions:  sessions,
		prompts:   prompts,
		processor: processor,
		knowledge: knowledge,
		botName:   botName,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Respond produces the reply text for one admitted message. It never
// returns an error; backend failures become user-safe canned messages.
func (o *Orchestrator) Respond(ctx context.Context, userID, channelID, content string) string {
	conv := o.sessions.Get(userID, channelID)
	defense := analyzer.DetectDefense(conv.Messages, content, o.botName)

	// Someone defending the bot gets a thank-you, not a model call.
	if analyzer.ShouldAcknowledgeSupport(defense) {
		reply := o.pick(supportThanks)
		o.cache.Set(content, userID, reply)
		return reply
	}

	if !o.backend.Healthy(ctx) {
		return o.pick(unavailableReplies)
	}

	needsCode := analyzer.RequiresCode(content)

	if !needsCode {
		if cached, ok := o.cache.Get(content, userID); ok {
			log.Printf("[GEN] cache hit user=%s", userID)
			return cached
		}
		if reply, ok := o.quickReply(content); ok {
			o.cache.Set(content, userID, reply)
			return reply
		}
	}

	extra := o.augment(content)

	criticism := analyzer.FindPriorCriticism(conv.Messages, o.botName)
	messages := o.prompts.Messages(conv, content, defense, criticism, needsCode, extra)

	raw, err := o.backend.Generate(ctx, messages)
	if err != nil {
		cat := ollama.Categorize(err)
		log.Printf("[ERR] generate failed user=%s channel=%s category=%s: %v", userID, channelID, cat, err)
		return o.pick(failurePool(cat))
	}

	reply := o.processor.Process(raw, needsCode)
	if !needsCode && extra == "" {
		o.cache.Set(content, userID, reply)
	}
	return reply
}

var quickNormRe = regexp.MustCompile(`[^\w\s]`)

// quickReply matches common short greetings and acknowledgements.
func (o *Orchestrator) quickReply(content string) (string, bool) {
	norm := strings.TrimSpace(quickNormRe.ReplaceAllString(strings.ToLower(content), ""))
	pool, ok := quickReplies[norm]
	if !ok {
		return "", false
	}
	return o.pick(pool), true
}

// augment asks the knowledge collaborator for extra context. A non-empty
// result disables caching for the turn.
func (o *Orchestrator) augment(content string) string {
	if o.knowledge == nil || !wantsKnowledge(content) || !o.knowledge.ShouldSearch(content) {
		return ""
	}
	found := o.knowledge.Search(content)
	if found != "" {
		log.Printf("[GEN] knowledge augmentation applied len=%d", len(found))
	}
	return found
}

func (o *Orchestrator) pick(pool []string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return pool[o.rng.Intn(len(pool))]
}
