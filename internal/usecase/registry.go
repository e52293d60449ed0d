package usecase

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
	domsvc "GhostSniper/internal/domain/service"
	"GhostSniper/pkg/logger"
)

var (
	ErrBotNotFound = errors.New("bot not found")
	ErrUnknownKind = errors.New("unknown bot kind")
	ErrBotRunning  = errors.New("bot is running")
)

// Registry owns the bots, one per id, created on first reference.
type Registry struct {
	mu        sync.Mutex
	bots      map[string]*Bot
	factories map[models.BotKind]domsvc.StrategyFactory
	env       *botEnv
	validate  *validator.Validate
}

func NewRegistry(
	factories map[models.BotKind]domsvc.StrategyFactory,
	normalizer domsvc.Normalizer,
	scorer domsvc.SignalScorer,
	gateway Executor,
	params ParamsReader,
	reporter *Reporter,
	metrics drepo.Metrics,
	log *logger.Logger,
) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		bots:      make(map[string]*Bot),
		factories: factories,
		validate:  validator.New(),
		env: &botEnv{
			normalizer: normalizer,
			scorer:     scorer,
			gateway:    gateway,
			params:     params,
			reporter:   reporter.Detached(),
			metrics:    metricsOrNop(metrics),
			log:        log.Named("bots"),
		},
	}
}

// Start starts bot id, creating it if needed. It returns false when the bot
// was already running. An empty kind reuses the kind the bot was created with.
func (r *Registry) Start(id string, kind models.BotKind, opts models.BotOptions) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("bot id is required")
	}
	if err := defaults.Set(&opts); err != nil {
		return false, fmt.Errorf("bot options defaults: %w", err)
	}
	if err := r.validate.Struct(opts); err != nil {
		return false, fmt.Errorf("bot options: %w", err)
	}

	r.mu.Lock()
	bot, ok := r.bots[id]
	if ok && kind == "" {
		kind = bot.Summary().Kind
	}
	factory, known := r.factories[kind]
	if !known {
		r.mu.Unlock()
		return false, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if !ok {
		bot = newBot(id, kind, r.env)
		r.bots[id] = bot
	}
	running := lo.CountBy(lo.Values(r.bots), func(b *Bot) bool { return b.State() == models.BotRunning })
	r.mu.Unlock()

	if bot.State() == models.BotRunning {
		return false, nil
	}
	if limit := r.env.params.Params().MaxConcurrentBots; limit > 0 && running >= limit {
		r.env.reporter.Warn(id, fmt.Sprintf("%d bots already running (soft cap %d); starting %s anyway", running, limit, id))
	}

	strat, err := factory(opts)
	if err != nil {
		return false, fmt.Errorf("build %s strategy: %w", kind, err)
	}
	started := bot.start(kind, opts, strat)
	if started {
		r.env.reporter.OK(id, fmt.Sprintf("Bot %s (%s) started", id, kind))
	}
	return started, nil
}

// Stop returns false when the bot was not running.
func (r *Registry) Stop(id string) (bool, error) {
	bot, err := r.Get(id)
	if err != nil {
		return false, err
	}
	stopped := bot.stop()
	if stopped {
		r.env.reporter.Info(id, fmt.Sprintf("Bot %s stopping", id))
	}
	return stopped, nil
}

func (r *Registry) Get(id string) (*Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bot, ok := r.bots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBotNotFound, id)
	}
	return bot, nil
}

// Remove deletes a bot that is not running.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bot, ok := r.bots[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBotNotFound, id)
	}
	if st := bot.State(); st == models.BotRunning || st == models.BotStopping {
		return fmt.Errorf("%w: %s", ErrBotRunning, id)
	}
	delete(r.bots, id)
	return nil
}

func (r *Registry) List() []models.BotSummary {
	r.mu.Lock()
	bots := lo.Values(r.bots)
	r.mu.Unlock()

	out := lo.Map(bots, func(b *Bot, _ int) models.BotSummary { return b.Summary() })
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Running() int {
	return lo.CountBy(r.List(), func(s models.BotSummary) bool { return s.State == models.BotRunning })
}

// Close stops every bot and waits for their loops to exit.
func (r *Registry) Close() {
	r.mu.Lock()
	bots := lo.Values(r.bots)
	r.mu.Unlock()
	for _, b := range bots {
		b.stop()
	}
	for _, b := range bots {
		b.wait()
	}
}
