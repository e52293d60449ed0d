package usecase

import (
	"sync"
	"time"

	"github.com/samber/lo"

	"GhostSniper/internal/domain/models"
)

const DefaultLogCapacity = 200

// AgentState holds the process-wide parameters and the rolling agent log.
// Writes come from the dispatcher and the agent lifecycle; everyone else reads snapshots.
type AgentState struct {
	mu      sync.RWMutex
	ceiling bool
	running bool
	params  models.AgentParams

	log   []models.LogEntry // ring buffer
	head  int
	size  int
	model string
}

// NewAgentState clamps the initial live flag to the ceiling.
func NewAgentState(ceiling bool, params models.AgentParams, logCapacity int, model string) *AgentState {
	if logCapacity <= 0 {
		logCapacity = DefaultLogCapacity
	}
	params = params.Clone()
	params.LiveEnabled = params.LiveEnabled && ceiling
	return &AgentState{
		ceiling: ceiling,
		params:  params,
		log:     make([]models.LogEntry, logCapacity),
		model:   model,
	}
}

func (s *AgentState) LiveCeiling() bool { return s.ceiling }

func (s *AgentState) Model() string { return s.model }

func (s *AgentState) Params() models.AgentParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params.Clone()
}

// UpdateParams merges present fields and returns the params before and after.
// LiveEnabled never exceeds the ceiling.
func (s *AgentState) UpdateParams(p models.ParamsPatch) (before, after models.AgentParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before = s.params.Clone()
	if p.BudgetUSD != nil {
		s.params.BudgetUSD = *p.BudgetUSD
	}
	if p.RiskTier != nil {
		s.params.RiskTier = *p.RiskTier
	}
	if p.Live != nil {
		s.params.LiveEnabled = *p.Live && s.ceiling
	}
	if p.ConfirmBeforeLive != nil {
		s.params.ConfirmBeforeLive = *p.ConfirmBeforeLive
	}
	if p.MaxConcurrentBots != nil {
		s.params.MaxConcurrentBots = *p.MaxConcurrentBots
	}
	return before, s.params.Clone()
}

// Watch adds addr to the watch list and reports whether it was new.
func (s *AgentState) Watch(addr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lo.Contains(s.params.WatchedAddresses, addr) {
		return false
	}
	s.params.WatchedAddresses = append(s.params.WatchedAddresses, addr)
	return true
}

func (s *AgentState) SetRunning(v bool) (changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed = s.running != v
	s.running = v
	return changed
}

func (s *AgentState) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Append stores e, evicting the oldest entry once the ring is full.
func (s *AgentState) Append(e models.LogEntry) {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	capacity := len(s.log)
	idx := (s.head + s.size) % capacity
	s.log[idx] = e
	if s.size < capacity {
		s.size++
	} else {
		s.head = (s.head + 1) % capacity
	}
}

// Tail returns the newest n entries, oldest first. n <= 0 returns everything.
func (s *AgentState) Tail(n int) []models.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > s.size {
		n = s.size
	}
	out := make([]models.LogEntry, 0, n)
	capacity := len(s.log)
	for i := s.size - n; i < s.size; i++ {
		out = append(out, s.log[(s.head+i)%capacity])
	}
	return out
}
