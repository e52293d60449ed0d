package usecase

import (
	"fmt"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GhostSniper/internal/domain/models"
)

func TestLiveNeverExceedsCeiling(t *testing.T) {
	for _, ceiling := range []bool{false, true} {
		for _, requested := range []bool{false, true} {
			st := NewAgentState(ceiling, models.AgentParams{RiskTier: "medium"}, 10, "m")
			_, after := st.UpdateParams(models.ParamsPatch{Live: lo.ToPtr(requested)})
			assert.Equal(t, requested && ceiling, after.LiveEnabled, "ceiling=%v requested=%v", ceiling, requested)
			assert.Equal(t, requested && ceiling, st.Params().LiveEnabled)
		}
	}
}

func TestInitialLiveClampedToCeiling(t *testing.T) {
	st := NewAgentState(false, models.AgentParams{LiveEnabled: true}, 10, "m")
	assert.False(t, st.Params().LiveEnabled)
}

func TestUpdateParamsMergesPresentFields(t *testing.T) {
	st := NewAgentState(true, models.AgentParams{BudgetUSD: 100, RiskTier: "low", MaxConcurrentBots: 3}, 10, "m")
	before, after := st.UpdateParams(models.ParamsPatch{BudgetUSD: lo.ToPtr(250.0)})

	assert.Equal(t, 100.0, before.BudgetUSD)
	assert.Equal(t, 250.0, after.BudgetUSD)
	assert.Equal(t, "low", after.RiskTier)
	assert.Equal(t, 3, after.MaxConcurrentBots)
}

func TestWatchIsIdempotent(t *testing.T) {
	st := NewAgentState(false, models.AgentParams{}, 10, "m")
	assert.True(t, st.Watch("0xabc"))
	assert.False(t, st.Watch("0xabc"))
	assert.Equal(t, []string{"0xabc"}, st.Params().WatchedAddresses)
}

func TestParamsSnapshotIsDetached(t *testing.T) {
	st := NewAgentState(false, models.AgentParams{}, 10, "m")
	st.Watch("a")
	p := st.Params()
	p.WatchedAddresses[0] = "mutated"
	assert.Equal(t, "a", st.Params().WatchedAddresses[0])
}

func TestLogRingEvictsOldest(t *testing.T) {
	st := NewAgentState(false, models.AgentParams{}, 3, "m")
	for i := 0; i < 5; i++ {
		st.Append(models.LogEntry{Level: models.LevelInfo, Message: fmt.Sprint(i)})
	}
	all := st.Tail(0)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"2", "3", "4"}, lo.Map(all, func(e models.LogEntry, _ int) string { return e.Message }))

	last := st.Tail(2)
	assert.Equal(t, "3", last[0].Message)
	assert.Equal(t, "4", last[1].Message)
	assert.False(t, last[1].Time.IsZero())
}
