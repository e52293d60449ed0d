package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GhostSniper/internal/domain/models"
	drepo "GhostSniper/internal/domain/repository"
)

func TestAgentLifecycleAndStatus(t *testing.T) {
	bus := &recordingBus{}
	state := NewAgentState(true, models.AgentParams{RiskTier: "medium"}, 50, "gemini-2.0-flash")
	rep := NewReporter(state, bus, nil)
	src := &stubSource{name: "coingecko", val: []string{"BONK"}}
	intel := NewMarketIntel(map[string][]drepo.MarketSource{"sol": {src}}, nil, 0, nil, nil)

	a := NewAgent(state, rep, intel, nil, nil, time.Hour, nil)
	assert.Equal(t, "Agent ready (idle).", state.Tail(1)[0].Message)

	assert.True(t, a.Start())
	assert.False(t, a.Start())
	require.Eventually(t, func() bool { return len(bus.OfType(models.EventIntel)) == 1 }, time.Second, 5*time.Millisecond)

	st := a.Status()
	assert.True(t, st.Running)
	assert.True(t, st.LiveEnv)
	assert.Equal(t, "gemini-2.0-flash", st.Model)
	assert.LessOrEqual(t, len(st.Memory), 20)

	assert.True(t, a.Stop())
	assert.False(t, a.Stop())
	assert.False(t, a.Status().Running)
	assert.Equal(t, "Agent stopped.", state.Tail(1)[0].Message)

	intelEv := bus.OfType(models.EventIntel)[0].Payload.(models.IntelPayload)
	assert.Equal(t, "sol/coingecko", intelEv.Source)
}
