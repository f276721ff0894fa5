package guards_test

import (
	"testing"

	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/silenceobjects/sentinel/internal/domain/guards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EveryGuardName(t *testing.T) {
	deps := guards.Deps{
		Source: &fakeSource{},
		Policy: domain.DefaultPolicy(),
		Runner: &fakeRunner{},
		Config: domain.DefaultConfig(),
	}
	for _, name := range domain.AllGuards {
		g, err := guards.New(name, deps)
		require.NoError(t, err, name)
		assert.Equal(t, name, g.Name())
	}
}

func TestNew_UnknownGuard(t *testing.T) {
	_, err := guards.New("lint", guards.Deps{})
	assert.ErrorIs(t, err, domain.ErrUnknownGuard)
}

func TestNew_BuildNeedsRunner(t *testing.T) {
	_, err := guards.New(domain.GuardBuild, guards.Deps{Config: domain.DefaultConfig()})
	assert.Error(t, err)
}
