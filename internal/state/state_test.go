package state_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/auralabs/lyra/internal/domain"
	"github.com/auralabs/lyra/internal/state"
)

func TestProfilePatchShallowMerge(t *testing.T) {
	store := state.NewProfileStore(domain.UserProfile{
		Name:        "Ada",
		WeeklyFocus: "System design",
		Checklist:   []domain.Task{{ID: "t-1", Label: "existing"}},
	})

	focus := "Interview prep"
	store.Apply(domain.ProfilePatch{WeeklyFocus: &focus})

	got := store.Get()
	require.Equal(t, "Ada", got.Name, "untouched field survives")
	require.Equal(t, "Interview prep", got.WeeklyFocus)
	require.Len(t, got.Checklist, 1)
}

func TestProfileGetReturnsCopy(t *testing.T) {
	store := state.NewProfileStore(domain.UserProfile{
		Checklist: []domain.Task{{ID: "t-1", Label: "original"}},
	})

	cp := store.Get()
	cp.Checklist[0].Label = "mutated"

	require.Equal(t, "original", store.Get().Checklist[0].Label)
}

func TestSettingsFlags(t *testing.T) {
	store := state.NewSettingsStore(domain.DefaultSettings())

	store.SetFlag("highContrast", true)
	require.True(t, store.Get().HighContrast)

	store.SetFlag("highContrast", false)
	require.False(t, store.Get().HighContrast)

	before := store.Get()
	store.SetFlag("hologramMode", true)
	require.Equal(t, before, store.Get(), "unknown flag is ignored")
}

func TestSettingsVoiceFallsBackToKore(t *testing.T) {
	store := state.NewSettingsStore(domain.DefaultSettings())

	store.SetVoice("Fenrir")
	require.Equal(t, "Fenrir", store.Get().Voice)

	store.SetVoice("NotAVoice")
	require.Equal(t, "Kore", store.Get().Voice)
}
