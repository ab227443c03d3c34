package testutil

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	compliance "consentd/internal/compliance/models"
	"consentd/internal/consent/models"
	"consentd/pkg/platform/sentinel"
)

func TestRunConcurrent(t *testing.T) {
	res := RunConcurrent(30, func(idx int) error {
		switch idx % 3 {
		case 0:
			return nil
		case 1:
			return fmt.Errorf("kv get: %w", sentinel.ErrUnavailable)
		default:
			return errors.New("boom")
		}
	})

	assert.EqualValues(t, 10, res.Successes)
	assert.EqualValues(t, 10, res.Unavailable)
	assert.EqualValues(t, 10, res.Errors)
	assert.EqualValues(t, 30, res.Total())
}

func TestCollectKeepsIndexOrder(t *testing.T) {
	got := Collect(5, func(idx int) int { return idx * idx })
	assert.Equal(t, []int{0, 1, 4, 9, 16}, got)
}

func TestStateBuilder(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	state := NewState().
		At(at).
		Aged(48 * time.Hour).
		WithPreferences(models.EssentialOnly()).
		WithAction(models.ActionRejectAll).
		WithVersion("0.9").
		InRegion(compliance.RegionUK).
		Build()

	assert.Equal(t, at.Add(-48*time.Hour), state.Timestamp)
	assert.Equal(t, models.EssentialOnly(), state.Preferences)
	assert.Equal(t, models.ActionRejectAll, state.Action)
	assert.Equal(t, "0.9", state.Version)
	assert.Equal(t, compliance.RegionUK, state.Region)
}
