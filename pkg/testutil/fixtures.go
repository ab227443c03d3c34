package testutil

import (
	"time"

	"github.com/google/uuid"

	compliance "consentd/internal/compliance/models"
	"consentd/internal/consent/models"
	id "consentd/pkg/domain"
)

// TestIDs provides fixed identities for deterministic test data.
var TestIDs = struct {
	Visitor1 id.VisitorID
	Visitor2 id.VisitorID
	User1    id.UserID
	User2    id.UserID
}{
	Visitor1: id.VisitorID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	Visitor2: id.VisitorID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	User1:    id.UserID("teacher-0001"),
	User2:    id.UserID("teacher-0002"),
}

// StateBuilder provides a fluent interface for building stored consent states.
type StateBuilder struct {
	state models.State
}

// NewState starts from an EU accept-all recorded now under version 1.0.
func NewState() *StateBuilder {
	return &StateBuilder{state: models.State{
		Preferences: models.AllGranted(),
		Timestamp:   time.Now().UTC(),
		Version:     "1.0",
		Action:      models.ActionAcceptAll,
		Region:      compliance.RegionEU,
	}}
}

func (b *StateBuilder) WithPreferences(p models.Preferences) *StateBuilder {
	b.state.Preferences = p
	return b
}

func (b *StateBuilder) At(t time.Time) *StateBuilder {
	b.state.Timestamp = t
	return b
}

// Aged moves the timestamp back by d.
func (b *StateBuilder) Aged(d time.Duration) *StateBuilder {
	b.state.Timestamp = b.state.Timestamp.Add(-d)
	return b
}

func (b *StateBuilder) WithVersion(v string) *StateBuilder {
	b.state.Version = v
	return b
}

func (b *StateBuilder) WithAction(a models.Action) *StateBuilder {
	b.state.Action = a
	return b
}

func (b *StateBuilder) InRegion(r compliance.Region) *StateBuilder {
	b.state.Region = r
	return b
}

func (b *StateBuilder) Build() models.State {
	return b.state
}
