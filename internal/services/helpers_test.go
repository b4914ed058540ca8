package services_test

import (
	"sync"

	"github.com/abrezinsky/clubdash/internal/models"
	"github.com/abrezinsky/clubdash/internal/services"
)

const (
	testSeason   = 2025
	testDistance = 50
)

// recordingBroadcaster captures broadcasts for assertions
type recordingBroadcaster struct {
	mu        sync.Mutex
	synced    []*services.SyncResult
	confirmed []models.ConfirmedTeam
	resets    []string
	entries   []string
}

func (b *recordingBroadcaster) BroadcastDataSynced(r *services.SyncResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.synced = append(b.synced, r)
}

func (b *recordingBroadcaster) BroadcastTeamConfirmed(_ string, team models.ConfirmedTeam) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmed = append(b.confirmed, team)
}

func (b *recordingBroadcaster) BroadcastPoolReset(owner string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resets = append(b.resets, owner)
}

func (b *recordingBroadcaster) BroadcastEntryRecorded(kind string, _ []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, kind)
}
