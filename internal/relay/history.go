package relay

import (
	"fmt"
	"sort"

	"github.com/segmentio/fasthash/jody"

	"github.com/abrezinsky/clubdash/internal/models"
	"github.com/abrezinsky/clubdash/internal/swimtime"
)

type pastSwim struct {
	members []string // sorted
	time    float64
	venueID string
}

// History indexes past relay swims by the set of their four members
type History struct {
	byTeam map[uint64][]pastSwim
	venues map[string]models.Venue
}

// NewHistory builds the index. Rows without exactly four members or without
// a readable time are ignored.
func NewHistory(results []models.RelayResult, venues []models.Venue) *History {
	h := &History{
		byTeam: make(map[uint64][]pastSwim),
		venues: make(map[string]models.Venue, len(venues)),
	}
	for _, v := range venues {
		h.venues[v.ID] = v
	}
	for _, r := range results {
		if len(r.MemberIDs) != 4 {
			continue
		}
		t := swimtime.Parse(r.Time)
		if swimtime.IsNoTime(t) {
			continue
		}
		members := sortedCopy(r.MemberIDs)
		key := teamKey(members)
		h.byTeam[key] = append(h.byTeam[key], pastSwim{
			members: members,
			time:    t,
			venueID: r.VenueID,
		})
	}
	return h
}

// Fastest returns the best past swim by exactly this set of swimmers
func (h *History) Fastest(memberIDs []string) (time float64, venue models.Venue, ok bool) {
	if h == nil || len(memberIDs) != 4 {
		return 0, models.Venue{}, false
	}
	members := sortedCopy(memberIDs)
	best := swimtime.NoTime
	var bestVenue string
	for _, s := range h.byTeam[teamKey(members)] {
		if !sameMembers(s.members, members) {
			continue
		}
		if !ok || s.time < best {
			best, bestVenue, ok = s.time, s.venueID, true
		}
	}
	if !ok {
		return 0, models.Venue{}, false
	}
	venue, found := h.venues[bestVenue]
	if !found {
		venue = models.Venue{ID: bestVenue, Name: bestVenue}
	}
	return best, venue, true
}

// Note describes the team's fastest past swim, or "" if they never swam together
func (h *History) Note(memberIDs []string) string {
	t, venue, ok := h.Fastest(memberIDs)
	if !ok {
		return ""
	}
	if venue.CourseLength > 0 {
		return fmt.Sprintf("Swum together before: %s at %s (%dm)", swimtime.Format(t), venue.Name, venue.CourseLength)
	}
	return fmt.Sprintf("Swum together before: %s at %s", swimtime.Format(t), venue.Name)
}

func teamKey(sorted []string) uint64 {
	h := jody.Init64
	for _, id := range sorted {
		h = jody.AddString64(h, id)
		h = jody.AddUint64(h, 0)
	}
	return h
}

func sortedCopy(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
