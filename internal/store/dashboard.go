package store

import (
	"time"

	"github.com/jocilejr/whatsbot/internal/model"
)

// Dashboard aggregates an owner's records at one point in time.
type Dashboard struct {
	Owner               model.Owner
	DeviceCount         int
	ActiveDeviceCount   int
	ConversationCount   int
	UnreadTotal         int
	ActiveCampaignCount int
	MessagesToday       int
}

func (s *Store) Dashboard(ownerID string) (Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.snap.OwnerIndex(ownerID)
	if i < 0 {
		return Dashboard{}, ownerNotFound(ownerID)
	}
	owner := s.snap.Owners[i]
	d := Dashboard{
		Owner:       owner.Clone(),
		DeviceCount: len(owner.Devices),
	}
	for _, dev := range owner.Devices {
		if dev.Status == model.DeviceActive {
			d.ActiveDeviceCount++
		}
	}

	today := s.now()
	for _, c := range s.snap.Conversations[ownerID] {
		d.ConversationCount++
		d.UnreadTotal += c.Unread
		for _, msg := range c.Messages {
			if sameDay(msg.SentAt, today) {
				d.MessagesToday++
			}
		}
	}
	for _, c := range s.snap.Campaigns[ownerID] {
		if c.Status == model.CampaignActive {
			d.ActiveCampaignCount++
		}
	}
	return d, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
