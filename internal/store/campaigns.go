package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jocilejr/whatsbot/internal/model"
)

// CampaignInput carries the caller-editable campaign fields. An empty Status
// means draft on create and "unchanged" on update.
type CampaignInput struct {
	Name         string
	Message      string
	DeviceID     string
	TargetGroups []string
	ScheduledAt  *time.Time
	Status       model.CampaignStatus
}

func campaignNotFound(id string) error {
	return fmt.Errorf("campaign %s: %w", id, ErrNotFound)
}

func campaignIndex(camps []model.Campaign, id string) int {
	for i := range camps {
		if camps[i].ID == id {
			return i
		}
	}
	return -1
}

// uniqueGroups keeps the first occurrence of every group, in order.
func uniqueGroups(groups []string) []string {
	out := make([]string, 0, len(groups))
	seen := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func (s *Store) ListCampaigns(ownerID string) []model.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneCampaigns(s.snap.Campaigns[ownerID])
}

func (s *Store) GetCampaign(ownerID, id string) (model.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	camps := s.snap.Campaigns[ownerID]
	i := campaignIndex(camps, id)
	if i < 0 {
		return model.Campaign{}, campaignNotFound(id)
	}
	return camps[i].Clone(), nil
}

func (s *Store) CreateCampaign(ctx context.Context, ownerID string, in CampaignInput) (model.Campaign, error) {
	var created model.Campaign
	err := s.mutate(ctx, "create_campaign", func(next *model.Snapshot) (bool, error) {
		if _, _, err := lookupDevice(next, ownerID, in.DeviceID); err != nil {
			return false, err
		}
		status := in.Status
		if status == "" {
			status = model.CampaignDraft
		}
		created = model.Campaign{
			ID:           s.newID(),
			OwnerID:      ownerID,
			DeviceID:     in.DeviceID,
			Name:         in.Name,
			Message:      in.Message,
			Status:       status,
			TargetGroups: uniqueGroups(in.TargetGroups),
			ScheduledAt:  copyTime(in.ScheduledAt),
			CreatedAt:    s.now(),
		}
		next.Campaigns[ownerID] = append(next.Campaigns[ownerID], created)
		return true, nil
	})
	if err != nil {
		return model.Campaign{}, err
	}
	return created.Clone(), nil
}

// UpdateCampaign replaces the campaign's editable fields. Status changes are
// unrestricted.
func (s *Store) UpdateCampaign(ctx context.Context, ownerID, id string, in CampaignInput) (model.Campaign, error) {
	var updated model.Campaign
	err := s.mutate(ctx, "update_campaign", func(next *model.Snapshot) (bool, error) {
		camps := next.Campaigns[ownerID]
		i := campaignIndex(camps, id)
		if i < 0 {
			return false, campaignNotFound(id)
		}
		if _, _, err := lookupDevice(next, ownerID, in.DeviceID); err != nil {
			return false, err
		}
		c := &camps[i]
		c.Name = in.Name
		c.Message = in.Message
		c.DeviceID = in.DeviceID
		c.TargetGroups = uniqueGroups(in.TargetGroups)
		c.ScheduledAt = copyTime(in.ScheduledAt)
		if in.Status != "" {
			c.Status = in.Status
		}
		updated = *c
		return true, nil
	})
	if err != nil {
		return model.Campaign{}, err
	}
	return updated.Clone(), nil
}

func (s *Store) DeleteCampaign(ctx context.Context, ownerID, id string) (bool, error) {
	deleted := false
	err := s.mutate(ctx, "delete_campaign", func(next *model.Snapshot) (bool, error) {
		camps := next.Campaigns[ownerID]
		i := campaignIndex(camps, id)
		if i < 0 {
			return false, nil
		}
		next.Campaigns[ownerID] = append(camps[:i], camps[i+1:]...)
		deleted = true
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
