package model

import "time"

// Snapshot is the complete dataset at a point in time. Owners embed their
// devices; conversations and campaigns are keyed by owner ID.
type Snapshot struct {
	Owners        []Owner                   `json:"users"`
	Conversations map[string][]Conversation `json:"conversations"`
	Campaigns     map[string][]Campaign     `json:"campaigns"`
}

func EmptySnapshot() Snapshot {
	return Snapshot{
		Owners:        []Owner{},
		Conversations: map[string][]Conversation{},
		Campaigns:     map[string][]Campaign{},
	}
}

// Normalize replaces nil top-level containers with empty ones.
func (s *Snapshot) Normalize() {
	if s.Owners == nil {
		s.Owners = []Owner{}
	}
	if s.Conversations == nil {
		s.Conversations = map[string][]Conversation{}
	}
	if s.Campaigns == nil {
		s.Campaigns = map[string][]Campaign{}
	}
}

// Clone returns a deep copy that shares no mutable state with s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Owners:        make([]Owner, len(s.Owners)),
		Conversations: make(map[string][]Conversation, len(s.Conversations)),
		Campaigns:     make(map[string][]Campaign, len(s.Campaigns)),
	}
	for i, o := range s.Owners {
		out.Owners[i] = o.Clone()
	}
	for ownerID, convs := range s.Conversations {
		out.Conversations[ownerID] = CloneConversations(convs)
	}
	for ownerID, camps := range s.Campaigns {
		out.Campaigns[ownerID] = CloneCampaigns(camps)
	}
	return out
}

func (s Snapshot) OwnerIndex(id string) int {
	for i := range s.Owners {
		if s.Owners[i].ID == id {
			return i
		}
	}
	return -1
}

func (s Snapshot) OwnerIndexByLogin(login string) int {
	for i := range s.Owners {
		if s.Owners[i].Login == login {
			return i
		}
	}
	return -1
}

func (o Owner) Clone() Owner {
	cp := o
	cp.Devices = make([]Device, len(o.Devices))
	for i, d := range o.Devices {
		cp.Devices[i] = d.Clone()
	}
	return cp
}

func (o Owner) DeviceIndex(id string) int {
	for i := range o.Devices {
		if o.Devices[i].ID == id {
			return i
		}
	}
	return -1
}

func (d Device) Clone() Device {
	cp := d
	cp.LastAccess = cloneTime(d.LastAccess)
	if d.Metrics != nil {
		cp.Metrics = make(map[string]int, len(d.Metrics))
		for k, v := range d.Metrics {
			cp.Metrics[k] = v
		}
	}
	return cp
}

func (c Conversation) Clone() Conversation {
	cp := c
	if c.Address != nil {
		addr := *c.Address
		cp.Address = &addr
	}
	cp.Messages = append([]Message{}, c.Messages...)
	return cp
}

func (c Campaign) Clone() Campaign {
	cp := c
	cp.TargetGroups = append([]string{}, c.TargetGroups...)
	cp.ScheduledAt = cloneTime(c.ScheduledAt)
	return cp
}

func CloneConversations(in []Conversation) []Conversation {
	out := make([]Conversation, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

func CloneCampaigns(in []Campaign) []Campaign {
	out := make([]Campaign, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
