package model

import "time"

type DeviceStatus string

const (
	DevicePending DeviceStatus = "pending"
	DeviceActive  DeviceStatus = "active"
	DeviceOffline DeviceStatus = "offline"
)

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignPaused    CampaignStatus = "paused"
)

// SelfSender tags messages sent by the owner.
const SelfSender = "me"

const MessageSent = "sent"

type Owner struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Login     string    `json:"username"`
	Secret    string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
	Devices   []Device  `json:"instances"`
}

type Device struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Address    string         `json:"phone"`
	Status     DeviceStatus   `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	LastAccess *time.Time     `json:"last_access"`
	Metrics    map[string]int `json:"metrics"`
}

// DefaultDeviceMetrics is the metric bag a new device starts with.
func DefaultDeviceMetrics() map[string]int {
	return map[string]int{"today": 0, "groups": 0}
}

type Message struct {
	From   string    `json:"from_user"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"time"`
	Status string    `json:"status"`
}

type Conversation struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"user_id"`
	DeviceID  string    `json:"instance_id"`
	Name      string    `json:"name"`
	Address   *string   `json:"phone"`
	Unread    int       `json:"unread"`
	Messages  []Message `json:"messages"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Campaign struct {
	ID           string         `json:"id"`
	OwnerID      string         `json:"user_id"`
	DeviceID     string         `json:"instance_id"`
	Name         string         `json:"name"`
	Message      string         `json:"message"`
	Status       CampaignStatus `json:"status"`
	TargetGroups []string       `json:"target_groups"`
	ScheduledAt  *time.Time     `json:"scheduled_at"`
	CreatedAt    time.Time      `json:"created_at"`
}
