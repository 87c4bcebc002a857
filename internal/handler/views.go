package handler

import (
	"time"

	"github.com/jocilejr/whatsbot/internal/model"
)

// ownerView is an owner as exposed over HTTP. The stored secret never leaves
// the server.
type ownerView struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Username  string         `json:"username"`
	CreatedAt time.Time      `json:"created_at"`
	Instances []model.Device `json:"instances"`
}

func newOwnerView(o model.Owner) ownerView {
	devices := o.Devices
	if devices == nil {
		devices = []model.Device{}
	}
	return ownerView{
		ID:        o.ID,
		Name:      o.Name,
		Username:  o.Login,
		CreatedAt: o.CreatedAt,
		Instances: devices,
	}
}

func newOwnerViews(owners []model.Owner) []ownerView {
	out := make([]ownerView, 0, len(owners))
	for _, o := range owners {
		out = append(out, newOwnerView(o))
	}
	return out
}
