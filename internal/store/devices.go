package store

import (
	"context"

	"github.com/jocilejr/whatsbot/internal/model"
)

func (s *Store) AddDevice(ctx context.Context, ownerID, name, address string) (model.Device, error) {
	var created model.Device
	err := s.mutate(ctx, "add_device", func(next *model.Snapshot) (bool, error) {
		i := next.OwnerIndex(ownerID)
		if i < 0 {
			return false, ownerNotFound(ownerID)
		}
		created = model.Device{
			ID:        s.newID(),
			Name:      name,
			Address:   address,
			Status:    model.DevicePending,
			CreatedAt: s.now(),
			Metrics:   model.DefaultDeviceMetrics(),
		}
		next.Owners[i].Devices = append(next.Owners[i].Devices, created)
		return true, nil
	})
	if err != nil {
		return model.Device{}, err
	}
	return created.Clone(), nil
}

func (s *Store) ListDevices(ownerID string) ([]model.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.snap.OwnerIndex(ownerID)
	if i < 0 {
		return nil, ownerNotFound(ownerID)
	}
	return s.snap.Owners[i].Clone().Devices, nil
}

// UpdateDevice replaces the device's name and address.
func (s *Store) UpdateDevice(ctx context.Context, ownerID, deviceID, name, address string) (model.Device, error) {
	var updated model.Device
	err := s.mutate(ctx, "update_device", func(next *model.Snapshot) (bool, error) {
		oi, di, err := lookupDevice(next, ownerID, deviceID)
		if err != nil {
			return false, err
		}
		d := &next.Owners[oi].Devices[di]
		d.Name = name
		d.Address = address
		updated = *d
		return true, nil
	})
	if err != nil {
		return model.Device{}, err
	}
	return updated.Clone(), nil
}

// SetDeviceStatus moves the device to status. Any status may follow any
// other. When touchLastAccess is set the last access time becomes now.
func (s *Store) SetDeviceStatus(ctx context.Context, ownerID, deviceID string, status model.DeviceStatus, touchLastAccess bool) (model.Device, error) {
	var updated model.Device
	err := s.mutate(ctx, "set_device_status", func(next *model.Snapshot) (bool, error) {
		oi, di, err := lookupDevice(next, ownerID, deviceID)
		if err != nil {
			return false, err
		}
		d := &next.Owners[oi].Devices[di]
		d.Status = status
		if touchLastAccess {
			now := s.now()
			d.LastAccess = &now
		}
		updated = *d
		return true, nil
	})
	if err != nil {
		return model.Device{}, err
	}
	return updated.Clone(), nil
}

// RemoveDevice drops the device from its owner. Conversations and campaigns
// that reference it keep their device ID.
func (s *Store) RemoveDevice(ctx context.Context, ownerID, deviceID string) (bool, error) {
	removed := false
	err := s.mutate(ctx, "remove_device", func(next *model.Snapshot) (bool, error) {
		oi, di, err := lookupDevice(next, ownerID, deviceID)
		if err != nil {
			return false, nil
		}
		devices := next.Owners[oi].Devices
		next.Owners[oi].Devices = append(devices[:di], devices[di+1:]...)
		removed = true
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}
