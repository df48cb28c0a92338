package portfolio

import "context"

type ChangeType string

const (
	ChangeProfileUpdated ChangeType = "profile.updated"
	ChangeItemCreated    ChangeType = "item.created"
	ChangeItemUpdated    ChangeType = "item.updated"
	ChangeItemDeleted    ChangeType = "item.deleted"
)

// ChangeEvent describes a write that the backing store has already confirmed.
type ChangeEvent struct {
	Type   ChangeType
	ItemID string
	Kind   Kind
}

// ChangeNotifier fans confirmed writes out to other processes serving the same content.
type ChangeNotifier interface {
	NotifyChange(ctx context.Context, ev ChangeEvent) error
}

type NopNotifier struct{}

func (NopNotifier) NotifyChange(context.Context, ChangeEvent) error { return nil }
