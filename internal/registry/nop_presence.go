package registry

import "context"

// NopPresence keeps no cross-instance record. Used when redis is disabled.
type NopPresence struct{}

func (NopPresence) MarkOnline(context.Context, string) error { return nil }

func (NopPresence) MarkOffline(context.Context, string) error { return nil }

func (NopPresence) IsOnline(context.Context, string) (bool, error) { return false, nil }

func (NopPresence) StartHeartbeat(context.Context) error { return nil }

func (NopPresence) StopHeartbeat() {}

func (NopPresence) Close() error { return nil }
