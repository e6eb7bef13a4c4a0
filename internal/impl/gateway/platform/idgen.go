package impl_platform

import "github.com/google/uuid"

// UUIDGenerator hands out random (v4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewUUID() uuid.UUID { return uuid.New() }
