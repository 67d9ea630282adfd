package storage

import "demoreel/internal/ports"

// Provider is the storage contract shared by the API and worker.
type Provider = ports.StorageProvider
