// Package idhash computes deterministic identifiers so re-emitted
// notifications are idempotent for downstream consumers.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeEventID computes a deterministic event id using SHA256.
// Formula: SHA256(pool_account|sequence|type|participant|timestamp)
// Returns hex-encoded hash (64 characters).
func ComputeEventID(poolAccount string, sequence uint64, eventType, participant string, timestamp int64) string {
	data := fmt.Sprintf("%s|%d|%s|%s|%d",
		poolAccount,
		sequence,
		eventType,
		participant,
		timestamp,
	)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
