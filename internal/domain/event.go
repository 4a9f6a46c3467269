package domain

// EventType identifies a pool notification.
type EventType string

// Notification types emitted by the engine. The wire shape of PoolEvent is
// stable: external observers and indexers key off these names.
const (
	EventPoolInitialized     EventType = "POOL_INITIALIZED"
	EventDepositAccepted     EventType = "DEPOSIT_ACCEPTED"
	EventClaimCompleted      EventType = "CLAIM_COMPLETED"
	EventEmergencyWithdrawal EventType = "EMERGENCY_WITHDRAWAL"
	EventPoolPaused          EventType = "POOL_PAUSED"
	EventPoolUnpaused        EventType = "POOL_UNPAUSED"
	EventAssetRecovered      EventType = "ASSET_RECOVERED"
	EventRoleGranted         EventType = "ROLE_GRANTED"
	EventRoleRevoked         EventType = "ROLE_REVOKED"
)

// PoolEvent is one emitted notification. Fields not relevant to a given
// type are zero: a deposit carries Amount only, a claim additionally
// carries Fee and Reward, a recovery carries Asset and Amount.
type PoolEvent struct {
	EventID     string    `json:"event_id"` // deterministic, see internal/idhash
	Type        EventType `json:"type"`
	Participant Address   `json:"participant,omitempty"` // actor or affected identity
	Amount      uint64    `json:"amount,omitempty"`      // deposited / refunded / recovered base units
	Fee         uint64    `json:"fee,omitempty"`         // claim fee paid to the fee recipient
	Reward      uint64    `json:"reward,omitempty"`      // reward token base units transferred
	Asset       Asset     `json:"asset,omitempty"`       // recovered asset handle
	Timestamp   int64     `json:"timestamp"`             // unix seconds
	Sequence    uint64    `json:"sequence"`              // per-pool monotonic ordinal
}
