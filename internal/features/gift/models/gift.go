package models

import (
	"encoding/json"
	"time"
)

// TraitItem is one entry of a weighted trait pool. Weight is expressed in
// parts per thousand; Attributes carries catalog payload (image reference,
// colors) that the backend stores but never interprets.
type TraitItem struct {
	Name       string          `json:"name"`
	Weight     int             `json:"weight"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
}

// TraitCatalog holds the three trait pools of a gift type.
type TraitCatalog struct {
	Models    []TraitItem `json:"models"`
	Backdrops []TraitItem `json:"backdrops"`
	Patterns  []TraitItem `json:"patterns"`
}

// Gift is a user-owned item. IsCollectible is a one-way latch: once a gift
// has been upgraded it stays a collectible forever. Pinned/Worn/PinOrder are
// plain visibility toggles owned by the profile layer; they are stripped when
// the gift changes hands.
type Gift struct {
	ID            string    `json:"id"`
	OwnerID       int64     `json:"owner_id"`
	GiftType      string    `json:"gift_type"`
	IsCollectible bool      `json:"is_collectible"`
	Pinned        bool      `json:"pinned"`
	Worn          bool      `json:"worn"`
	PinOrder      int       `json:"pin_order"`
	AcquiredAt    time.Time `json:"acquired_at"`
}

// Collectible is the one-time materialization of an upgraded gift.
type Collectible struct {
	GiftID       string    `json:"gift_id"`
	GiftType     string    `json:"gift_type"`
	Model        TraitItem `json:"model"`
	Backdrop     TraitItem `json:"backdrop"`
	Pattern      TraitItem `json:"pattern"`
	SerialNumber int       `json:"serial_number"`
	Supply       int       `json:"supply"`
	UpgradedAt   time.Time `json:"upgraded_at"`
}

// UpgradeOverrides lets a caller fix individual traits instead of rolling
// them. Nil fields are rolled from the catalog pools.
type UpgradeOverrides struct {
	Model    *TraitItem `json:"model,omitempty"`
	Backdrop *TraitItem `json:"backdrop,omitempty"`
	Pattern  *TraitItem `json:"pattern,omitempty"`
}

// CollectibleResponse is the delivery-layer view of an upgraded gift.
type CollectibleResponse struct {
	Collectible
	Rarity RarityTier `json:"rarity"`
}
