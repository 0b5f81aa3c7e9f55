package models

import (
	"github.com/volatiletech/null"
)

type ListingType string

const (
	BuyListing  ListingType = "buy"
	SellListing ListingType = "sell"
)

type PriceMode string

const (
	PriceEach  PriceMode = "Each"
	PriceTotal PriceMode = "Total"
)

// Listing is a single buy/sell offer on the board. Prices are stored in
// copper, the game's smallest currency unit; PriceMode says whether the
// price is per unit or for the whole stack.
type Listing struct {
	ID               int         `json:"id" db:"id"`
	Item             string      `json:"item" db:"item"`
	Price            int         `json:"price" db:"price"`
	Quantity         int         `json:"quantity" db:"quantity"`
	Type             ListingType `json:"type" db:"type"`
	Category         null.String `json:"category" db:"category"`
	CombatCategory   null.String `json:"combatCategory" db:"combat_category"`
	CombatLevel      null.String `json:"combatLevel" db:"combat_level"`
	CombatStrength   null.String `json:"combatStrength" db:"combat_strength"`
	CombatDmgType    null.String `json:"combatDmgType" db:"combat_dmg_type"`
	CombatDmgPercent null.String `json:"combatDmgPercent" db:"combat_dmg_percent"`
	ResistMelee      null.String `json:"resistMelee" db:"resist_melee"`
	ResistRanged     null.String `json:"resistRanged" db:"resist_ranged"`
	ResistMagic      null.String `json:"resistMagic" db:"resist_magic"`
	Rarity           null.String `json:"rarity" db:"rarity"`
	Seller           string      `json:"seller" db:"seller"`
	SellerID         string      `json:"sellerId" db:"seller_id"`
	SellerAvatar     null.String `json:"sellerAvatar" db:"seller_avatar"`
	ContactInfo      null.String `json:"contactInfo" db:"contact_info"`
	PriceMode        PriceMode   `json:"priceMode" db:"price_mode"`
	Timestamp        int64       `json:"timestamp" db:"timestamp"`
}

// ListingInput carries the client-writable fields of a listing. Seller
// identity and timestamps are never taken from the client; the service
// stamps them from the authenticated user.
type ListingInput struct {
	Item             string      `json:"item"`
	Price            int         `json:"price"`
	Quantity         int         `json:"quantity"`
	Type             ListingType `json:"type"`
	Category         null.String `json:"category"`
	CombatCategory   null.String `json:"combatCategory"`
	CombatLevel      null.String `json:"combatLevel"`
	CombatStrength   null.String `json:"combatStrength"`
	CombatDmgType    null.String `json:"combatDmgType"`
	CombatDmgPercent null.String `json:"combatDmgPercent"`
	ResistMelee      null.String `json:"resistMelee"`
	ResistRanged     null.String `json:"resistRanged"`
	ResistMagic      null.String `json:"resistMagic"`
	Rarity           null.String `json:"rarity"`
	ContactInfo      null.String `json:"contactInfo"`
	PriceMode        PriceMode   `json:"priceMode"`
}
