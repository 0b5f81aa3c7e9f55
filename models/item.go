package models

import "github.com/volatiletech/null"

// CatalogItem is one entry of the static item catalog served to the
// frontend for autocomplete. Combat fields are present only for weapons
// and armor.
type CatalogItem struct {
	Name             string      `json:"name"`
	Category         string      `json:"category"`
	CombatCategory   null.String `json:"combatCategory"`
	CombatLevel      null.String `json:"combatLevel"`
	CombatStrength   null.String `json:"combatStrength"`
	CombatDmgType    null.String `json:"combatDmgType"`
	CombatDmgPercent null.String `json:"combatDmgPercent"`
	ResistMelee      null.String `json:"resistMelee"`
	ResistRanged     null.String `json:"resistRanged"`
	ResistMagic      null.String `json:"resistMagic"`
	Rarity           null.String `json:"rarity"`
}
