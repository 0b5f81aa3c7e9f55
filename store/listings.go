package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/bazaarhq/bazaar-server/database"
	"github.com/bazaarhq/bazaar-server/models"
	"github.com/jmoiron/sqlx"
)

// ErrNotOwner is returned when a mutation is attempted by an identity
// other than the listing's seller.
var ErrNotOwner = errors.New("listing belongs to another seller")

const listingColumns = `
			id,
			item,
			price,
			quantity,
			type,
			category,
			combat_category,
			combat_level,
			combat_strength,
			combat_dmg_type,
			combat_dmg_percent,
			resist_melee,
			resist_ranged,
			resist_magic,
			rarity,
			seller,
			seller_id,
			seller_avatar,
			contact_info,
			price_mode,
			timestamp`

// ListingRepository owns all access to the listings table. A single
// instance is built at startup and shared by every handler.
type ListingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// List returns every listing, newest first. Filtering and any other sort
// order are client-side concerns.
func (r *ListingRepository) List() ([]models.Listing, error) {
	SQL := `SELECT ` + listingColumns + `
		FROM listings
		ORDER BY timestamp DESC`

	listings := make([]models.Listing, 0)
	err := r.db.Select(&listings, SQL)
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// GetByID returns the listing with the given id, or sql.ErrNoRows.
func (r *ListingRepository) GetByID(listingID int) (*models.Listing, error) {
	SQL := `SELECT ` + listingColumns + `
		FROM listings
		WHERE id = $1`

	var listing models.Listing
	err := r.db.Get(&listing, SQL, listingID)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// Create inserts a new listing stamped with the authenticated identity and
// the current time, and returns the persisted row. Seller fields in the
// input are never consulted.
func (r *ListingRepository) Create(in models.ListingInput, user models.AuthUser) (*models.Listing, error) {
	normalize(&in)

	SQL := `INSERT INTO listings(item, price, quantity, type, category,
				combat_category, combat_level, combat_strength, combat_dmg_type, combat_dmg_percent,
				resist_melee, resist_ranged, resist_magic, rarity,
				seller, seller_id, seller_avatar, contact_info, price_mode, timestamp)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
			RETURNING id`

	var listingID int
	err := r.db.Get(&listingID, SQL,
		in.Item, in.Price, in.Quantity, in.Type, in.Category,
		in.CombatCategory, in.CombatLevel, in.CombatStrength, in.CombatDmgType, in.CombatDmgPercent,
		in.ResistMelee, in.ResistRanged, in.ResistMagic, in.Rarity,
		user.Username, user.ID, user.Avatar, in.ContactInfo, in.PriceMode, time.Now().UnixMilli())
	if err != nil {
		return nil, err
	}
	return r.GetByID(listingID)
}

// Update overwrites every mutable field of an owned listing and refreshes
// its timestamp. The load, ownership check and write run in one
// transaction so a concurrent delete cannot resurrect the row.
func (r *ListingRepository) Update(listingID int, in models.ListingInput, user models.AuthUser) (*models.Listing, error) {
	normalize(&in)

	var updated models.Listing
	err := database.Tx(r.db, func(tx *sqlx.Tx) error {
		var sellerID string
		if err := tx.Get(&sellerID, `SELECT seller_id FROM listings WHERE id = $1`, listingID); err != nil {
			return err
		}
		if sellerID != user.ID {
			return ErrNotOwner
		}

		SQL := `UPDATE listings
			SET item               = $1,
				price              = $2,
				quantity           = $3,
				type               = $4,
				category           = $5,
				combat_category    = $6,
				combat_level       = $7,
				combat_strength    = $8,
				combat_dmg_type    = $9,
				combat_dmg_percent = $10,
				resist_melee       = $11,
				resist_ranged      = $12,
				resist_magic       = $13,
				rarity             = $14,
				seller             = $15,
				seller_avatar      = $16,
				contact_info       = $17,
				price_mode         = $18,
				timestamp          = $19
			WHERE id = $20`
		if _, err := tx.Exec(SQL,
			in.Item, in.Price, in.Quantity, in.Type, in.Category,
			in.CombatCategory, in.CombatLevel, in.CombatStrength, in.CombatDmgType, in.CombatDmgPercent,
			in.ResistMelee, in.ResistRanged, in.ResistMagic, in.Rarity,
			user.Username, user.Avatar, in.ContactInfo, in.PriceMode, time.Now().UnixMilli(), listingID); err != nil {
			return err
		}

		return tx.Get(&updated, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, listingID)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteOwned removes a listing after checking the caller owns it.
func (r *ListingRepository) DeleteOwned(listingID int, sellerID string) error {
	return database.Tx(r.db, func(tx *sqlx.Tx) error {
		var owner string
		if err := tx.Get(&owner, `SELECT seller_id FROM listings WHERE id = $1`, listingID); err != nil {
			return err
		}
		if owner != sellerID {
			return ErrNotOwner
		}
		_, err := tx.Exec(`DELETE FROM listings WHERE id = $1`, listingID)
		return err
	})
}

// Delete removes a listing unconditionally. Admin path only.
func (r *ListingRepository) Delete(listingID int) error {
	result, err := r.db.Exec(`DELETE FROM listings WHERE id = $1`, listingID)
	if err != nil {
		return err
	}
	affectedCount, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affectedCount == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// normalize backfills the defaults the frontend relies on. Anything
// beyond this is bound straight into the row.
func normalize(in *models.ListingInput) {
	if in.Quantity < 1 {
		in.Quantity = 1
	}
	if in.Type == "" {
		in.Type = models.SellListing
	}
	if in.PriceMode == "" {
		in.PriceMode = models.PriceEach
	}
}
