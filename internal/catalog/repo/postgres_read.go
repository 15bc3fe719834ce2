package repo

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/radieske/nft-market-backoffice-poc/internal/catalog/dto"
)

type ReadRepo struct {
	DB *sql.DB
}

func (r *ReadRepo) GetItem(ctx context.Context, itemID string) (*dto.Item, error) {
	const q = `
		SELECT id, name, collection_id, owner_id, is_listed, list_price, rarity, views
		FROM nft_items
		WHERE id = $1;
	`
	var it dto.Item
	var collectionID, ownerID, rarity sql.NullString
	var listPrice decimal.NullDecimal
	err := r.DB.QueryRowContext(ctx, q, itemID).
		Scan(&it.ID, &it.Name, &collectionID, &ownerID, &it.IsListed, &listPrice, &rarity, &it.Views)
	if err != nil {
		return nil, err
	}
	it.CollectionID = collectionID.String
	it.OwnerID = ownerID.String
	it.Rarity = rarity.String
	if listPrice.Valid {
		it.ListPrice = listPrice.Decimal
	}
	return &it, nil
}

func (r *ReadRepo) ListByCollection(ctx context.Context, collectionID string) ([]dto.Item, error) {
	const q = `
		SELECT id, name, collection_id, owner_id, is_listed, list_price, rarity, views
		FROM nft_items
		WHERE collection_id = $1
		ORDER BY views DESC;
	`
	rows, err := r.DB.QueryContext(ctx, q, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dto.Item
	for rows.Next() {
		var it dto.Item
		var cID, ownerID, rarity sql.NullString
		var listPrice decimal.NullDecimal
		if err := rows.Scan(&it.ID, &it.Name, &cID, &ownerID, &it.IsListed, &listPrice, &rarity, &it.Views); err != nil {
			return nil, err
		}
		it.CollectionID = cID.String
		it.OwnerID = ownerID.String
		it.Rarity = rarity.String
		if listPrice.Valid {
			it.ListPrice = listPrice.Decimal
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
