package dto

import "github.com/shopspring/decimal"

// Item é a visão de leitura de um NFT do marketplace.
type Item struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	CollectionID string          `json:"collection_id,omitempty"`
	OwnerID      string          `json:"owner_id,omitempty"`
	IsListed     bool            `json:"is_listed"`
	ListPrice    decimal.Decimal `json:"list_price"`
	Rarity       string          `json:"rarity,omitempty"`
	Views        int64           `json:"views"`
}
