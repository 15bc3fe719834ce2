package dto

// valores monetários trafegam como string decimal, ex: "78.50"

type CreateProfileRequest struct {
	UserID         string `json:"userId,omitempty"` // gerado quando ausente
	Email          string `json:"email,omitempty"`
	Username       string `json:"username,omitempty"`
	InitialBalance string `json:"initial_balance,omitempty"`
}

type AdjustBalanceRequest struct {
	UserID    string `json:"userId"`
	Amount    string `json:"amount"`
	Operation string `json:"operation"` // "add" | "subtract"
	Reason    string `json:"reason,omitempty"`
}

type CreateWithdrawalRequest struct {
	UserID             string `json:"userId"`
	NFTItemID          string `json:"nft_item_id,omitempty"`
	WithdrawalFee      string `json:"withdrawal_fee,omitempty"`
	DestinationAddress string `json:"destination_address,omitempty"`
}

type CreateDepositRequest struct {
	UserID string `json:"userId"`
	Amount string `json:"amount"`
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}
