package ledger

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrRequestNotFound     = errors.New("request not found")
	ErrItemNotFound        = errors.New("nft item not found")
	ErrAlreadyCompleted    = errors.New("request already completed")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrCompletionConflict  = errors.New("concurrent completion conflict")
)
