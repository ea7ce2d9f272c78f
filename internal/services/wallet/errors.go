package wallet

import apperrors "investa/internal/errors"

// Service errors
var (
	ErrPendingWithdrawalExists = apperrors.Business("PENDING_WITHDRAWAL_EXISTS", "You already have a pending withdrawal request.")
	ErrInsufficientBalance     = apperrors.Business("INSUFFICIENT_BALANCE", "Insufficient balance.")
	ErrWithdrawalProcessed     = apperrors.Business("WITHDRAWAL_PROCESSED", "Withdrawal has already been processed.")
	ErrWithdrawalNotFound      = apperrors.NotFound("WITHDRAWAL_NOT_FOUND", "Withdrawal not found.")
)
