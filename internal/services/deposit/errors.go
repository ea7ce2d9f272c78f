package deposit

import apperrors "investa/internal/errors"

var (
	ErrMembershipUnpaid  = apperrors.Forbidden("MEMBERSHIP_UNPAID", "You must pay the membership fee before making a deposit.")
	ErrDepositNotFound   = apperrors.NotFound("DEPOSIT_NOT_FOUND", "Deposit not found.")
	ErrDepositNotOwned   = apperrors.NotFound("DEPOSIT_NOT_OWNED", "Deposit not found or you do not have permission to update it.")
	ErrDepositNotPending = apperrors.Forbidden("DEPOSIT_NOT_PENDING", "Cannot update reference number for a deposit that is not pending.")
	ErrDepositCompleted  = apperrors.Business("DEPOSIT_COMPLETED", "A completed deposit cannot change status.")
)
