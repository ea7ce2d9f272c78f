package roi

import apperrors "investa/internal/errors"

var (
	ErrSweepInProgress     = apperrors.Business("SWEEP_IN_PROGRESS", "An ROI sweep for this date is already running.")
	ErrFutureDate          = apperrors.Business("FUTURE_DATE", "ROI cannot be generated for a future date.")
	ErrWeekend             = apperrors.Business("WEEKEND", "ROI is not generated on weekends.")
	ErrAlreadyGenerated    = apperrors.Business("ROI_ALREADY_GENERATED", "ROI has already been generated for this date.")
	ErrNoActiveRate        = apperrors.Business("NO_ACTIVE_RATE", "No active daily investment rate found.")
	ErrNoCompletedDeposits = apperrors.Business("NO_COMPLETED_DEPOSITS", "No completed deposits found.")
)
