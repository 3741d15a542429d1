package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrMemberNotFound indicates that a member with the given ID, phone or
	// membership ID does not exist. Also returned when the Company Account
	// cannot be resolved.
	ErrMemberNotFound = errors.New("member not found")

	// ErrDividendNotFound indicates that a dividend event with the given ID does not exist.
	ErrDividendNotFound = errors.New("dividend event not found")

	// ErrSharePriceNotFound indicates no share price record for a year/month combination.
	ErrSharePriceNotFound = errors.New("share price not found")

	// ErrUnknownReport indicates that the requested report type is not supported.
	ErrUnknownReport = errors.New("unknown report type")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrPriceNotSet indicates that no share price is configured for the period
	// an investment, withdrawal or report was requested for.
	ErrPriceNotSet = errors.New("share price not set for period")

	// ErrPriceRequired indicates that a withdrawal was submitted without a positive share price.
	ErrPriceRequired = errors.New("share price is required")

	// ErrPeriodLocked indicates an attempt to record activity outside the current calendar month.
	ErrPeriodLocked = errors.New("period is locked: only the current month can be edited")

	// ErrDuplicateInvestment indicates that the member already has an investment for the period.
	ErrDuplicateInvestment = errors.New("investment already recorded for this period")

	// ErrInsufficientShares indicates that a withdrawal would exceed the member's share balance.
	ErrInsufficientShares = errors.New("insufficient shares for withdrawal")

	// ErrValidation indicates malformed input such as a non-positive amount.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrDividendNotPending indicates that a dividend event has already been confirmed.
	ErrDividendNotPending = errors.New("dividend event is not pending")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToRetrieveMembers     = errors.New("failed to retrieve members")
	ErrFailedToRetrieveMember      = errors.New("failed to retrieve member")
	ErrFailedToRetrieveSharePrices = errors.New("failed to retrieve share prices")
	ErrFailedToRetrieveDividends   = errors.New("failed to retrieve dividends")
	ErrFailedToRetrievePool        = errors.New("failed to retrieve company pool")
	ErrFailedToBuildReport         = errors.New("failed to build report")
	ErrFailedToRecordActivity      = errors.New("failed to record activity")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrDataInconsistency indicates that the data is in an inconsistent state.
	ErrDataInconsistency = errors.New("data inconsistency detected")
)
