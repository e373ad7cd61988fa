package booking

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a BookingError for callers such as the HTTP layer.
type ErrorKind string

const (
	KindValidation    ErrorKind = "VALIDATION"
	KindConflict      ErrorKind = "CONFLICT"
	KindAuthorization ErrorKind = "AUTHORIZATION"
	KindBusinessRule  ErrorKind = "BUSINESS_RULE"
	KindNotFound      ErrorKind = "NOT_FOUND"
)

// Error codes returned by the booking service.
const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInvalidDuration  = "INVALID_DURATION"
	CodeScheduledInPast  = "SCHEDULED_TIME_NOT_IN_FUTURE"
	CodeInvalidDateRange = "INVALID_DATE_RANGE"

	CodeDuplicateBooking     = "DUPLICATE_BOOKING"
	CodeTimeSlotNotAvailable = "TIME_SLOT_NOT_AVAILABLE"

	CodeSpecialistNotAuthorized   = "SPECIALIST_NOT_AUTHORIZED"
	CodeCustomerNotActive         = "CUSTOMER_NOT_ACTIVE"
	CodeCancellationNotAuthorized = "CANCELLATION_NOT_AUTHORIZED"

	CodeInsufficientLoyaltyPoints = "INSUFFICIENT_LOYALTY_POINTS"
	CodeRedemptionExpired         = "REWARD_REDEMPTION_EXPIRED"
	CodeRedemptionNotApproved     = "REWARD_REDEMPTION_NOT_APPROVED"
	CodeRedemptionNotOwned        = "REWARD_REDEMPTION_NOT_OWNED"
	CodeRedemptionWrongSpecialist = "REWARD_REDEMPTION_NOT_FOR_THIS_SPECIALIST"
	CodeRedemptionWrongService    = "REWARD_REDEMPTION_NOT_FOR_THIS_SERVICE"
	CodeCancellationTooLate       = "CANCELLATION_TOO_LATE"
	CodeCancellationNotAllowed    = "CANCELLATION_NOT_ALLOWED"
	CodeBookingNotPending         = "BOOKING_NOT_PENDING"
	CodeBookingNotConfirmed       = "BOOKING_NOT_CONFIRMED"
	CodeBookingNotInProgress      = "BOOKING_NOT_IN_PROGRESS"
	CodePaymentNotConfirmed       = "PAYMENT_NOT_CONFIRMED"
	CodeCannotBookOwnService      = "CANNOT_BOOK_OWN_SERVICE"
	CodeInvalidStatusTransition   = "INVALID_STATUS_TRANSITION"

	CodeServiceNotFound    = "SERVICE_NOT_FOUND"
	CodeBookingNotFound    = "BOOKING_NOT_FOUND"
	CodeCustomerNotFound   = "CUSTOMER_NOT_FOUND"
	CodeSpecialistNotFound = "SPECIALIST_NOT_FOUND"
	CodeRedemptionNotFound = "REWARD_REDEMPTION_NOT_FOUND"
)

// BookingError is a typed failure returned to the caller of a booking operation.
type BookingError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(kind ErrorKind, code, format string, args ...any) *BookingError {
	return &BookingError{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func validationError(code, format string, args ...any) *BookingError {
	return newError(KindValidation, code, format, args...)
}

func conflictError(code, format string, args ...any) *BookingError {
	return newError(KindConflict, code, format, args...)
}

func authorizationError(code, format string, args ...any) *BookingError {
	return newError(KindAuthorization, code, format, args...)
}

func ruleError(code, format string, args ...any) *BookingError {
	return newError(KindBusinessRule, code, format, args...)
}

func notFoundError(code, format string, args ...any) *BookingError {
	return newError(KindNotFound, code, format, args...)
}

// AsBookingError unwraps err to a *BookingError if it is one.
func AsBookingError(err error) (*BookingError, bool) {
	var be *BookingError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsCode reports whether err is a BookingError with the given code.
func IsCode(err error, code string) bool {
	be, ok := AsBookingError(err)
	return ok && be.Code == code
}
