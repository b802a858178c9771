package registry

import (
	"github.com/kbukum/inventory/errors"
)

// IsValidation reports whether err is a descriptor validation failure.
func IsValidation(err error) bool {
	return errors.HasCode(err, errors.ErrCodeMissingField) ||
		errors.HasCode(err, errors.ErrCodeInvalidInput)
}

// IsUnknownIdentity reports whether err names an identity the registry does
// not hold.
func IsUnknownIdentity(err error) bool {
	return errors.HasCode(err, errors.ErrCodeUnknownIdentity)
}

// IsCallbackFailure reports whether err comes from a lifecycle hook. The
// mutation that triggered the hook has been committed.
func IsCallbackFailure(err error) bool {
	return errors.HasCode(err, errors.ErrCodeCallbackFailed)
}

// IsDuplicate reports whether err rejects an identity that is already
// admitted.
func IsDuplicate(err error) bool {
	return errors.HasCode(err, errors.ErrCodeAlreadyExists)
}
