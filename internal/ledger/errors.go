package ledger

import "errors"

// Business outcomes of a transition. Callers surface these to the user
// directly and never retry them.
var (
	ErrUnknownRestaurant     = errors.New("unknown restaurant")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired qr token")
	ErrDuplicateScan         = errors.New("qr token already scanned")
	ErrInvalidQRCode         = errors.New("invalid qr code payload")
	ErrSelfReferral          = errors.New("cannot use own referral code")
	ErrCircularReferral      = errors.New("circular referral chain")
	ErrUnknownCode           = errors.New("unknown referral code")
	ErrAlreadyReferred       = errors.New("card already has a referrer")
)
