package douyin

import errs "dydl/pkg/errors"

// Signer computes the anti-bot token appended to web API query strings as
// X-Bogus. The algorithm itself is not part of this module; callers plug
// in an implementation, typically backed by an external helper.
type Signer interface {
	Sign(query, userAgent string) (string, error)
}

// SignerFunc adapts a function to the Signer interface
type SignerFunc func(query, userAgent string) (string, error)

func (f SignerFunc) Sign(query, userAgent string) (string, error) {
	return f(query, userAgent)
}

// NopSigner always fails, which the client treats as "send unsigned".
// Unsigned requests still succeed against a fair share of endpoints and
// the fallback detail endpoint never requires a token.
type NopSigner struct{}

func (NopSigner) Sign(string, string) (string, error) {
	return "", errs.New(errs.ErrorTypeSigning, "no signer configured")
}
