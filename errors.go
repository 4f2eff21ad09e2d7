package goToken

import (
	"errors"

	"github.com/MrEthical07/goToken/jwt"
)

var (
	// ErrInvalidArgument reports an empty required value (secret, algorithm, subject).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupportedAlgorithm reports an algorithm outside HS256, HS384 and HS512.
	ErrUnsupportedAlgorithm = jwt.ErrUnsupportedAlgorithm
	// ErrInvalidLifetime reports a non-positive lifetime.
	ErrInvalidLifetime = errors.New("invalid lifetime")
	// ErrUnknownLifetimePreset reports a lifetime name other than 1day, 1week or 1month.
	ErrUnknownLifetimePreset = errors.New("unknown lifetime preset")
	// ErrIDGeneration reports a failure of the jti generator.
	ErrIDGeneration = errors.New("token id generation failed")

	// ErrMalformedToken reports a token that cannot be split or decoded.
	ErrMalformedToken = errors.New("malformed token")
	// ErrSignatureInvalid reports a signature that does not match header and payload.
	ErrSignatureInvalid = jwt.ErrSignatureInvalid
	// ErrTokenExpired reports a token at or past its exp claim.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenNotYetValid reports a token before its nbf claim.
	ErrTokenNotYetValid = errors.New("token not yet valid")
	// ErrIssuerMismatch reports an iss claim other than the expected issuer.
	ErrIssuerMismatch = errors.New("issuer mismatch")
	// ErrAudienceMismatch reports an aud claim other than the expected audience.
	ErrAudienceMismatch = errors.New("audience mismatch")
	// ErrTokenReplayed reports a second use of a one-time token.
	ErrTokenReplayed = errors.New("token replayed")
	// ErrReplayUnavailable reports that the replay backend could not be reached.
	ErrReplayUnavailable = errors.New("replay backend unavailable")

	// ErrInvalidConfig reports a Config that fails validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrEngineNotReady reports use of a nil or closed Engine.
	ErrEngineNotReady = errors.New("engine not ready")
)
