// Package log provides slog loggers that mask sensitive values.
//
// The SecureHandler masks:
//   - credential-bearing keys (Authorization, Cookie, tokens, API keys)
//   - values that look like bearer tokens, JWTs or AWS key ids
//   - signing parameters of pre-signed URLs (X-Amz-Signature, sig, token, key)
//
// Masked URLs keep scheme, host and path so that logs still show which
// report was fetched.
//
//	logger := log.NewLogger(os.Stderr, verbose, jsonOutput)
//	slog.SetDefault(logger)
package log
