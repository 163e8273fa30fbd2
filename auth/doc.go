// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides bearer token issuance, verification and ID generation.

# Bearer Tokens

Tokens are HMAC-SHA256 signed and carry the user id, user type and expiry:

	token, err := auth.IssueToken(auth.Identity{UserID: "u1", UserType: "client"}, secret, 24*time.Hour, time.Now())
	id, err := auth.VerifyToken(token, secret, time.Now())

The payload and signature are URL-safe base64 without padding, joined by a dot.
Nothing is stored server side; a token is valid until it expires or the
secret changes.

Verification errors:

  - ErrInvalidToken: malformed token or bad signature
  - ErrExpiredToken: signature is valid but the expiry has passed

# Extracting Tokens

	token, err := auth.BearerToken(r) // "Authorization: Bearer <token>"

# ID Generation

Random UUIDs for database records and object keys:

	id := auth.NewID()
*/
package auth
