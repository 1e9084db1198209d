package tokens

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist stores refresh tokens surrendered at logout in Redis until their
// own expiry, so a cleared cookie cannot be replayed from a captured value.
// A nil *Denylist (Redis not configured) is valid and disables revocation.
type Denylist struct {
	client *redis.Client
}

func NewDenylist(client *redis.Client) *Denylist {
	if client == nil {
		return nil
	}
	return &Denylist{client: client}
}

func denylistKey(token string) string {
	return "denylist:refresh:" + token
}

// Revoke marks the token revoked for ttl. No-op when the denylist is disabled
// or the token already expired.
func (d *Denylist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if d == nil || ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, denylistKey(token), "1", ttl).Err()
}

// IsRevoked reports whether the token was surrendered at a logout.
func (d *Denylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	if d == nil {
		return false, nil
	}
	n, err := d.client.Exists(ctx, denylistKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ExpiryOf decodes the token payload and returns its exp claim. This is a
// payload-only parse (no signature check) suitable for computing remaining
// denylist TTLs; never use it to authenticate.
func ExpiryOf(token string) (time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("invalid token")
	}
	b, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return time.Time{}, err
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(b, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.Exp == 0 {
		return time.Time{}, fmt.Errorf("exp claim not present")
	}
	return time.Unix(claims.Exp, 0), nil
}
