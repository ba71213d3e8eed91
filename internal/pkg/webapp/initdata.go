// Package webapp verifies Telegram WebApp init-data payloads.
//
// A Mini-App client attaches a signed query-string payload to its requests.
// The signature is an HMAC-SHA256 over the sorted key=value pairs, keyed by
// HMAC-SHA256("WebAppData", botToken). See the Telegram WebApp documentation
// for the data-check-string construction.
package webapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strings"
)

// InitDataUser is the user object embedded in the init-data payload.
type InitDataUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// Verify reports whether initData was authentically signed by Telegram for
// the bot identified by botToken. It returns false (never an error) for an
// empty payload, a payload without a hash field, or a signature mismatch.
func Verify(initData, botToken string) bool {
	if initData == "" {
		return false
	}

	values, err := url.ParseQuery(initData)
	if err != nil {
		return false
	}

	suppliedHash := values.Get("hash")
	if suppliedHash == "" {
		return false
	}
	values.Del("hash")

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}
	dataCheckString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(dataCheckString))
	calculated := mac.Sum(nil)

	supplied, err := hex.DecodeString(suppliedHash)
	if err != nil {
		return false
	}

	return hmac.Equal(calculated, supplied)
}

// User extracts the user object embedded in the init-data payload. The
// payload is not re-verified here; call Verify first.
func User(initData string) (*InitDataUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, err
	}

	var user InitDataUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil {
		return nil, err
	}
	return &user, nil
}
