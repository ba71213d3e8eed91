package webapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"testing"
)

const testToken = "123456:TEST-TOKEN"

// signInitData builds a signed init-data string the way a Telegram client
// would: sorted key=value pairs joined by newlines, HMAC-SHA256 keyed by
// HMAC-SHA256("WebAppData", token), hash appended as a query field.
func signInitData(t *testing.T, token string, fields map[string]string) string {
	t.Helper()

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(token))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

func sampleFields() map[string]string {
	return map[string]string{
		"auth_date": "1700000000",
		"query_id":  "AAE5ym0EAAAAADnKbQT",
		"user":      `{"id":74500665,"first_name":"Alice","username":"alice"}`,
	}
}

func TestVerify_ValidSignature(t *testing.T) {
	initData := signInitData(t, testToken, sampleFields())
	if !Verify(initData, testToken) {
		t.Error("Verify() = false for an honestly signed payload")
	}
}

func TestVerify_EmptyPayload(t *testing.T) {
	if Verify("", testToken) {
		t.Error("Verify() = true for an empty payload")
	}
}

func TestVerify_MissingHash(t *testing.T) {
	values := url.Values{}
	for k, v := range sampleFields() {
		values.Set(k, v)
	}
	if Verify(values.Encode(), testToken) {
		t.Error("Verify() = true for a payload without a hash field")
	}
}

func TestVerify_TamperedField(t *testing.T) {
	fields := sampleFields()
	initData := signInitData(t, testToken, fields)

	// Flip a single character of the auth_date value after signing.
	tampered := strings.Replace(initData, "1700000000", "1700000001", 1)
	if tampered == initData {
		t.Fatal("tampering had no effect on the payload")
	}
	if Verify(tampered, testToken) {
		t.Error("Verify() = true for a tampered payload")
	}
}

func TestVerify_WrongToken(t *testing.T) {
	initData := signInitData(t, testToken, sampleFields())
	if Verify(initData, "999999:OTHER-TOKEN") {
		t.Error("Verify() = true under a different bot token")
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	values := url.Values{}
	for k, v := range sampleFields() {
		values.Set(k, v)
	}
	values.Set("hash", "not-hex")
	if Verify(values.Encode(), testToken) {
		t.Error("Verify() = true for a non-hex hash")
	}
}

func TestUser_ExtractsEmbeddedUser(t *testing.T) {
	initData := signInitData(t, testToken, sampleFields())

	user, err := User(initData)
	if err != nil {
		t.Fatalf("User() error: %v", err)
	}
	if user.ID != 74500665 {
		t.Errorf("ID = %d, want 74500665", user.ID)
	}
	if user.FirstName != "Alice" {
		t.Errorf("FirstName = %q, want %q", user.FirstName, "Alice")
	}
}

func TestUser_MissingUserField(t *testing.T) {
	if _, err := User("auth_date=1700000000"); err == nil {
		t.Error("User() expected an error for a payload without a user field")
	}
}
