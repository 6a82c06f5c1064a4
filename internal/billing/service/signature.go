package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/playreply/playreply/internal/billing/model"
)

// parseSignatureHeader splits a "ts=<unix>;h1=<hex>" header into its parts.
func parseSignatureHeader(header string) (ts, h1 string, err error) {
	for _, part := range strings.Split(header, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "h1":
			h1 = value
		}
	}
	if ts == "" || h1 == "" {
		return "", "", model.ErrInvalidSignature
	}
	return ts, h1, nil
}

// verifySignature recomputes HMAC-SHA256 over "<ts>:<rawBody>" and compares
// in constant time.
func verifySignature(secret, ts string, body []byte, h1 string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte(":"))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(h1))
}
