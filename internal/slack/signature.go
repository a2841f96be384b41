package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// signatureWindow is the maximum accepted request timestamp skew.
const signatureWindow = 5 * time.Minute

// VerifySignature checks a Slack v0 request signature: HMAC-SHA256 of
// "v0:<timestamp>:<body>" keyed with the signing secret. Requests older
// than the window are rejected to block replays.
func VerifySignature(secret, timestamp, signature string, body []byte, now time.Time) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("slack signature: bad timestamp %q", timestamp)
	}

	skew := now.Sub(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > signatureWindow {
		return fmt.Errorf("slack signature: timestamp outside window")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:" + timestamp + ":"))
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("slack signature: mismatch")
	}
	return nil
}
