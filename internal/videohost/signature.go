package videohost

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Webhook signatures older than this are rejected to limit replay.
const signatureTolerance = 5 * time.Minute

// VerifySignature checks the webhook signature header against the request
// body. The header has the form "t=<unix>,v1=<hex>"; the signed payload is
// "<timestamp>.<body>" and the comparison is constant-time.
func VerifySignature(header string, body []byte, secret string, now time.Time) error {
	timestamp, signature, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	sent := time.Unix(timestamp, 0)
	if now.Sub(sent) > signatureTolerance || sent.Sub(now) > signatureTolerance {
		return fmt.Errorf("webhook timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("malformed webhook signature: %w", err)
	}

	if !hmac.Equal(expected, provided) {
		return fmt.Errorf("webhook signature mismatch")
	}
	return nil
}

func parseSignatureHeader(header string) (int64, string, error) {
	var timestamp int64
	var signature string

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, "", fmt.Errorf("malformed webhook timestamp: %w", err)
			}
			timestamp = ts
		case "v1":
			signature = value
		}
	}

	if timestamp == 0 || signature == "" {
		return 0, "", fmt.Errorf("incomplete webhook signature header")
	}
	return timestamp, signature, nil
}

// Event is an inbound webhook notification from the video host.
type Event struct {
	Type string `json:"type"`
	Data struct {
		ID          string `json:"id"`
		UploadID    string `json:"upload_id"`
		Status      string `json:"status"`
		PlaybackIDs []struct {
			ID string `json:"id"`
		} `json:"playback_ids"`
	} `json:"data"`
}

// Webhook event types this application reacts to.
const (
	EventAssetReady   = "video.asset.ready"
	EventAssetErrored = "video.asset.errored"
)
