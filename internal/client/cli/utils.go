package cli

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/fleamarket/internal/client/client"
	"github.com/dmitrijs2005/fleamarket/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// reportError prints err unless the dispatcher already notified the user.
func reportError(err error) {
	if _, ok := client.AsFailure(err); ok {
		return
	}
	switch {
	case errors.Is(err, common.ErrorEmptyInput):
		printlnFn("Nothing entered.")
	case errors.Is(err, common.ErrNotLoggedIn):
		printlnFn("You are not logged in.")
	default:
		printlnFn("Error:", err)
	}
}

// saveCaptcha writes a "data:image/...;base64," captcha to a temp file and
// returns its path. Any other value is returned unchanged (a plain URL).
func saveCaptcha(image string) (string, error) {
	meta, payload, ok := strings.Cut(image, ",")
	if !ok || !strings.HasPrefix(meta, "data:") {
		return image, nil
	}
	if !strings.HasSuffix(meta, ";base64") {
		return "", fmt.Errorf("captcha: unsupported data url %q", meta)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("captcha: %w", err)
	}

	ext := ".img"
	mime := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	if _, sub, ok := strings.Cut(mime, "/"); ok && sub != "" {
		ext = "." + strings.TrimSuffix(sub, "+xml")
	}

	f, err := os.CreateTemp("", "fleamarket-captcha-*"+ext)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(raw); err != nil {
		return "", err
	}
	return f.Name(), nil
}
