// Package apikey generates and syntactically validates the long-lived keys
// tied to user accounts. The stored key value is the secret itself; nothing
// derived from it is kept server-side.
package apikey

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type Config struct {
	Prefix   string
	Bytes    int    // random bytes per key, default 32
	Encoding string // hex | base64 | base64url, anything else falls back to hex
	Pattern  string // optional regex every key must match
}

var (
	ErrEmptyKey        = errors.New("api key is empty")
	ErrPrefixMismatch  = errors.New("api key does not start with the configured prefix")
	ErrPatternMismatch = errors.New("api key does not match the allowed pattern")
)

type Generator struct {
	prefix   string
	bytes    int
	encoding string
	pattern  *regexp.Regexp
}

func New(cfg Config) (*Generator, error) {
	g := &Generator{
		prefix:   cfg.Prefix,
		bytes:    cfg.Bytes,
		encoding: strings.ToLower(cfg.Encoding),
	}
	if g.bytes <= 0 {
		g.bytes = 32
	}
	switch g.encoding {
	case "hex", "base64", "base64url":
	default:
		g.encoding = "hex"
	}
	if cfg.Pattern != "" {
		re, err := regexp.Compile(cfg.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid API_KEY_ALLOWED_REGEX: %w", err)
		}
		g.pattern = re
	}
	return g, nil
}

// Generate draws fresh random bytes and encodes them. The encoded part is
// left-padded with '0' to a fixed width of 2x the byte length; the width is
// the hex convention, so for base64 encodings keys come out longer than the
// entropy requires. Hex is the intended primary encoding.
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, g.bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	var encoded string
	switch g.encoding {
	case "base64":
		encoded = base64.StdEncoding.EncodeToString(buf)
	case "base64url":
		encoded = base64.RawURLEncoding.EncodeToString(buf)
	default:
		encoded = hex.EncodeToString(buf)
	}

	width := g.bytes * 2
	if pad := width - len(encoded); pad > 0 {
		encoded = strings.Repeat("0", pad) + encoded
	}
	return g.prefix + encoded, nil
}

// Validate is a purely syntactic check; it never consults storage.
func (g *Generator) Validate(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if g.prefix != "" && !strings.HasPrefix(key, g.prefix) {
		return ErrPrefixMismatch
	}
	if g.pattern != nil && !g.pattern.MatchString(key) {
		return ErrPatternMismatch
	}
	return nil
}
