package messages

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/nikhil/teamchat/internal/apperrors"
	"github.com/nikhil/teamchat/internal/store"
)

const (
	// DefaultPageSize is used when the caller does not ask for a size.
	DefaultPageSize = 35
	// MaxPageSize caps a single page.
	MaxPageSize = 100
)

// EncodeCursor turns a history position into an opaque token.
func EncodeCursor(p store.Position) string {
	return base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf("%d:%d", p.CreatedAt, p.ID)))
}

// DecodeCursor parses a token produced by EncodeCursor. An empty cursor means
// the newest page.
func DecodeCursor(cursor string) (*store.Position, error) {
	if cursor == "" {
		return nil, nil
	}

	invalid := apperrors.Validation("cursor", "Invalid cursor")
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, invalid
	}
	createdAt, id, ok := strings.Cut(string(raw), ":")
	if !ok {
		return nil, invalid
	}

	p := &store.Position{}
	if p.CreatedAt, err = strconv.ParseInt(createdAt, 10, 64); err != nil || p.CreatedAt < 0 {
		return nil, invalid
	}
	if p.ID, err = strconv.ParseInt(id, 10, 64); err != nil || p.ID <= 0 {
		return nil, invalid
	}
	return p, nil
}

// pageSize clamps a requested size into [1, MaxPageSize].
func pageSize(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}
