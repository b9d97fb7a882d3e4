package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// EncodeEntryCursor creates an opaque, URL-safe token from the last entry of a page.
func EncodeEntryCursor(c domain.EntryCursor) string {
	tokenStr := strings.Join([]string{
		c.EntryDate.UTC().Format(timeFormat),
		c.CreatedAt.UTC().Format(timeFormat),
		c.EntryID,
	}, "|")
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// CursorFor builds the cursor that continues a listing after e.
func CursorFor(e domain.JournalEntry) domain.EntryCursor {
	return domain.EntryCursor{EntryDate: e.EntryDate, CreatedAt: e.CreatedAt, EntryID: e.EntryID}
}

// DecodeEntryCursor parses a token produced by EncodeEntryCursor.
func DecodeEntryCursor(token string) (domain.EntryCursor, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return domain.EntryCursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 3)
	if len(parts) != 3 || parts[2] == "" {
		return domain.EntryCursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	entryDate, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return domain.EntryCursor{}, fmt.Errorf("invalid pagination token format (entry date parse): %w", err)
	}
	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return domain.EntryCursor{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}

	return domain.EntryCursor{EntryDate: entryDate, CreatedAt: createdAt, EntryID: parts[2]}, nil
}
