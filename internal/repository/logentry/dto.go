package logentry

import (
	"fmt"
	"strconv"
	"time"

	domlog "github.com/jorgekof/hostreamly-admin/internal/domain/logentry"
)

func entryToHash(e domlog.Entry) map[string]string {
	m := map[string]string{
		"id":        e.ID(),
		"timestamp": strconv.FormatInt(e.Timestamp().UnixMilli(), 10),
		"level":     string(e.Level()),
		"category":  string(e.Category()),
		"message":   e.Message(),
	}
	// Optional fields are omitted when empty.
	for k, v := range map[string]string{
		"details": e.Details(),
		"user_id": e.UserID(),
		"email":   e.Email(),
		"ip":      e.IP(),
	} {
		if v != "" {
			m[k] = v
		}
	}
	return m
}

func entryFromHash(m map[string]string) (domlog.Entry, error) {
	ms, err := strconv.ParseInt(m["timestamp"], 10, 64)
	if err != nil {
		return domlog.Entry{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	level, err := domlog.ParseLevel(m["level"])
	if err != nil {
		return domlog.Entry{}, err
	}
	category, err := domlog.ParseCategory(m["category"])
	if err != nil {
		return domlog.Entry{}, err
	}
	return domlog.Reconstruct(m["id"], time.UnixMilli(ms).UTC(), level, category, m["message"], domlog.Optional{
		Details: m["details"],
		UserID:  m["user_id"],
		Email:   m["email"],
		IP:      m["ip"],
	}), nil
}
