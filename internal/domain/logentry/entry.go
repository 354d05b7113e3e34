// Package logentry models system log entries and the log viewer filter.
package logentry

import (
	"fmt"
	"time"

	"github.com/jorgekof/hostreamly-admin/internal/domain"
)

// Level is a log severity.
type Level string

// Log levels.
const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// Levels lists every level in display order.
var Levels = []Level{LevelInfo, LevelWarning, LevelError, LevelSuccess}

// ParseLevel validates a level name.
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", domain.NewFieldError("level", fmt.Sprintf("unknown level %q", s))
}

// Category is the subsystem a log entry belongs to.
type Category string

// Log categories.
const (
	CategorySystem   Category = "system"
	CategoryAPI      Category = "api"
	CategoryUpload   Category = "upload"
	CategoryUser     Category = "user"
	CategorySecurity Category = "security"
)

// Categories lists every category.
var Categories = []Category{CategorySystem, CategoryAPI, CategoryUpload, CategoryUser, CategorySecurity}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", domain.NewFieldError("category", fmt.Sprintf("unknown category %q", s))
}

// Entry is an immutable log record.
type Entry struct {
	id        string
	timestamp time.Time
	level     Level
	category  Category
	message   string
	details   string
	userID    string
	email     string
	ip        string
}

// Optional carries the optional attributes of an entry.
type Optional struct {
	Details string
	UserID  string
	Email   string
	IP      string
}

// New validates and creates an Entry.
func New(id string, ts time.Time, level Level, category Category, message string, opt Optional) (Entry, error) {
	if id == "" {
		return Entry{}, domain.NewFieldError("id", "is required")
	}
	if ts.IsZero() {
		return Entry{}, domain.NewFieldError("timestamp", "is required")
	}
	if _, err := ParseLevel(string(level)); err != nil {
		return Entry{}, err
	}
	if _, err := ParseCategory(string(category)); err != nil {
		return Entry{}, err
	}
	if message == "" {
		return Entry{}, domain.NewFieldError("message", "is required")
	}
	return Reconstruct(id, ts, level, category, message, opt), nil
}

// Reconstruct restores an Entry from storage without validation.
func Reconstruct(id string, ts time.Time, level Level, category Category, message string, opt Optional) Entry {
	return Entry{
		id:        id,
		timestamp: ts,
		level:     level,
		category:  category,
		message:   message,
		details:   opt.Details,
		userID:    opt.UserID,
		email:     opt.Email,
		ip:        opt.IP,
	}
}

func (e Entry) ID() string           { return e.id }
func (e Entry) Timestamp() time.Time { return e.timestamp }
func (e Entry) Level() Level         { return e.level }
func (e Entry) Category() Category   { return e.category }
func (e Entry) Message() string      { return e.message }
func (e Entry) Details() string      { return e.details }
func (e Entry) UserID() string       { return e.userID }
func (e Entry) Email() string        { return e.email }
func (e Entry) IP() string           { return e.ip }
