package logentry

import "time"

// SampleEntries returns the built-in demo log set, newest first.
// Timestamps count back from now in fixed steps.
func SampleEntries(now time.Time) []Entry {
	at := func(minutes int) time.Time {
		return now.Add(-time.Duration(minutes) * time.Minute).UTC()
	}
	return []Entry{
		Reconstruct("log-001", at(5), LevelInfo, CategorySystem, "System backup completed",
			Optional{Details: "Daily backup of all video metadata completed successfully"}),
		Reconstruct("log-002", at(12), LevelSuccess, CategoryUser, "User login successful",
			Optional{UserID: "user-1042", Email: "john@example.com", IP: "203.0.113.24"}),
		Reconstruct("log-003", at(25), LevelWarning, CategorySecurity, "Failed login attempt",
			Optional{Details: "Invalid password for user admin@example.com", Email: "admin@example.com", IP: "198.51.100.7"}),
		Reconstruct("log-004", at(47), LevelError, CategoryUpload, "Video upload failed",
			Optional{Details: "File exceeds maximum size of 5GB", UserID: "user-2210", Email: "sarah@example.com"}),
		Reconstruct("log-005", at(63), LevelInfo, CategoryAPI, "API rate limit adjusted",
			Optional{Details: "Rate limit increased to 1000 requests/minute"}),
		Reconstruct("log-006", at(90), LevelSuccess, CategoryUpload, "Video transcoding completed",
			Optional{Details: "4K video processed into 5 quality variants"}),
		Reconstruct("log-007", at(134), LevelWarning, CategorySystem, "High storage usage detected",
			Optional{Details: "Storage usage at 85% of allocated quota"}),
		Reconstruct("log-008", at(180), LevelError, CategoryAPI, "Payment webhook failed",
			Optional{Details: "Stripe webhook signature verification failed"}),
		Reconstruct("log-009", at(240), LevelInfo, CategoryUser, "New user registered",
			Optional{Details: "Account created via email signup", UserID: "user-3301", Email: "mike@example.com"}),
		Reconstruct("log-010", at(320), LevelWarning, CategorySecurity, "Suspicious API activity",
			Optional{Details: "Unusual request pattern from IP 192.168.1.100", IP: "192.168.1.100"}),
	}
}
