package billing

import (
	"sync"

	dombilling "github.com/jorgekof/hostreamly-admin/internal/domain/billing"
)

// thresholdState remembers the last reported threshold kind per account and resource.
type thresholdState struct {
	mu   sync.Mutex
	last map[string]string
}

func newThresholdState() *thresholdState {
	return &thresholdState{last: make(map[string]string)}
}

// swap stores kind and reports whether it differs from the previous one.
func (t *thresholdState) swap(accountID string, resource dombilling.Resource, kind string) bool {
	key := accountID + ":" + string(resource)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last[key] == kind {
		return false
	}
	if kind == "" {
		delete(t.last, key)
	} else {
		t.last[key] = kind
	}
	return true
}
