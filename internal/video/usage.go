package video

import (
	"strings"
	"sync"
	"time"
)

const (
	TierFree    = "free"
	TierBasic   = "basic"
	TierPremium = "premium"
)

type Usage struct {
	UserID           string    `json:"userId"`
	Tier             string    `json:"tier"`
	TotalGenerations int       `json:"totalGenerations"`
	MonthlyLimit     int       `json:"monthlyLimit"`
	MonthlyUsed      int       `json:"monthlyUsed"`
	DailyLimit       int       `json:"dailyLimit"`
	DailyUsed        int       `json:"dailyUsed"`
	LastGenerated    time.Time `json:"lastGenerated"`
	LastReset        time.Time `json:"lastReset"`
}

// DefaultLimits returns the monthly and daily allowance for tier. Unknown tiers get the free allowance.
func DefaultLimits(tier string) (monthly, daily int) {
	switch tier {
	case TierPremium:
		return 100, 10
	case TierBasic:
		return 30, 3
	default:
		return 10, 1
	}
}

func NewUsage(userID, tier string, now time.Time) *Usage {
	monthly, daily := DefaultLimits(tier)
	return &Usage{
		UserID:       userID,
		Tier:         tier,
		MonthlyLimit: monthly,
		DailyLimit:   daily,
		LastReset:    now,
	}
}

// CanGenerate rolls the counters over on a new month or day and reports
// whether another generation fits in the remaining allowance.
func (u *Usage) CanGenerate(now time.Time) (bool, string) {
	if u.LastReset.Month() != now.Month() || u.LastReset.Year() != now.Year() {
		u.MonthlyUsed = 0
		u.LastReset = now
	}
	if u.MonthlyUsed >= u.MonthlyLimit {
		return false, "Monthly video generation limit exceeded"
	}

	if !sameDay(u.LastGenerated, now) {
		u.DailyUsed = 0
	}
	if u.DailyUsed >= u.DailyLimit {
		return false, "Daily video generation limit exceeded"
	}

	return true, ""
}

func (u *Usage) Record(now time.Time) {
	u.TotalGenerations++
	u.MonthlyUsed++
	u.DailyUsed++
	u.LastGenerated = now
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

type UsageTracker struct {
	mu    sync.Mutex
	users map[string]*Usage
	now   func() time.Time
}

func NewUsageTracker(now func() time.Time) *UsageTracker {
	if now == nil {
		now = time.Now
	}
	return &UsageTracker{
		users: map[string]*Usage{},
		now:   now,
	}
}

// Reserve checks the allowance and records a generation in one step. An
// empty userID is anonymous and never limited.
func (t *UsageTracker) Reserve(userID, tier string) (bool, string) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return true, ""
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	u := t.usageLocked(userID, tier, now)
	if ok, msg := u.CanGenerate(now); !ok {
		return false, msg
	}
	u.Record(now)
	return true, ""
}

func (t *UsageTracker) Get(userID string) (Usage, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, ok := t.users[userID]
	if !ok {
		return Usage{}, false
	}
	return *u, true
}

func (t *UsageTracker) usageLocked(userID, tier string, now time.Time) *Usage {
	if tier == "" {
		tier = TierFree
	}
	u, ok := t.users[userID]
	if !ok {
		u = NewUsage(userID, tier, now)
		t.users[userID] = u
		return u
	}
	if u.Tier != tier {
		u.Tier = tier
		u.MonthlyLimit, u.DailyLimit = DefaultLimits(tier)
	}
	return u
}

// Release hands back a reservation that could not be used, e.g. when the job queue is full.
func (t *UsageTracker) Release(userID string) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	u, ok := t.users[userID]
	if !ok {
		return
	}
	if u.TotalGenerations > 0 {
		u.TotalGenerations--
	}
	if u.MonthlyUsed > 0 {
		u.MonthlyUsed--
	}
	if u.DailyUsed > 0 {
		u.DailyUsed--
	}
}
