package schedule

import (
	"regexp"
	"time"
)

// Preference asks for the daily report of one account and queue to be
// delivered at the same UTC minute every day
type Preference struct {
	Id        int64
	GuildId   string
	UserId    string
	AccountId int64
	Queue     string
	Schedule  string // HH:MM, UTC
	ChannelId string // empty means a direct message
	Enabled   bool
}

// Key identifies a preference regardless of its schedule
type Key struct {
	GuildId   string
	UserId    string
	AccountId int64
	Queue     string
}

func (preference Preference) Key() Key {
	return Key{GuildId: preference.GuildId, UserId: preference.UserId, AccountId: preference.AccountId, Queue: preference.Queue}
}

const DefaultCapacity = 25

var clock = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidSchedule accepts 24 hour "HH:MM" with both fields zero padded
func ValidSchedule(schedule string) bool {
	return clock.MatchString(schedule)
}

// Slot is the schedule value matching the given instant
func Slot(t time.Time) string {
	return t.UTC().Format("15:04")
}
