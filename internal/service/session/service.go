package session

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	defaultTTL      = 10 * time.Minute
	cleanupInterval = time.Minute
)

// Service tracks short-lived admin dialog state. The only state today is the
// booking an admin was asked to supply a visit time for after the free text
// could not be resolved automatically. Entries expire so an abandoned dialog
// does not pin a stale booking id.
type Service struct {
	cache *cache.Cache
}

func NewService() *Service {
	return &Service{cache: cache.New(defaultTTL, cleanupInterval)}
}

func key(adminID int64) string {
	return "awaiting_datetime:" + strconv.FormatInt(adminID, 10)
}

// AwaitDatetime remembers that the admin owes a visit time for the booking.
func (s *Service) AwaitDatetime(adminID, bookingID int64) {
	s.cache.Set(key(adminID), bookingID, cache.DefaultExpiration)
}

// PendingBooking returns the awaited booking id, if any, without clearing it.
func (s *Service) PendingBooking(adminID int64) (int64, bool) {
	v, ok := s.cache.Get(key(adminID))
	if !ok {
		return 0, false
	}
	return v.(int64), true
}

// Clear drops the pending entry once the time has been supplied or the
// booking was rejected.
func (s *Service) Clear(adminID int64) {
	s.cache.Delete(key(adminID))
}
