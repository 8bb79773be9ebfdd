package services

import (
	"math/rand"
	"sync"
	"time"
)

const (
	otpMin  = 100000
	otpSpan = 900000
)

var (
	otpOnce sync.Once
	otpRand *rand.Rand
	otpMu   sync.Mutex
)

// GenerateOTP returns a uniformly distributed 6-digit code in
// [100000, 999999]. The codes gate email verification only, so a
// non-cryptographic source is enough.
func GenerateOTP() int {
	otpOnce.Do(func() {
		otpRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	})
	otpMu.Lock()
	defer otpMu.Unlock()
	return otpMin + otpRand.Intn(otpSpan)
}
