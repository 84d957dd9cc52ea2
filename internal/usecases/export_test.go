package usecases

import "time"

// SetNow pins the clock used by the usecases and returns a restore func
func SetNow(now func() time.Time) func() {
	prev := nowFunc
	nowFunc = now
	return func() { nowFunc = prev }
}

// SetInviteCodeGenerator swaps the invite code source and returns a restore func
func SetInviteCodeGenerator(gen func() (string, error)) func() {
	prev := generateInviteCode
	generateInviteCode = gen
	return func() { generateInviteCode = prev }
}
