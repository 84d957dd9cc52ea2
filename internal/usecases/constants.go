package usecases

import "time"

// Email verification tokens expire after a day
const EmailVerificationExpiry = 24 * time.Hour

// Scheduling defaults used when the configuration leaves a window unset
const (
	DefaultReminderWindow     = 7 * 24 * time.Hour
	DefaultHighPriorityWindow = 48 * time.Hour
	DefaultInviteCodeAttempts = 5
	DefaultCurrency           = "XOF"
)

// MaxRoundCount caps the rounds a single schedule may contain
const MaxRoundCount = 120

// Reminders are deduplicated per payment per calendar day
const (
	reminderKeyPrefix = "reminder:payment:"
	reminderDedupeTTL = 26 * time.Hour
)

// Webhook event names sent by the payment provider
const (
	WebhookPaymentSucceeded = "payment.succeeded"
	WebhookPaymentFailed    = "payment.failed"
)
