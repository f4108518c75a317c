package alerts

import "errors"

var (
	// ErrDisabled is returned when an alerter is configured off.
	ErrDisabled = errors.New("alerter is disabled")

	// ErrCooldown is returned when an alert repeats within its cooldown window.
	ErrCooldown = errors.New("alert is within cooldown period")

	// ErrWebhookStatus is returned when the webhook endpoint rejects the post.
	ErrWebhookStatus = errors.New("webhook returned non-2xx status")
)
