package users

import "time"

// User is the coaching customer. Phone is the number the voice
// provider dials and, in webhook processing, the fallback correlation
// key when a call cannot be matched to a session.
type User struct {
	ID       string `json:"id" db:"id"`
	Phone    string `json:"phone" db:"phone"`
	Timezone string `json:"timezone" db:"timezone"`
	Name     string `json:"name,omitempty" db:"name"`

	// CoachingTone tunes the assistant prompt; default "supportive".
	CoachingTone string `json:"coaching_tone" db:"coaching_tone"`

	SMSEnabled  bool `json:"sms_enabled" db:"sms_enabled"`
	PushEnabled bool `json:"push_enabled" db:"push_enabled"`

	// Onboarded flips after the onboarding call; the scheduler skips
	// users who have not completed onboarding.
	Onboarded bool `json:"onboarded" db:"onboarded"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SettingsUpdate carries a partial settings patch; nil fields are left
// untouched.
type SettingsUpdate struct {
	Timezone     *string `json:"timezone,omitempty"`
	Name         *string `json:"name,omitempty"`
	CoachingTone *string `json:"coaching_tone,omitempty"`
	SMSEnabled   *bool   `json:"sms_enabled,omitempty"`
	PushEnabled  *bool   `json:"push_enabled,omitempty"`
	Onboarded    *bool   `json:"onboarded,omitempty"`
}
