package models

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestPaymentOutcomesAreValid(t *testing.T) {
	outcomes := PaymentOutcomes()
	assert.Len(t, outcomes, 8)

	seen := make(map[PaymentOutcome]struct{}, len(outcomes))
	for _, o := range outcomes {
		assert.True(t, o.Valid(), "outcome %q should be valid", o)
		_, dup := seen[o]
		assert.False(t, dup, "outcome %q listed twice", o)
		seen[o] = struct{}{}
	}

	assert.False(t, PaymentOutcome("unknown").Valid())
	assert.False(t, PaymentOutcome("").Valid())
}

func TestPaymentOutcomePersisted(t *testing.T) {
	persisted := map[PaymentOutcome]bool{
		OutcomeSuccess:               true,
		OutcomeUserNotFound:          true,
		OutcomeProductNotFound:       true,
		OutcomeProductInactive:       true,
		OutcomeRefund:                true,
		OutcomeSignatureInvalid:      false,
		OutcomeDuplicate:             false,
		OutcomeSettingsNotConfigured: false,
	}
	for _, o := range PaymentOutcomes() {
		want, ok := persisted[o]
		if assert.True(t, ok, "missing expectation for %q", o) {
			assert.Equal(t, want, o.Persisted(), "outcome %q", o)
		}
	}

	assert.Panics(t, func() { PaymentOutcome("bogus").Persisted() })
}

func TestUserIsPremiumAt(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	assert.False(t, (&User{}).IsPremiumAt(now))
	assert.True(t, (&User{PremiumExpiresAt: &future}).IsPremiumAt(now))
	assert.False(t, (&User{PremiumExpiresAt: &past}).IsPremiumAt(now))
}

func TestUserHasRole(t *testing.T) {
	u := &User{Roles: []Role{{Name: ROLE_ADMIN}, {Name: ROLE_PREMIUM}}}
	assert.True(t, u.HasRole(ROLE_PREMIUM))
	assert.False(t, u.HasRole("moderator"))
}

func TestProductValidate(t *testing.T) {
	p := &Product{ExternalID: "prod-1", Name: "Premium 30", Currency: "IDR", DurationDays: 30, Status: PRODUCT_STATUS_ACTIVE}
	assert.NoError(t, p.Validate())
	assert.True(t, p.IsActive())

	p.DurationDays = 0
	assert.Error(t, p.Validate())

	p.DurationDays = 30
	p.Status = "archived"
	assert.Error(t, p.Validate())
}

func TestSettingType(t *testing.T) {
	assert.Equal(t, SETTING_TYPE_ENCRYPTED, SettingType(SettingPaymentWebhookSecret))
	assert.Equal(t, SETTING_TYPE_STRING, SettingType("site_title"))
}

func TestExpiryColumnsUseDatetime(t *testing.T) {
	// TIMESTAMP stops at 2038-01-19, long plans and stacked purchases go past it
	cases := []struct {
		model any
		field string
	}{
		{&User{}, "PremiumExpiresAt"},
		{&PaymentOrder{}, "PaidAt"},
	}
	for _, tc := range cases {
		s, err := schema.Parse(tc.model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err)
		f := s.LookUpField(tc.field)
		require.NotNil(t, f, tc.field)
		assert.Equal(t, schema.DataType("datetime(3)"), f.DataType, tc.field)
	}
}

func TestEmailLowerIsReadOnly(t *testing.T) {
	s, err := schema.Parse(&User{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	f := s.LookUpField("EmailLower")
	require.NotNil(t, f)
	assert.Equal(t, "email_lower", f.DBName)
	assert.False(t, f.Creatable)
	assert.False(t, f.Updatable)
	assert.True(t, f.Readable)
}
