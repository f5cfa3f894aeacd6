package billing

import (
	"net/http"

	"github.com/ManuelReschke/PremiumHook/app/models"
)

// HTTPStatus maps an outcome to its response status. Only a failed signature
// and a missing secret are reported as errors; everything else is
// acknowledged so the platform stops retrying.
func HTTPStatus(o models.PaymentOutcome) int {
	switch o {
	case models.OutcomeSignatureInvalid:
		return http.StatusUnauthorized
	case models.OutcomeSettingsNotConfigured:
		return http.StatusServiceUnavailable
	case models.OutcomeSuccess, models.OutcomeUserNotFound, models.OutcomeProductNotFound,
		models.OutcomeProductInactive, models.OutcomeDuplicate, models.OutcomeRefund:
		return http.StatusOK
	default:
		panic("unknown payment outcome: " + string(o))
	}
}

// Succeeded reports whether the outcome counts as handled without anomaly.
func Succeeded(o models.PaymentOutcome) bool {
	switch o {
	case models.OutcomeSuccess, models.OutcomeDuplicate, models.OutcomeRefund:
		return true
	case models.OutcomeUserNotFound, models.OutcomeProductNotFound, models.OutcomeProductInactive,
		models.OutcomeSignatureInvalid, models.OutcomeSettingsNotConfigured:
		return false
	default:
		panic("unknown payment outcome: " + string(o))
	}
}

// Message is the human readable text for an outcome.
func Message(o models.PaymentOutcome) string {
	switch o {
	case models.OutcomeSuccess:
		return "Payment processed, premium membership extended"
	case models.OutcomeUserNotFound:
		return "No account matches the customer email"
	case models.OutcomeProductNotFound:
		return "Unknown product"
	case models.OutcomeProductInactive:
		return "Product is not active"
	case models.OutcomeSignatureInvalid:
		return "Invalid signature"
	case models.OutcomeDuplicate:
		return "Order already processed"
	case models.OutcomeRefund:
		return "Refund recorded"
	case models.OutcomeSettingsNotConfigured:
		return "Payment webhook is not configured"
	default:
		panic("unknown payment outcome: " + string(o))
	}
}
