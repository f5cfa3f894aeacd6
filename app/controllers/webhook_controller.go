package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PremiumHook/app/models"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/billing"
)

const (
	DefaultSignatureHeader = "X-Webhook-Signature"

	webhookTimeout = 15 * time.Second
	counterTimeout = time.Second
)

// PaymentProcessor applies one webhook delivery.
type PaymentProcessor interface {
	Process(ctx context.Context, req billing.Request) (*billing.Result, error)
}

// OutcomeCounter keeps per-outcome delivery counts.
type OutcomeCounter interface {
	AddWebhookOutcome(ctx context.Context, outcome models.PaymentOutcome) error
	WebhookOutcomes(ctx context.Context) (map[models.PaymentOutcome]int64, error)
	Drain(ctx context.Context) (map[models.PaymentOutcome]int64, error)
}

// WebhookResponse is the JSON body of every webhook answer.
type WebhookResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
	TraceID string `json:"trace_id"`
	Error   string `json:"error,omitempty"`
}

// WebhookController receives payment platform notifications.
type WebhookController struct {
	processor       PaymentProcessor
	counters        OutcomeCounter
	signatureHeader string
}

// NewWebhookController creates a controller. counters may be nil.
func NewWebhookController(processor PaymentProcessor, counters OutcomeCounter, signatureHeader string) *WebhookController {
	header := strings.TrimSpace(signatureHeader)
	if header == "" {
		header = DefaultSignatureHeader
	}
	return &WebhookController{processor: processor, counters: counters, signatureHeader: header}
}

// HandlePaymentWebhook verifies and applies a notification.
func (wc *WebhookController) HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	ctx, cancel := context.WithTimeout(c.UserContext(), webhookTimeout)
	defer cancel()

	res, err := wc.processor.Process(ctx, billing.Request{
		Body:      rawBody,
		Signature: strings.TrimSpace(c.Get(wc.signatureHeader)),
		TraceID:   requestID(c),
	})
	if err != nil {
		traceID := ""
		if res != nil {
			traceID = res.TraceID
		}
		if errors.Is(err, billing.ErrInvalidPayload) {
			return c.Status(fiber.StatusBadRequest).JSON(WebhookResponse{
				Status:  "invalid_payload",
				Message: "Notification payload is invalid",
				TraceID: traceID,
				Error:   err.Error(),
			})
		}
		fiberlog.Errorf("[Webhook] Processing failed for %s (trace %s): %v", GetClientIP(c), traceID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(WebhookResponse{
			Status:  "error",
			Message: "Notification could not be processed, please retry",
			TraceID: traceID,
		})
	}

	wc.count(res.Outcome)
	if res.Outcome == models.OutcomeSignatureInvalid {
		fiberlog.Warnf("[Webhook] Unsigned or forged delivery from %s (trace %s)", GetClientIP(c), res.TraceID)
	}

	return c.Status(res.HTTPStatus()).JSON(WebhookResponse{
		Success: res.Succeeded(),
		Status:  string(res.Outcome),
		Message: res.Message,
		TraceID: res.TraceID,
		Error:   res.Error,
	})
}

// HandleWebhookStats returns the outcome counters. ?reset=true drains them.
func (wc *WebhookController) HandleWebhookStats(c *fiber.Ctx) error {
	if wc.counters == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "counters_unavailable"})
	}

	read := wc.counters.WebhookOutcomes
	reset := c.QueryBool("reset", false)
	if reset {
		read = wc.counters.Drain
	}
	counts, err := read(c.UserContext())
	if err != nil {
		fiberlog.Warnf("[Webhook] Failed to read outcome counters: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "counters_unavailable"})
	}

	outcomes := make(fiber.Map, len(counts))
	var total int64
	for outcome, n := range counts {
		outcomes[string(outcome)] = n
		total += n
	}
	return c.JSON(fiber.Map{"outcomes": outcomes, "total": total, "reset": reset})
}

func (wc *WebhookController) count(outcome models.PaymentOutcome) {
	if wc.counters == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), counterTimeout)
	defer cancel()
	if err := wc.counters.AddWebhookOutcome(ctx, outcome); err != nil {
		fiberlog.Warnf("[Webhook] Failed to count outcome %s: %v", outcome, err)
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}
