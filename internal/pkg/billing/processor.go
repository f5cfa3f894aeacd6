package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/PremiumHook/app/models"
	"github.com/ManuelReschke/PremiumHook/app/repository"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/entitlements"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/security"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Processor turns authenticated payment notifications into ledger rows and
// premium extensions.
type Processor struct {
	repo    Repository
	secrets SecretProvider
	audit   AuditSink
	grants  *entitlements.Service
	role    string
	now     func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithClock overrides the time source used for expiry arithmetic.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithRole sets the role attached on every successful payment.
func WithRole(role string) Option {
	return func(p *Processor) { p.role = role }
}

// WithAuditSink records committed grants. Sink failures are logged only.
func WithAuditSink(sink AuditSink) Option {
	return func(p *Processor) { p.audit = sink }
}

// NewProcessor creates a processor from injected dependencies.
func NewProcessor(repo Repository, secrets SecretProvider, opts ...Option) *Processor {
	p := &Processor{repo: repo, secrets: secrets}
	for _, opt := range opts {
		opt(p)
	}
	if p.now == nil {
		p.now = func() time.Time { return time.Now().UTC() }
	}
	p.grants = entitlements.NewService(p.role, p.now)
	return p
}

// NewProcessorFromDB wires a processor against a GORM DB handle.
func NewProcessorFromDB(db *gorm.DB, cipher *security.SettingsCipher, opts ...Option) *Processor {
	repos := repository.NewRepositories(db)
	base := []Option{WithAuditSink(NewAuditLogSink(repos.AuditLog))}
	return NewProcessor(NewRepository(db), NewSecretStore(repos.Setting, cipher), append(base, opts...)...)
}

// Role returns the role granted on success.
func (p *Processor) Role() string {
	return p.grants.Role()
}

// Process authenticates and applies one delivery. A returned error means an
// infrastructure failure: nothing was committed and the caller should answer
// with a server error. ErrInvalidPayload marks an authenticated body that
// could not be decoded.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	res := &Result{TraceID: normalizeTraceID(req.TraceID)}

	secret, err := p.secrets.WebhookSecret(ctx)
	if err != nil {
		if errors.Is(err, ErrSecretNotConfigured) {
			fiberlog.Errorf("[Webhook] %v (trace %s)", err, res.TraceID)
			return res.finish(models.OutcomeSettingsNotConfigured, ""), nil
		}
		return res, err
	}

	data, ok := signedData(req.Body)
	if !ok || !VerifySignature(data, req.Signature, secret) {
		fiberlog.Warnf("[Webhook] Rejected delivery with invalid signature (trace %s, %d bytes)", res.TraceID, len(req.Body))
		return res.finish(models.OutcomeSignatureInvalid, "signature mismatch"), nil
	}

	n, err := ParseNotification(req.Body)
	if err != nil {
		fiberlog.Warnf("[Webhook] %v (trace %s)", err, res.TraceID)
		return res, err
	}
	res.OrderID = n.Data.ID

	exists, err := p.repo.OrderExists(ctx, n.Data.ID)
	if err != nil {
		return res, fmt.Errorf("check order %s: %w", n.Data.ID, err)
	}
	if exists {
		fiberlog.Infof("[Webhook] Order %s already processed (trace %s)", n.Data.ID, res.TraceID)
		return res.finish(models.OutcomeDuplicate, ""), nil
	}

	var (
		order *models.PaymentOrder
		grant *entitlements.Grant
	)
	err = p.repo.Transaction(ctx, func(tx Repository) error {
		var txErr error
		order, grant, txErr = p.apply(ctx, tx, n, req.Body, res.TraceID)
		return txErr
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateOrder) {
			fiberlog.Infof("[Webhook] Order %s recorded concurrently (trace %s)", n.Data.ID, res.TraceID)
			return res.finish(models.OutcomeDuplicate, ""), nil
		}
		fiberlog.Errorf("[Webhook] Order %s rolled back: %v (trace %s)", n.Data.ID, err, res.TraceID)
		return res, err
	}

	res.finish(order.Outcome, order.ErrorMessage)
	res.UserID = order.UserID
	if grant != nil {
		expiresAt := grant.ExpiresAt
		res.ExpiresAt = &expiresAt
		p.recordGrant(ctx, order, grant)
	}
	fiberlog.Infof("[Webhook] Order %s processed with outcome %s (trace %s)", n.Data.ID, order.Outcome, res.TraceID)
	return res, nil
}

// apply classifies the notification and writes its effects through tx. The
// ledger row goes in before the user row is locked so a concurrent delivery
// of the same order fails on the unique index first.
func (p *Processor) apply(ctx context.Context, tx Repository, n *Notification, body []byte, traceID string) (*models.PaymentOrder, *entitlements.Grant, error) {
	order, err := newLedgerEntry(n, body, traceID)
	if err != nil {
		return nil, nil, err
	}

	if n.IsRefund() {
		return order, nil, p.record(ctx, tx, order, models.OutcomeRefund, "")
	}

	product, err := tx.FindProductByExternalID(ctx, n.Data.ProductID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return order, nil, p.record(ctx, tx, order, models.OutcomeProductNotFound,
			fmt.Sprintf("product %q not found", n.Data.ProductID))
	case err != nil:
		return nil, nil, fmt.Errorf("find product %s: %w", n.Data.ProductID, err)
	}
	order.ProductID = &product.ID
	if !product.IsActive() {
		return order, nil, p.record(ctx, tx, order, models.OutcomeProductInactive,
			fmt.Sprintf("product %q is %s", product.ExternalID, product.Status))
	}

	user, err := tx.FindUserByEmail(ctx, n.Data.CustomerData.Email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return order, nil, p.record(ctx, tx, order, models.OutcomeUserNotFound,
			fmt.Sprintf("no user with email %q", n.Data.CustomerData.Email))
	case err != nil:
		return nil, nil, fmt.Errorf("find user by email: %w", err)
	}
	order.UserID = &user.ID

	if err := p.record(ctx, tx, order, models.OutcomeSuccess, ""); err != nil {
		return nil, nil, err
	}
	grant, err := p.grants.Extend(ctx, tx, user.ID, product.DurationDays)
	if err != nil {
		return nil, nil, err
	}
	return order, grant, nil
}

func (p *Processor) record(ctx context.Context, tx Repository, order *models.PaymentOrder, outcome models.PaymentOutcome, message string) error {
	order.Outcome = outcome
	order.ErrorMessage = message
	if err := tx.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, ErrDuplicateOrder) {
			return err
		}
		return fmt.Errorf("record order %s: %w", order.OrderID, err)
	}
	return nil
}

func (p *Processor) recordGrant(ctx context.Context, order *models.PaymentOrder, grant *entitlements.Grant) {
	if p.audit == nil {
		return
	}
	if err := p.audit.PremiumGranted(ctx, order, grant); err != nil {
		fiberlog.Warnf("[Webhook] Failed to write audit entry for order %s: %v", order.OrderID, err)
	}
}

func newLedgerEntry(n *Notification, body []byte, traceID string) (*models.PaymentOrder, error) {
	paidAt, err := n.PaidAt()
	if err != nil {
		return nil, fmt.Errorf("%w: createdAt: %v", ErrInvalidPayload, err)
	}
	return &models.PaymentOrder{
		OrderID:       n.Data.ID,
		Event:         n.Event,
		CustomerEmail: n.Data.CustomerData.Email,
		CustomerName:  strings.TrimSpace(n.Data.CustomerData.Name),
		Amount:        n.Data.Amount,
		NetTotal:      n.Data.NetTotal,
		Currency:      n.Data.Currency,
		PaymentMethod: n.Data.PaymentMethod,
		PayloadJSON:   string(body),
		TraceID:       traceID,
		PaidAt:        paidAt,
	}, nil
}

func (r *Result) finish(outcome models.PaymentOutcome, errMsg string) *Result {
	r.Outcome = outcome
	r.Message = Message(outcome)
	r.Error = errMsg
	return r
}

// normalizeTraceID keeps a caller supplied UUID and replaces anything else.
func normalizeTraceID(raw string) string {
	if id, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
