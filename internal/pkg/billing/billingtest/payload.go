package billingtest

import (
	"encoding/json"
	"fmt"

	"github.com/ManuelReschke/PremiumHook/internal/pkg/billing"
)

// Payload describes a notification to build.
type Payload struct {
	Event     string
	OrderID   string
	ProductID string
	Email     string
	Name      string
	Amount    int64
	CreatedAt string
}

// Body renders p as the platform would send it.
func (p Payload) Body() []byte {
	event := p.Event
	if event == "" {
		event = "paid"
	}
	createdAt := p.CreatedAt
	if createdAt == "" {
		createdAt = "2024-01-15T10:00:00.000Z"
	}
	name, _ := json.Marshal(p.Name)
	email, _ := json.Marshal(p.Email)
	return []byte(fmt.Sprintf(`{"event":%q,"timestamp":"2024-01-15T10:00:01.000Z","data":{"id":%q,"amount":%d,"netTotal":%d,"currency":"IDR","productId":%q,"paymentMethod":"qris","createdAt":%q,"customerData":{"name":%s,"email":%s,"phone":"+6281234567890","customFields":{"note":"kopi/teh <3 ☕"}}}}`,
		event, p.OrderID, p.Amount, p.Amount*97/100, p.ProductID, createdAt, name, email))
}

// Signed returns the body and a valid signature for it under secret.
func (p Payload) Signed(secret string) ([]byte, string) {
	body := p.Body()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		panic(err)
	}
	sig, err := billing.Sign(env.Data, secret)
	if err != nil {
		panic(err)
	}
	return body, sig
}
