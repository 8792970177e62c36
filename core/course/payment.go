package course

import (
	"strings"
	"time"

	"github.com/trezcool/educode/core"
)

type Gateway string

const (
	GatewayVNPay  Gateway = "VNPay"
	GatewayMoMo   Gateway = "MoMo"
	GatewayStripe Gateway = "Stripe"
)

type TransactionStatus string

const (
	TransactionSuccess TransactionStatus = "success"
	TransactionFailed  TransactionStatus = "failed"
)

// Transaction is immutable once recorded.
type Transaction struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	CourseID    string            `json:"course_id"`
	CourseTitle string            `json:"course_title"`
	Amount      float64           `json:"amount" validate:"min=0"`
	Date        time.Time         `json:"date"`
	Gateway     Gateway           `json:"gateway" validate:"required,oneof=VNPay MoMo Stripe"`
	Status      TransactionStatus `json:"status" validate:"required,oneof=success failed"`
}

func (t *Transaction) Succeeded() bool { return t.Status == TransactionSuccess }

// Validate checks the payment confirmation against the user and course it is meant to pay for,
// filling the fields the payment collaborator left blank. The amount must cover the price.
func (t *Transaction) Validate(userID string, c Course) error {
	if t.UserID == "" {
		t.UserID = userID
	}
	if t.CourseID == "" {
		t.CourseID = c.ID
	}
	if t.CourseTitle == "" {
		t.CourseTitle = c.Title
	}
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}
	if err := core.ValidateStruct(t); err != nil {
		return err
	}
	if t.UserID != userID || t.CourseID != c.ID {
		return core.NewValidationError(nil, core.FieldError{Field: "transaction", Error: "transaction does not match this enrollment"})
	}
	if t.Amount < c.Price {
		return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: "amount does not cover the course price"})
	}
	return nil
}

// Key is the lower-case key used by the payment gateway switches of the system config.
func (g Gateway) Key() string {
	return strings.ToLower(string(g))
}
