package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CommissionJobStatus string

const (
	CommissionJobStatusPending CommissionJobStatus = "pending"
	CommissionJobStatusDone    CommissionJobStatus = "done"
	CommissionJobStatusFailed  CommissionJobStatus = "failed"
)

// CommissionJob is the outbox row written inside the transfer transaction.
// The commission worker re-drives jobs that did not complete on the first,
// synchronous attempt.
type CommissionJob struct {
	ID          uuid.UUID           `json:"id" db:"id"`
	TransferID  uuid.UUID           `json:"transfer_id" db:"transfer_id"`
	RecipientID string              `json:"recipient_id" db:"recipient_id"`
	Amount      decimal.Decimal     `json:"amount" db:"amount"`
	Status      CommissionJobStatus `json:"status" db:"status"`
	Attempts    int                 `json:"attempts" db:"attempts"`
	LastError   *string             `json:"last_error,omitempty" db:"last_error"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" db:"updated_at"`
}
