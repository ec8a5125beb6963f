package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionDirection is the flow of money relative to the account.
type TransactionDirection string

const (
	DirectionNone     TransactionDirection = "NONE"
	DirectionInbound  TransactionDirection = "INBOUND"
	DirectionOutbound TransactionDirection = "OUTBOUND"
)

// DirectionForAmount derives the direction implied by a signed amount.
func DirectionForAmount(amount float64) TransactionDirection {
	switch {
	case amount > 0:
		return DirectionInbound
	case amount < 0:
		return DirectionOutbound
	default:
		return DirectionNone
	}
}

// TransactionSource is the bank-side origin code of a transaction. The
// EXTERNAL_* codes are not bank codes: they are user-maintained entries
// (recurring commitments, savings plans) recorded alongside the feed.
type TransactionSource string

const (
	SourceDirectCredit           TransactionSource = "DIRECT_CREDIT"
	SourceDirectDebit            TransactionSource = "DIRECT_DEBIT"
	SourceDirectDebitDispute     TransactionSource = "DIRECT_DEBIT_DISPUTE"
	SourceInternalTransfer       TransactionSource = "INTERNAL_TRANSFER"
	SourceMasterCard             TransactionSource = "MASTER_CARD"
	SourceMasterCardMoneySend    TransactionSource = "MASTERCARD_MONEYSEND"
	SourceMasterCardChargeback   TransactionSource = "MASTERCARD_CHARGEBACK"
	SourceFasterPaymentsIn       TransactionSource = "FASTER_PAYMENTS_IN"
	SourceFasterPaymentsOut      TransactionSource = "FASTER_PAYMENTS_OUT"
	SourceFasterPaymentsReversal TransactionSource = "FASTER_PAYMENTS_REVERSAL"
	SourceStripeFunding          TransactionSource = "STRIPE_FUNDING"
	SourceInterestPayment        TransactionSource = "INTEREST_PAYMENT"
	SourceNostroDeposit          TransactionSource = "NOSTRO_DEPOSIT"
	SourceOverdraft              TransactionSource = "OVERDRAFT"
	SourceOverdraftInterest      TransactionSource = "OVERDRAFT_INTEREST_WAIVED"
	SourceFPSAccountCheck        TransactionSource = "FPS_ACCOUNT_CHECK"
	SourceIssuerInstallment      TransactionSource = "ISSUER_INSTALLMENT"
	SourceSettleUp               TransactionSource = "SETTLE_UP"
	SourceLoanPrincipalPayment   TransactionSource = "LOAN_PRINCIPAL_PAYMENT"
	SourceLoanRepayment          TransactionSource = "LOAN_REPAYMENT"
	SourceLoanOverpayment        TransactionSource = "LOAN_OVERPAYMENT"
	SourceLoanLatePayment        TransactionSource = "LOAN_LATE_PAYMENT"
	SourceLoanFeePayment         TransactionSource = "LOAN_FEE_PAYMENT"
	SourceLoanInterestCharge     TransactionSource = "LOAN_INTEREST_CHARGE"
	SourceSepaCreditTransfer     TransactionSource = "SEPA_CREDIT_TRANSFER"
	SourceSepaDirectDebit        TransactionSource = "SEPA_DIRECT_DEBIT"
	SourceTarget2Payment         TransactionSource = "TARGET2_CUSTOMER_PAYMENT"
	SourceOnUsPayMe              TransactionSource = "ON_US_PAY_ME"
	SourceChaps                  TransactionSource = "CHAPS"
	SourceCheque                 TransactionSource = "CHEQUE"
	SourceCicsCheque             TransactionSource = "CICS_CHEQUE"
	SourceCurrencyCloud          TransactionSource = "CURRENCY_CLOUD"
	SourceExternalInbound        TransactionSource = "EXTERNAL_INBOUND"
	SourceExternalOutbound       TransactionSource = "EXTERNAL_OUTBOUND"
	SourceExternalRegularInbound TransactionSource = "EXTERNAL_REGULAR_INBOUND"
	SourceExternalRegularOut     TransactionSource = "EXTERNAL_REGULAR_OUTBOUND"
	SourceExternalSavings        TransactionSource = "EXTERNAL_SAVINGS"
)

// IsExternal reports whether the source is a user-maintained entry rather
// than a transaction pulled from the bank feed.
func (s TransactionSource) IsExternal() bool {
	switch s {
	case SourceExternalInbound,
		SourceExternalOutbound,
		SourceExternalRegularInbound,
		SourceExternalRegularOut,
		SourceExternalSavings:
		return true
	}
	return false
}

// Transaction is an immutable financial event belonging to one user. Once
// persisted its financial fields are fixed truth; the feed importer only adds
// rows, and the archive sweep only flips IsArchived.
type Transaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	UserID    uint      `gorm:"index;not null" json:"-"`

	Amount    float64              `gorm:"not null" json:"amount"`
	Direction TransactionDirection `gorm:"size:16;not null" json:"direction"`
	// Created is the bank-side timestamp, the authoritative ordering and
	// filtering key (CreatedAt above is only the row insert time).
	Created    time.Time         `gorm:"index;not null" json:"created"`
	Narrative  string            `gorm:"size:512;not null" json:"narrative"`
	Source     TransactionSource `gorm:"size:64;index;not null" json:"source"`
	IsArchived bool              `gorm:"not null;default:false" json:"isArchived"`

	// Set only on regular (recurring) entries: the narrative and amount their
	// real-world counterpart posts with, used to exclude that counterpart
	// from spending totals.
	InternalNarrative *string  `gorm:"size:512" json:"internalNarrative,omitempty"`
	InternalAmount    *float64 `json:"internalAmount,omitempty"`
}
