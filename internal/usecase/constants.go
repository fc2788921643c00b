package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds every multi-statement storage transaction.
	DefaultTransactionTimeout = 30 * time.Second

	// DefaultSyncBatchSize caps remote batch writes; the backend rejects
	// batches above 500 operations.
	DefaultSyncBatchSize = 500

	// MirrorUploadTimeout bounds a detached fire-and-forget upload.
	MirrorUploadTimeout = 30 * time.Second
)

// Cash movement reasons, attached to every signed cash delta for logging.
const (
	CashReasonBuyPayment     = "buy payment to farmer"
	CashReasonBuyReversal    = "buy payment reversed"
	CashReasonSellReceipt    = "sell receipt from customer"
	CashReasonSellReversal   = "sell receipt reversed"
	CashReasonLendOut        = "money lent to borrower"
	CashReasonSelfLoanIn     = "self-loan borrowed"
	CashReasonLendRepayment  = "loan repayment received"
	CashReasonSelfLoanSettle = "self-loan settled"
	CashReasonLendReversal   = "loan payment reversed"
	CashReasonExpense        = "expense paid"
	CashReasonExpenseRevert  = "expense reversed"
	CashReasonUserOverride   = "user balance override"
	CashReasonReset          = "balance reset"
)
