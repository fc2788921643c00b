package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/usecase"
)

// CreateBuyRequest represents a request to record a grain purchase.
type CreateBuyRequest struct {
	Date             time.Time       `json:"date"`
	FarmerName       string          `json:"farmer_name"`
	FarmerPhone      string          `json:"farmer_phone,omitempty"`
	GrainType        string          `json:"grain_type"`
	Quantity         decimal.Decimal `json:"quantity"`
	Rate             decimal.Decimal `json:"rate"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	LabourCharges    decimal.Decimal `json:"labour_charges"`
	Description      string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateBuyRequest) ToUseCaseInput() usecase.CreateBuyInput {
	return usecase.CreateBuyInput{
		Date:             r.Date,
		FarmerName:       r.FarmerName,
		FarmerPhone:      r.FarmerPhone,
		GrainType:        r.GrainType,
		Quantity:         r.Quantity,
		Rate:             r.Rate,
		CommissionAmount: r.CommissionAmount,
		LabourCharges:    r.LabourCharges,
		Description:      r.Description,
	}
}

// SellItemRequest is one line of a sale.
type SellItemRequest struct {
	GrainType string          `json:"grain_type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Rate      decimal.Decimal `json:"rate"`
}

// CreateSellRequest represents a request to record a grain sale.
type CreateSellRequest struct {
	Date             time.Time         `json:"date"`
	CustomerName     string            `json:"customer_name"`
	CustomerPhone    string            `json:"customer_phone,omitempty"`
	Items            []SellItemRequest `json:"items"`
	CommissionAmount decimal.Decimal   `json:"commission_amount"`
	LabourCharges    decimal.Decimal   `json:"labour_charges"`
	Description      string            `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateSellRequest) ToUseCaseInput() usecase.CreateSellInput {
	items := make([]usecase.SellItemInput, len(r.Items))
	for i, item := range r.Items {
		items[i] = usecase.SellItemInput{
			GrainType: item.GrainType,
			Quantity:  item.Quantity,
			Rate:      item.Rate,
		}
	}
	return usecase.CreateSellInput{
		Date:             r.Date,
		CustomerName:     r.CustomerName,
		CustomerPhone:    r.CustomerPhone,
		Items:            items,
		CommissionAmount: r.CommissionAmount,
		LabourCharges:    r.LabourCharges,
		Description:      r.Description,
	}
}

// CreateLendRequest represents a request to record a loan. A request without
// a borrower phone records money the business itself borrowed.
type CreateLendRequest struct {
	Date                 time.Time       `json:"date"`
	BorrowerName         string          `json:"borrower_name"`
	BorrowerPhone        string          `json:"borrower_phone,omitempty"`
	LendType             string          `json:"lend_type"`
	Amount               decimal.Decimal `json:"amount"`
	InterestRatePerMonth decimal.Decimal `json:"interest_rate_per_month"`
	Description          string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateLendRequest) ToUseCaseInput() usecase.CreateLendInput {
	return usecase.CreateLendInput{
		Date:                 r.Date,
		BorrowerName:         r.BorrowerName,
		BorrowerPhone:        r.BorrowerPhone,
		LendType:             domain.LendType(r.LendType),
		Amount:               r.Amount,
		InterestRatePerMonth: r.InterestRatePerMonth,
		Description:          r.Description,
	}
}

// CreateExpenseRequest represents a request to record an expense.
type CreateExpenseRequest struct {
	Date          time.Time       `json:"date"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	PaidTo        string          `json:"paid_to,omitempty"`
	ReceiptNumber string          `json:"receipt_number,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateExpenseRequest) ToUseCaseInput() usecase.CreateExpenseInput {
	return usecase.CreateExpenseInput{
		Date:          r.Date,
		Category:      r.Category,
		Amount:        r.Amount,
		PaidTo:        r.PaidTo,
		ReceiptNumber: r.ReceiptNumber,
		Description:   r.Description,
	}
}

// AddPaymentRequest represents a settlement against a buy or sell.
type AddPaymentRequest struct {
	TransactionID   string          `json:"transaction_id"`
	TransactionType string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	PaymentMode     string          `json:"payment_mode,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AddPaymentRequest) ToUseCaseInput() usecase.AddPaymentInput {
	return usecase.AddPaymentInput{
		TransactionID:   r.TransactionID,
		TransactionType: domain.TransactionType(r.TransactionType),
		Amount:          r.Amount,
		PaymentDate:     r.PaymentDate,
		PaymentMode:     r.PaymentMode,
		Notes:           r.Notes,
	}
}

// AddLendPaymentRequest represents a repayment against a loan. A final
// repayment omits the amount; the server derives principal plus accrued
// interest as of the payment date.
type AddLendPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	PaymentMode string          `json:"payment_mode,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Final       bool            `json:"final,omitempty"`
}

// ToUseCaseInput converts to use case input for the given loan.
func (r *AddLendPaymentRequest) ToUseCaseInput(transactionID string) usecase.AddLendPaymentInput {
	kind := domain.PaymentPartial
	if r.Final {
		kind = domain.PaymentFinal
	}
	return usecase.AddLendPaymentInput{
		TransactionID: transactionID,
		Amount:        r.Amount,
		PaymentDate:   r.PaymentDate,
		PaymentMode:   r.PaymentMode,
		Notes:         r.Notes,
		Kind:          kind,
	}
}

// OverrideCashRequest sets the cash balance to an absolute value.
type OverrideCashRequest struct {
	Balance decimal.Decimal `json:"balance"`
}
