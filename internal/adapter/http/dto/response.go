package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/usecase"
)

// BuyResponse represents a purchase in API responses.
type BuyResponse struct {
	ID               string          `json:"id"`
	Date             time.Time       `json:"date"`
	FarmerName       string          `json:"farmer_name"`
	FarmerPhone      string          `json:"farmer_phone,omitempty"`
	GrainType        string          `json:"grain_type"`
	Quantity         decimal.Decimal `json:"quantity"`
	Rate             decimal.Decimal `json:"rate"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	BalanceAmount    decimal.Decimal `json:"balance_amount"`
	PaymentStatus    string          `json:"payment_status"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	LabourCharges    decimal.Decimal `json:"labour_charges"`
	InvoiceNumber    string          `json:"invoice_number,omitempty"`
	Description      string          `json:"description,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// BuyFromDomain converts a domain purchase to a response.
func BuyFromDomain(b *domain.BuyTransaction) *BuyResponse {
	return &BuyResponse{
		ID:               b.ID,
		Date:             b.Date,
		FarmerName:       b.FarmerName,
		FarmerPhone:      b.FarmerPhone,
		GrainType:        b.GrainType,
		Quantity:         b.Quantity,
		Rate:             b.Rate,
		TotalAmount:      b.TotalAmount,
		PaidAmount:       b.PaidAmount,
		BalanceAmount:    b.BalanceAmount,
		PaymentStatus:    string(b.PaymentStatus),
		CommissionAmount: b.CommissionAmount,
		LabourCharges:    b.LabourCharges,
		InvoiceNumber:    b.InvoiceNumber,
		Description:      b.Description,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

// BuysFromDomain converts domain purchases to responses.
func BuysFromDomain(buys []*domain.BuyTransaction) []*BuyResponse {
	result := make([]*BuyResponse, len(buys))
	for i, b := range buys {
		result[i] = BuyFromDomain(b)
	}
	return result
}

// SellItemResponse is one line of a sale in API responses.
type SellItemResponse struct {
	ID        string          `json:"id"`
	GrainType string          `json:"grain_type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Rate      decimal.Decimal `json:"rate"`
	Amount    decimal.Decimal `json:"amount"`
}

// SellResponse represents a sale in API responses.
type SellResponse struct {
	ID               string             `json:"id"`
	Date             time.Time          `json:"date"`
	CustomerName     string             `json:"customer_name"`
	CustomerPhone    string             `json:"customer_phone,omitempty"`
	GrainType        string             `json:"grain_type"`
	Quantity         decimal.Decimal    `json:"quantity"`
	Rate             decimal.Decimal    `json:"rate"`
	TotalAmount      decimal.Decimal    `json:"total_amount"`
	ReceivedAmount   decimal.Decimal    `json:"received_amount"`
	BalanceAmount    decimal.Decimal    `json:"balance_amount"`
	PaymentStatus    string             `json:"payment_status"`
	CommissionAmount decimal.Decimal    `json:"commission_amount"`
	LabourCharges    decimal.Decimal    `json:"labour_charges"`
	InvoiceNumber    string             `json:"invoice_number,omitempty"`
	Description      string             `json:"description,omitempty"`
	Items            []SellItemResponse `json:"items"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// SellFromDomain converts a domain sale to a response.
func SellFromDomain(s *domain.SellTransaction) *SellResponse {
	items := make([]SellItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = SellItemResponse{
			ID:        item.ID,
			GrainType: item.GrainType,
			Quantity:  item.Quantity,
			Rate:      item.Rate,
			Amount:    item.Amount,
		}
	}
	return &SellResponse{
		ID:               s.ID,
		Date:             s.Date,
		CustomerName:     s.CustomerName,
		CustomerPhone:    s.CustomerPhone,
		GrainType:        s.GrainType,
		Quantity:         s.Quantity,
		Rate:             s.Rate,
		TotalAmount:      s.TotalAmount,
		ReceivedAmount:   s.ReceivedAmount,
		BalanceAmount:    s.BalanceAmount,
		PaymentStatus:    string(s.PaymentStatus),
		CommissionAmount: s.CommissionAmount,
		LabourCharges:    s.LabourCharges,
		InvoiceNumber:    s.InvoiceNumber,
		Description:      s.Description,
		Items:            items,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

// SellsFromDomain converts domain sales to responses.
func SellsFromDomain(sells []*domain.SellTransaction) []*SellResponse {
	result := make([]*SellResponse, len(sells))
	for i, s := range sells {
		result[i] = SellFromDomain(s)
	}
	return result
}

// LendResponse represents a loan in API responses.
type LendResponse struct {
	ID                   string          `json:"id"`
	Date                 time.Time       `json:"date"`
	BorrowerName         string          `json:"borrower_name"`
	BorrowerPhone        string          `json:"borrower_phone,omitempty"`
	LendType             string          `json:"lend_type"`
	Amount               decimal.Decimal `json:"amount"`
	ReturnedAmount       decimal.Decimal `json:"returned_amount"`
	BalanceAmount        decimal.Decimal `json:"balance_amount"`
	PaymentStatus        string          `json:"payment_status"`
	InterestRatePerMonth decimal.Decimal `json:"interest_rate_per_month"`
	InvoiceNumber        string          `json:"invoice_number,omitempty"`
	Description          string          `json:"description,omitempty"`
	SelfLoan             bool            `json:"self_loan"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// LendFromDomain converts a domain loan to a response.
func LendFromDomain(l *domain.LendTransaction) *LendResponse {
	return &LendResponse{
		ID:                   l.ID,
		Date:                 l.Date,
		BorrowerName:         l.BorrowerName,
		BorrowerPhone:        l.BorrowerPhone,
		LendType:             string(l.LendType),
		Amount:               l.Amount,
		ReturnedAmount:       l.ReturnedAmount,
		BalanceAmount:        l.BalanceAmount,
		PaymentStatus:        string(l.PaymentStatus),
		InterestRatePerMonth: l.InterestRatePerMonth,
		InvoiceNumber:        l.InvoiceNumber,
		Description:          l.Description,
		SelfLoan:             l.IsSelfLoan(),
		CreatedAt:            l.CreatedAt,
		UpdatedAt:            l.UpdatedAt,
	}
}

// LendsFromDomain converts domain loans to responses.
func LendsFromDomain(lends []*domain.LendTransaction) []*LendResponse {
	result := make([]*LendResponse, len(lends))
	for i, l := range lends {
		result[i] = LendFromDomain(l)
	}
	return result
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	PaidTo        string          `json:"paid_to,omitempty"`
	ReceiptNumber string          `json:"receipt_number,omitempty"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ExpenseFromDomain converts a domain expense to a response.
func ExpenseFromDomain(e *domain.ExpenseTransaction) *ExpenseResponse {
	return &ExpenseResponse{
		ID:            e.ID,
		Date:          e.Date,
		Category:      e.Category,
		Amount:        e.Amount,
		PaidTo:        e.PaidTo,
		ReceiptNumber: e.ReceiptNumber,
		Description:   e.Description,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// ExpensesFromDomain converts domain expenses to responses.
func ExpensesFromDomain(expenses []*domain.ExpenseTransaction) []*ExpenseResponse {
	result := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = ExpenseFromDomain(e)
	}
	return result
}

// PaymentResponse represents a settlement in API responses.
type PaymentResponse struct {
	ID              string          `json:"id"`
	TransactionID   string          `json:"transaction_id"`
	TransactionType string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	InterestAmount  decimal.Decimal `json:"interest_amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	PaymentMode     string          `json:"payment_mode,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PaymentFromDomain converts a domain payment to a response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:              p.ID,
		TransactionID:   p.TransactionID,
		TransactionType: string(p.TransactionType),
		Amount:          p.Amount,
		PrincipalAmount: p.PrincipalAmount,
		InterestAmount:  p.InterestAmount,
		PaymentDate:     p.PaymentDate,
		PaymentMode:     p.PaymentMode,
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
	}
}

// PaymentsFromDomain converts domain payments to responses.
func PaymentsFromDomain(payments []*domain.Payment) []*PaymentResponse {
	result := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = PaymentFromDomain(p)
	}
	return result
}

// AccrualPreviewResponse is the interest position of a loan as of a date.
type AccrualPreviewResponse struct {
	Days                    int64           `json:"days"`
	OutstandingPrincipal    decimal.Decimal `json:"outstanding_principal"`
	TotalInterest           decimal.Decimal `json:"total_interest"`
	TotalAmountWithInterest decimal.Decimal `json:"total_amount_with_interest"`
}

// AccrualPreviewFromUseCase converts an accrual preview to a response.
func AccrualPreviewFromUseCase(p *usecase.AccrualPreview) *AccrualPreviewResponse {
	return &AccrualPreviewResponse{
		Days:                    p.Days,
		OutstandingPrincipal:    p.OutstandingPrincipal,
		TotalInterest:           p.TotalInterest,
		TotalAmountWithInterest: p.TotalAmountWithInterest,
	}
}

// CashBalanceResponse represents the cash book position.
type CashBalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// SyncLogResponse represents one reconciliation sweep in API responses.
type SyncLogResponse struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Pushed     int       `json:"pushed"`
	Pulled     int       `json:"pulled"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Status     string    `json:"status"`
	Detail     string    `json:"detail,omitempty"`
}

// SyncLogFromDomain converts a domain sync log to a response.
func SyncLogFromDomain(l *domain.SyncLog) *SyncLogResponse {
	return &SyncLogResponse{
		ID:         l.ID,
		StartedAt:  l.StartedAt,
		FinishedAt: l.FinishedAt,
		Pushed:     l.Pushed,
		Pulled:     l.Pulled,
		Skipped:    l.Skipped,
		Failed:     l.Failed,
		Status:     l.Status,
		Detail:     l.Detail,
	}
}

// SyncLogsFromDomain converts domain sync logs to responses.
func SyncLogsFromDomain(logs []*domain.SyncLog) []*SyncLogResponse {
	result := make([]*SyncLogResponse, len(logs))
	for i, l := range logs {
		result[i] = SyncLogFromDomain(l)
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
