package remote

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mandibook/mandiledger/internal/domain"
)

// envelope is the wire form of a ledger transaction. Exactly one variant is
// present, matching the type tag.
type envelope struct {
	Type    string       `json:"type"`
	Buy     *buyWire     `json:"buy,omitempty"`
	Sell    *sellWire    `json:"sell,omitempty"`
	Lend    *lendWire    `json:"lend,omitempty"`
	Expense *expenseWire `json:"expense,omitempty"`
}

type buyWire struct {
	ID               string          `json:"id"`
	Date             time.Time       `json:"date"`
	FarmerName       string          `json:"farmerName"`
	FarmerPhone      string          `json:"farmerPhone,omitempty"`
	GrainType        string          `json:"grainType"`
	Quantity         decimal.Decimal `json:"quantity"`
	Rate             decimal.Decimal `json:"rate"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	PaidAmount       decimal.Decimal `json:"paidAmount"`
	BalanceAmount    decimal.Decimal `json:"balanceAmount"`
	PaymentStatus    string          `json:"paymentStatus"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
	LabourCharges    decimal.Decimal `json:"labourCharges"`
	InvoiceNumber    string          `json:"invoiceNumber,omitempty"`
	Description      string          `json:"description,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type sellItemWire struct {
	ID        string          `json:"id"`
	GrainType string          `json:"grainType"`
	Quantity  decimal.Decimal `json:"quantity"`
	Rate      decimal.Decimal `json:"rate"`
	Amount    decimal.Decimal `json:"amount"`
}

type sellWire struct {
	ID               string          `json:"id"`
	Date             time.Time       `json:"date"`
	CustomerName     string          `json:"customerName"`
	CustomerPhone    string          `json:"customerPhone,omitempty"`
	GrainType        string          `json:"grainType"`
	Quantity         decimal.Decimal `json:"quantity"`
	Rate             decimal.Decimal `json:"rate"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	ReceivedAmount   decimal.Decimal `json:"receivedAmount"`
	BalanceAmount    decimal.Decimal `json:"balanceAmount"`
	PaymentStatus    string          `json:"paymentStatus"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
	LabourCharges    decimal.Decimal `json:"labourCharges"`
	InvoiceNumber    string          `json:"invoiceNumber,omitempty"`
	Description      string          `json:"description,omitempty"`
	Items            []sellItemWire  `json:"items,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type lendWire struct {
	ID                   string          `json:"id"`
	Date                 time.Time       `json:"date"`
	BorrowerName         string          `json:"borrowerName"`
	BorrowerPhone        string          `json:"borrowerPhone,omitempty"`
	LendType             string          `json:"lendType"`
	Amount               decimal.Decimal `json:"amount"`
	ReturnedAmount       decimal.Decimal `json:"returnedAmount"`
	BalanceAmount        decimal.Decimal `json:"balanceAmount"`
	PaymentStatus        string          `json:"paymentStatus"`
	InterestRatePerMonth decimal.Decimal `json:"interestRatePerMonth"`
	InvoiceNumber        string          `json:"invoiceNumber,omitempty"`
	Description          string          `json:"description,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

type expenseWire struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	PaidTo        string          `json:"paidTo,omitempty"`
	ReceiptNumber string          `json:"receiptNumber,omitempty"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func envelopeFromDomain(txn *domain.Transaction) envelope {
	e := envelope{Type: string(txn.Type)}

	switch txn.Type {
	case domain.TypeBuy:
		b := txn.Buy
		e.Buy = &buyWire{
			ID: b.ID, Date: b.Date, FarmerName: b.FarmerName, FarmerPhone: b.FarmerPhone,
			GrainType: b.GrainType, Quantity: b.Quantity, Rate: b.Rate,
			TotalAmount: b.TotalAmount, PaidAmount: b.PaidAmount, BalanceAmount: b.BalanceAmount,
			PaymentStatus: string(b.PaymentStatus), CommissionAmount: b.CommissionAmount,
			LabourCharges: b.LabourCharges, InvoiceNumber: b.InvoiceNumber,
			Description: b.Description, CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt,
		}
	case domain.TypeSell:
		s := txn.Sell
		items := make([]sellItemWire, 0, len(s.Items))
		for _, item := range s.Items {
			items = append(items, sellItemWire{
				ID: item.ID, GrainType: item.GrainType,
				Quantity: item.Quantity, Rate: item.Rate, Amount: item.Amount,
			})
		}
		e.Sell = &sellWire{
			ID: s.ID, Date: s.Date, CustomerName: s.CustomerName, CustomerPhone: s.CustomerPhone,
			GrainType: s.GrainType, Quantity: s.Quantity, Rate: s.Rate,
			TotalAmount: s.TotalAmount, ReceivedAmount: s.ReceivedAmount, BalanceAmount: s.BalanceAmount,
			PaymentStatus: string(s.PaymentStatus), CommissionAmount: s.CommissionAmount,
			LabourCharges: s.LabourCharges, InvoiceNumber: s.InvoiceNumber,
			Description: s.Description, Items: items, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
		}
	case domain.TypeLend:
		l := txn.Lend
		e.Lend = &lendWire{
			ID: l.ID, Date: l.Date, BorrowerName: l.BorrowerName, BorrowerPhone: l.BorrowerPhone,
			LendType: string(l.LendType), Amount: l.Amount, ReturnedAmount: l.ReturnedAmount,
			BalanceAmount: l.BalanceAmount, PaymentStatus: string(l.PaymentStatus),
			InterestRatePerMonth: l.InterestRatePerMonth, InvoiceNumber: l.InvoiceNumber,
			Description: l.Description, CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt,
		}
	case domain.TypeExpense:
		x := txn.Expense
		e.Expense = &expenseWire{
			ID: x.ID, Date: x.Date, Category: x.Category, Amount: x.Amount,
			PaidTo: x.PaidTo, ReceiptNumber: x.ReceiptNumber, Description: x.Description,
			CreatedAt: x.CreatedAt, UpdatedAt: x.UpdatedAt,
		}
	}

	return e
}

func (e envelope) toDomain() (*domain.Transaction, error) {
	switch domain.TransactionType(e.Type) {
	case domain.TypeBuy:
		if e.Buy == nil {
			return nil, fmt.Errorf("buy transaction without payload")
		}
		b := e.Buy
		return &domain.Transaction{Type: domain.TypeBuy, Buy: &domain.BuyTransaction{
			ID: b.ID, Date: b.Date, FarmerName: b.FarmerName, FarmerPhone: b.FarmerPhone,
			GrainType: b.GrainType, Quantity: b.Quantity, Rate: b.Rate,
			TotalAmount: b.TotalAmount, PaidAmount: b.PaidAmount, BalanceAmount: b.BalanceAmount,
			PaymentStatus: domain.PaymentStatus(b.PaymentStatus), CommissionAmount: b.CommissionAmount,
			LabourCharges: b.LabourCharges, InvoiceNumber: b.InvoiceNumber,
			Description: b.Description, CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt,
		}}, nil
	case domain.TypeSell:
		if e.Sell == nil {
			return nil, fmt.Errorf("sell transaction without payload")
		}
		s := e.Sell
		items := make([]domain.SellItem, 0, len(s.Items))
		for _, item := range s.Items {
			items = append(items, domain.SellItem{
				ID: item.ID, SellID: s.ID, GrainType: item.GrainType,
				Quantity: item.Quantity, Rate: item.Rate, Amount: item.Amount,
			})
		}
		return &domain.Transaction{Type: domain.TypeSell, Sell: &domain.SellTransaction{
			ID: s.ID, Date: s.Date, CustomerName: s.CustomerName, CustomerPhone: s.CustomerPhone,
			GrainType: s.GrainType, Quantity: s.Quantity, Rate: s.Rate,
			TotalAmount: s.TotalAmount, ReceivedAmount: s.ReceivedAmount, BalanceAmount: s.BalanceAmount,
			PaymentStatus: domain.PaymentStatus(s.PaymentStatus), CommissionAmount: s.CommissionAmount,
			LabourCharges: s.LabourCharges, InvoiceNumber: s.InvoiceNumber,
			Description: s.Description, Items: items, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
		}}, nil
	case domain.TypeLend:
		if e.Lend == nil {
			return nil, fmt.Errorf("lend transaction without payload")
		}
		l := e.Lend
		return &domain.Transaction{Type: domain.TypeLend, Lend: &domain.LendTransaction{
			ID: l.ID, Date: l.Date, BorrowerName: l.BorrowerName, BorrowerPhone: l.BorrowerPhone,
			LendType: domain.LendType(l.LendType), Amount: l.Amount, ReturnedAmount: l.ReturnedAmount,
			BalanceAmount: l.BalanceAmount, PaymentStatus: domain.PaymentStatus(l.PaymentStatus),
			InterestRatePerMonth: l.InterestRatePerMonth, InvoiceNumber: l.InvoiceNumber,
			Description: l.Description, CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt,
		}}, nil
	case domain.TypeExpense:
		if e.Expense == nil {
			return nil, fmt.Errorf("expense transaction without payload")
		}
		x := e.Expense
		return &domain.Transaction{Type: domain.TypeExpense, Expense: &domain.ExpenseTransaction{
			ID: x.ID, Date: x.Date, Category: x.Category, Amount: x.Amount,
			PaidTo: x.PaidTo, ReceiptNumber: x.ReceiptNumber, Description: x.Description,
			CreatedAt: x.CreatedAt, UpdatedAt: x.UpdatedAt,
		}}, nil
	default:
		return nil, fmt.Errorf("unknown transaction type %q", e.Type)
	}
}
