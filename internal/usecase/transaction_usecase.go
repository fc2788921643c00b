package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/infrastructure/metrics"
)

// TransactionUseCase owns the create/update/delete entry points for the four
// ledger transaction types. Creation assigns the id and the invoice number
// inside one storage transaction; deletion cascades to payments and reverses
// every cash delta the transaction ever caused.
type TransactionUseCase struct {
	txManager   TransactionManager
	buyRepo     BuyRepository
	sellRepo    SellRepository
	lendRepo    LendRepository
	expenseRepo ExpenseRepository
	paymentRepo PaymentRepository
	invoiceRepo InvoiceSequenceRepository
	mappingRepo MappingRepository
	cashBook    *CashBookUseCase
	syncer      SyncNotifier
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	buyRepo BuyRepository,
	sellRepo SellRepository,
	lendRepo LendRepository,
	expenseRepo ExpenseRepository,
	paymentRepo PaymentRepository,
	invoiceRepo InvoiceSequenceRepository,
	mappingRepo MappingRepository,
	cashBook *CashBookUseCase,
	syncer SyncNotifier,
	idGen IDGenerator,
	m *metrics.Metrics,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:   txManager,
		buyRepo:     buyRepo,
		sellRepo:    sellRepo,
		lendRepo:    lendRepo,
		expenseRepo: expenseRepo,
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		mappingRepo: mappingRepo,
		cashBook:    cashBook,
		syncer:      syncer,
		idGen:       idGen,
		metrics:     m,
	}
}

// nextInvoiceNumber draws the next per-day sequence and formats it.
func (uc *TransactionUseCase) nextInvoiceNumber(ctx context.Context, tx Transaction, txType domain.TransactionType, day time.Time) (string, error) {
	seq, err := uc.invoiceRepo.Next(ctx, tx, txType, day)
	if err != nil {
		return "", err
	}
	return domain.FormatInvoiceNumber(txType, day, seq)
}

// CreateBuyInput represents input for recording a grain purchase.
type CreateBuyInput struct {
	Date             time.Time
	FarmerName       string
	FarmerPhone      string
	GrainType        string
	Quantity         decimal.Decimal
	Rate             decimal.Decimal
	CommissionAmount decimal.Decimal
	LabourCharges    decimal.Decimal
	Description      string
}

func (in CreateBuyInput) validate() error {
	if err := domain.ValidateName(in.FarmerName); err != nil {
		return err
	}
	if err := domain.ValidatePhone(in.FarmerPhone); err != nil {
		return err
	}
	if err := domain.ValidateGrainType(in.GrainType); err != nil {
		return err
	}
	if err := domain.ValidatePositiveAmount(in.Quantity); err != nil {
		return fmt.Errorf("%w: quantity", err)
	}
	if err := domain.ValidatePositiveAmount(in.Rate); err != nil {
		return fmt.Errorf("%w: rate", err)
	}
	return nil
}

// CreateBuy records a purchase. Settlement happens through payments only,
// so the record starts fully unpaid.
func (uc *TransactionUseCase) CreateBuy(ctx context.Context, input CreateBuyInput) (*domain.BuyTransaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	date := input.Date
	if date.IsZero() {
		date = now
	}

	invoice, err := uc.nextInvoiceNumber(txCtx, tx, domain.TypeBuy, date)
	if err != nil {
		return nil, err
	}

	total := input.Quantity.Mul(input.Rate)
	buy := &domain.BuyTransaction{
		ID:               uc.idGen.Generate(),
		Date:             date,
		FarmerName:       input.FarmerName,
		FarmerPhone:      input.FarmerPhone,
		GrainType:        input.GrainType,
		Quantity:         input.Quantity,
		Rate:             input.Rate,
		TotalAmount:      total,
		PaidAmount:       decimal.Zero,
		BalanceAmount:    total,
		PaymentStatus:    domain.StatusPending,
		CommissionAmount: input.CommissionAmount,
		LabourCharges:    input.LabourCharges,
		InvoiceNumber:    invoice,
		Description:      input.Description,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := uc.buyRepo.Create(txCtx, tx, buy); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.created(ctx, &domain.Transaction{Type: domain.TypeBuy, Buy: buy})

	return buy, nil
}

// SellItemInput is one line of a multi-item sell receipt.
type SellItemInput struct {
	GrainType string
	Quantity  decimal.Decimal
	Rate      decimal.Decimal
}

// CreateSellInput represents input for recording a grain sale. A sale
// carries one or more line items; single-item sales pass exactly one.
type CreateSellInput struct {
	Date             time.Time
	CustomerName     string
	CustomerPhone    string
	Items            []SellItemInput
	CommissionAmount decimal.Decimal
	LabourCharges    decimal.Decimal
	Description      string
}

func (in CreateSellInput) validate() error {
	if err := domain.ValidateName(in.CustomerName); err != nil {
		return err
	}
	if err := domain.ValidatePhone(in.CustomerPhone); err != nil {
		return err
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: at least one line item", domain.ErrMissingField)
	}
	for _, item := range in.Items {
		if err := domain.ValidateGrainType(item.GrainType); err != nil {
			return err
		}
		if err := domain.ValidatePositiveAmount(item.Quantity); err != nil {
			return fmt.Errorf("%w: item quantity", err)
		}
		if err := domain.ValidatePositiveAmount(item.Rate); err != nil {
			return fmt.Errorf("%w: item rate", err)
		}
	}
	return nil
}

// CreateSell records a sale with its line items as first-class rows.
func (uc *TransactionUseCase) CreateSell(ctx context.Context, input CreateSellInput) (*domain.SellTransaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	date := input.Date
	if date.IsZero() {
		date = now
	}

	invoice, err := uc.nextInvoiceNumber(txCtx, tx, domain.TypeSell, date)
	if err != nil {
		return nil, err
	}

	sellID := uc.idGen.Generate()
	total := decimal.Zero
	quantity := decimal.Zero
	items := make([]domain.SellItem, 0, len(input.Items))
	for _, in := range input.Items {
		amount := in.Quantity.Mul(in.Rate)
		items = append(items, domain.SellItem{
			ID:        uc.idGen.Generate(),
			SellID:    sellID,
			GrainType: in.GrainType,
			Quantity:  in.Quantity,
			Rate:      in.Rate,
			Amount:    amount,
		})
		total = total.Add(amount)
		quantity = quantity.Add(in.Quantity)
	}

	sell := &domain.SellTransaction{
		ID:               sellID,
		Date:             date,
		CustomerName:     input.CustomerName,
		CustomerPhone:    input.CustomerPhone,
		GrainType:        input.Items[0].GrainType,
		Quantity:         quantity,
		Rate:             input.Items[0].Rate,
		TotalAmount:      total,
		ReceivedAmount:   decimal.Zero,
		BalanceAmount:    total,
		PaymentStatus:    domain.StatusPending,
		CommissionAmount: input.CommissionAmount,
		LabourCharges:    input.LabourCharges,
		InvoiceNumber:    invoice,
		Description:      input.Description,
		Items:            items,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := uc.sellRepo.Create(txCtx, tx, sell); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.created(ctx, &domain.Transaction{Type: domain.TypeSell, Sell: sell})

	return sell, nil
}

// CreateLendInput represents input for recording a loan. An empty borrower
// phone marks a self-loan: money the business itself borrowed.
type CreateLendInput struct {
	Date                 time.Time
	BorrowerName         string
	BorrowerPhone        string
	LendType             domain.LendType
	Amount               decimal.Decimal
	InterestRatePerMonth decimal.Decimal
	Description          string
}

func (in CreateLendInput) validate() error {
	if err := domain.ValidateName(in.BorrowerName); err != nil {
		return err
	}
	if err := domain.ValidatePhone(in.BorrowerPhone); err != nil {
		return err
	}
	if in.LendType != domain.LendMoney && in.LendType != domain.LendGrain {
		return fmt.Errorf("%w: %s", domain.ErrInvalidLendType, in.LendType)
	}
	if err := domain.ValidatePositiveAmount(in.Amount); err != nil {
		return err
	}
	return domain.ValidateRate(in.InterestRatePerMonth)
}

// CreateLend records a loan. Money loans move cash at origination: lending
// to a counterparty is cash out, a self-loan origination is cash in.
func (uc *TransactionUseCase) CreateLend(ctx context.Context, input CreateLendInput) (*domain.LendTransaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	date := input.Date
	if date.IsZero() {
		date = now
	}

	invoice, err := uc.nextInvoiceNumber(txCtx, tx, domain.TypeLend, date)
	if err != nil {
		return nil, err
	}

	lend := &domain.LendTransaction{
		ID:                   uc.idGen.Generate(),
		Date:                 date,
		BorrowerName:         input.BorrowerName,
		BorrowerPhone:        input.BorrowerPhone,
		LendType:             input.LendType,
		Amount:               input.Amount,
		ReturnedAmount:       decimal.Zero,
		BalanceAmount:        input.Amount,
		PaymentStatus:        domain.StatusPending,
		InterestRatePerMonth: input.InterestRatePerMonth,
		InvoiceNumber:        invoice,
		Description:          input.Description,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := uc.lendRepo.Create(txCtx, tx, lend); err != nil {
		return nil, err
	}

	if lend.LendType == domain.LendMoney {
		if lend.IsSelfLoan() {
			err = uc.cashBook.Add(txCtx, tx, lend.Amount, CashReasonSelfLoanIn)
		} else {
			err = uc.cashBook.Subtract(txCtx, tx, lend.Amount, CashReasonLendOut)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.created(ctx, &domain.Transaction{Type: domain.TypeLend, Lend: lend})

	return lend, nil
}

// CreateExpenseInput represents input for recording an expense.
type CreateExpenseInput struct {
	Date          time.Time
	Category      string
	Amount        decimal.Decimal
	PaidTo        string
	ReceiptNumber string
	Description   string
}

func (in CreateExpenseInput) validate() error {
	if in.Category == "" {
		return fmt.Errorf("%w: category", domain.ErrMissingField)
	}
	return domain.ValidatePositiveAmount(in.Amount)
}

// CreateExpense records an expense; the amount leaves the cash book at once.
func (uc *TransactionUseCase) CreateExpense(ctx context.Context, input CreateExpenseInput) (*domain.ExpenseTransaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	date := input.Date
	if date.IsZero() {
		date = now
	}

	expense := &domain.ExpenseTransaction{
		ID:            uc.idGen.Generate(),
		Date:          date,
		Category:      input.Category,
		Amount:        input.Amount,
		PaidTo:        input.PaidTo,
		ReceiptNumber: input.ReceiptNumber,
		Description:   input.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.expenseRepo.Create(txCtx, tx, expense); err != nil {
		return nil, err
	}

	if err := uc.cashBook.Subtract(txCtx, tx, expense.Amount, CashReasonExpense); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.created(ctx, &domain.Transaction{Type: domain.TypeExpense, Expense: expense})

	return expense, nil
}

// UpdateBuy edits a purchase that has no settlements yet. The invoice
// number and creation time are kept; totals are recomputed from the new
// quantity and rate.
func (uc *TransactionUseCase) UpdateBuy(ctx context.Context, id string, input CreateBuyInput) (*domain.BuyTransaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	buy, err := uc.buyRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}
	if !buy.PaidAmount.IsZero() {
		return nil, domain.ErrTransactionSettled
	}

	if !input.Date.IsZero() {
		buy.Date = input.Date
	}
	total := input.Quantity.Mul(input.Rate)
	buy.FarmerName = input.FarmerName
	buy.FarmerPhone = input.FarmerPhone
	buy.GrainType = input.GrainType
	buy.Quantity = input.Quantity
	buy.Rate = input.Rate
	buy.TotalAmount = total
	buy.BalanceAmount = total
	buy.CommissionAmount = input.CommissionAmount
	buy.LabourCharges = input.LabourCharges
	buy.Description = input.Description
	buy.UpdatedAt = time.Now().UTC()

	if err := uc.buyRepo.Update(txCtx, tx, buy); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.updated(ctx, &domain.Transaction{Type: domain.TypeBuy, Buy: buy})

	return buy, nil
}

// UpdateSell edits a sale that has no receipts yet, replacing its line
// items wholesale.
func (uc *TransactionUseCase) UpdateSell(ctx context.Context, id string, input CreateSellInput) (*domain.SellTransaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	sell, err := uc.sellRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}
	if !sell.ReceivedAmount.IsZero() {
		return nil, domain.ErrTransactionSettled
	}

	total := decimal.Zero
	quantity := decimal.Zero
	items := make([]domain.SellItem, 0, len(input.Items))
	for _, in := range input.Items {
		amount := in.Quantity.Mul(in.Rate)
		items = append(items, domain.SellItem{
			ID:        uc.idGen.Generate(),
			SellID:    sell.ID,
			GrainType: in.GrainType,
			Quantity:  in.Quantity,
			Rate:      in.Rate,
			Amount:    amount,
		})
		total = total.Add(amount)
		quantity = quantity.Add(in.Quantity)
	}

	if !input.Date.IsZero() {
		sell.Date = input.Date
	}
	sell.CustomerName = input.CustomerName
	sell.CustomerPhone = input.CustomerPhone
	sell.GrainType = input.Items[0].GrainType
	sell.Quantity = quantity
	sell.Rate = input.Items[0].Rate
	sell.TotalAmount = total
	sell.BalanceAmount = total
	sell.CommissionAmount = input.CommissionAmount
	sell.LabourCharges = input.LabourCharges
	sell.Description = input.Description
	sell.Items = items
	sell.UpdatedAt = time.Now().UTC()

	if err := uc.sellRepo.Update(txCtx, tx, sell); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.updated(ctx, &domain.Transaction{Type: domain.TypeSell, Sell: sell})

	return sell, nil
}

// UpdateLend edits a loan that has no repayments yet. The origination cash
// effect is re-derived: the old amount's effect is undone and the new one
// applied, so changing the amount, the type or the borrower phone keeps
// the cash book conserved.
func (uc *TransactionUseCase) UpdateLend(ctx context.Context, id string, input CreateLendInput) (*domain.LendTransaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	lend, err := uc.lendRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}
	if !lend.ReturnedAmount.IsZero() {
		return nil, domain.ErrTransactionSettled
	}

	if lend.LendType == domain.LendMoney {
		if lend.IsSelfLoan() {
			err = uc.cashBook.Subtract(txCtx, tx, lend.Amount, CashReasonLendReversal)
		} else {
			err = uc.cashBook.Add(txCtx, tx, lend.Amount, CashReasonLendReversal)
		}
		if err != nil {
			return nil, err
		}
	}

	if !input.Date.IsZero() {
		lend.Date = input.Date
	}
	lend.BorrowerName = input.BorrowerName
	lend.BorrowerPhone = input.BorrowerPhone
	lend.LendType = input.LendType
	lend.Amount = input.Amount
	lend.BalanceAmount = input.Amount
	lend.InterestRatePerMonth = input.InterestRatePerMonth
	lend.Description = input.Description
	lend.UpdatedAt = time.Now().UTC()

	if lend.LendType == domain.LendMoney {
		if lend.IsSelfLoan() {
			err = uc.cashBook.Add(txCtx, tx, lend.Amount, CashReasonSelfLoanIn)
		} else {
			err = uc.cashBook.Subtract(txCtx, tx, lend.Amount, CashReasonLendOut)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := uc.lendRepo.Update(txCtx, tx, lend); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.updated(ctx, &domain.Transaction{Type: domain.TypeLend, Lend: lend})

	return lend, nil
}

// UpdateExpense edits an expense, adjusting the cash book by the amount
// difference.
func (uc *TransactionUseCase) UpdateExpense(ctx context.Context, id string, input CreateExpenseInput) (*domain.ExpenseTransaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	expense, err := uc.expenseRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.cashBook.Add(txCtx, tx, expense.Amount, CashReasonExpenseRevert); err != nil {
		return nil, err
	}

	if !input.Date.IsZero() {
		expense.Date = input.Date
	}
	expense.Category = input.Category
	expense.Amount = input.Amount
	expense.PaidTo = input.PaidTo
	expense.ReceiptNumber = input.ReceiptNumber
	expense.Description = input.Description
	expense.UpdatedAt = time.Now().UTC()

	if err := uc.cashBook.Subtract(txCtx, tx, expense.Amount, CashReasonExpense); err != nil {
		return nil, err
	}

	if err := uc.expenseRepo.Update(txCtx, tx, expense); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.updated(ctx, &domain.Transaction{Type: domain.TypeExpense, Expense: expense})

	return expense, nil
}

// DeleteTransaction removes a transaction, cascading to its payments. Every
// cash delta the transaction caused — payments, loan origination, expense —
// is reversed so the running balance stays conserved, then a best-effort
// remote delete is queued.
func (uc *TransactionUseCase) DeleteTransaction(ctx context.Context, txType domain.TransactionType, id string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	switch txType {
	case domain.TypeBuy:
		if _, err := uc.buyRepo.GetByIDForUpdate(txCtx, tx, id); err != nil {
			return err
		}
		if err := uc.reversePaymentCash(txCtx, tx, txType, id, nil); err != nil {
			return err
		}
		if err := uc.paymentRepo.DeleteByTransaction(txCtx, tx, txType, id); err != nil {
			return err
		}
		if err := uc.buyRepo.Delete(txCtx, tx, id); err != nil {
			return err
		}

	case domain.TypeSell:
		if _, err := uc.sellRepo.GetByIDForUpdate(txCtx, tx, id); err != nil {
			return err
		}
		if err := uc.reversePaymentCash(txCtx, tx, txType, id, nil); err != nil {
			return err
		}
		if err := uc.paymentRepo.DeleteByTransaction(txCtx, tx, txType, id); err != nil {
			return err
		}
		if err := uc.sellRepo.Delete(txCtx, tx, id); err != nil {
			return err
		}

	case domain.TypeLend:
		lend, err := uc.lendRepo.GetByIDForUpdate(txCtx, tx, id)
		if err != nil {
			return err
		}
		if err := uc.reversePaymentCash(txCtx, tx, txType, id, lend); err != nil {
			return err
		}
		if lend.LendType == domain.LendMoney {
			if lend.IsSelfLoan() {
				err = uc.cashBook.Subtract(txCtx, tx, lend.Amount, CashReasonLendReversal)
			} else {
				err = uc.cashBook.Add(txCtx, tx, lend.Amount, CashReasonLendReversal)
			}
			if err != nil {
				return err
			}
		}
		if err := uc.paymentRepo.DeleteByTransaction(txCtx, tx, txType, id); err != nil {
			return err
		}
		if err := uc.lendRepo.Delete(txCtx, tx, id); err != nil {
			return err
		}

	case domain.TypeExpense:
		expense, err := uc.expenseRepo.GetByIDForUpdate(txCtx, tx, id)
		if err != nil {
			return err
		}
		if err := uc.cashBook.Add(txCtx, tx, expense.Amount, CashReasonExpenseRevert); err != nil {
			return err
		}
		if err := uc.expenseRepo.Delete(txCtx, tx, id); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: %s", domain.ErrInvalidType, txType)
	}

	if err := uc.mappingRepo.DeleteByLocalID(txCtx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsDeleted.WithLabelValues(string(txType)).Inc()
	}

	uc.syncer.NotifyDeleted(ctx, txType, id)

	return nil
}

// reversePaymentCash undoes the cash effect of every payment on a
// transaction that is about to be deleted. lend is non-nil only for loans,
// where the sign depends on the self-loan rule.
func (uc *TransactionUseCase) reversePaymentCash(ctx context.Context, tx Transaction, txType domain.TransactionType, id string, lend *domain.LendTransaction) error {
	payments, err := uc.paymentRepo.ListByTransaction(ctx, txType, id)
	if err != nil {
		return err
	}

	for _, p := range payments {
		switch txType {
		case domain.TypeBuy:
			err = uc.cashBook.Add(ctx, tx, p.Amount, CashReasonBuyReversal)
		case domain.TypeSell:
			err = uc.cashBook.Subtract(ctx, tx, p.Amount, CashReasonSellReversal)
		case domain.TypeLend:
			if lend.IsSelfLoan() {
				err = uc.cashBook.Add(ctx, tx, p.Amount, CashReasonLendReversal)
			} else {
				err = uc.cashBook.Subtract(ctx, tx, p.Amount, CashReasonLendReversal)
			}
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// GetBuy retrieves a buy transaction by id.
func (uc *TransactionUseCase) GetBuy(ctx context.Context, id string) (*domain.BuyTransaction, error) {
	return uc.buyRepo.GetByID(ctx, id)
}

// GetSell retrieves a sell transaction by id.
func (uc *TransactionUseCase) GetSell(ctx context.Context, id string) (*domain.SellTransaction, error) {
	return uc.sellRepo.GetByID(ctx, id)
}

// GetLend retrieves a lend transaction by id.
func (uc *TransactionUseCase) GetLend(ctx context.Context, id string) (*domain.LendTransaction, error) {
	return uc.lendRepo.GetByID(ctx, id)
}

// GetExpense retrieves an expense transaction by id.
func (uc *TransactionUseCase) GetExpense(ctx context.Context, id string) (*domain.ExpenseTransaction, error) {
	return uc.expenseRepo.GetByID(ctx, id)
}

// ListBuys lists buy transactions with pagination.
func (uc *TransactionUseCase) ListBuys(ctx context.Context, limit, offset int) ([]*domain.BuyTransaction, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.buyRepo.List(ctx, limit, offset)
}

// ListSells lists sell transactions with pagination.
func (uc *TransactionUseCase) ListSells(ctx context.Context, limit, offset int) ([]*domain.SellTransaction, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.sellRepo.List(ctx, limit, offset)
}

// ListLends lists lend transactions with pagination.
func (uc *TransactionUseCase) ListLends(ctx context.Context, limit, offset int) ([]*domain.LendTransaction, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.lendRepo.List(ctx, limit, offset)
}

// ListExpenses lists expense transactions with pagination.
func (uc *TransactionUseCase) ListExpenses(ctx context.Context, limit, offset int) ([]*domain.ExpenseTransaction, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.expenseRepo.List(ctx, limit, offset)
}

// SearchBuys filters purchases by farmer name or phone.
func (uc *TransactionUseCase) SearchBuys(ctx context.Context, query string, limit, offset int) ([]*domain.BuyTransaction, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.buyRepo.Search(ctx, query, limit, offset)
}

// SearchSells filters sales by customer name or phone.
func (uc *TransactionUseCase) SearchSells(ctx context.Context, query string, limit, offset int) ([]*domain.SellTransaction, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.sellRepo.Search(ctx, query, limit, offset)
}

// SearchLends filters loans by borrower name or phone.
func (uc *TransactionUseCase) SearchLends(ctx context.Context, query string, limit, offset int) ([]*domain.LendTransaction, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.lendRepo.Search(ctx, query, limit, offset)
}

func (uc *TransactionUseCase) created(ctx context.Context, txn *domain.Transaction) {
	if uc.metrics != nil {
		uc.metrics.TransactionsCreated.WithLabelValues(string(txn.Type)).Inc()
	}
	uc.syncer.NotifyUpserted(ctx, txn)
}

func (uc *TransactionUseCase) updated(ctx context.Context, txn *domain.Transaction) {
	if uc.metrics != nil {
		uc.metrics.TransactionsUpdated.WithLabelValues(string(txn.Type)).Inc()
	}
	uc.syncer.NotifyUpserted(ctx, txn)
}
