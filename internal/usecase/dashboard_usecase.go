package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mandibook/mandiledger/internal/domain"
)

// DashboardUseCase aggregates the ledger into the figures the home screen
// shows. Period figures are date-filtered; pending balances always cover the
// whole ledger because an old unpaid invoice is still owed today.
type DashboardUseCase struct {
	buyRepo     BuyRepository
	sellRepo    SellRepository
	lendRepo    LendRepository
	expenseRepo ExpenseRepository
	paymentRepo PaymentRepository
	cashBook    *CashBookUseCase
	cache       Cache
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewDashboardUseCase creates a new DashboardUseCase.
func NewDashboardUseCase(
	buyRepo BuyRepository,
	sellRepo SellRepository,
	lendRepo LendRepository,
	expenseRepo ExpenseRepository,
	paymentRepo PaymentRepository,
	cashBook *CashBookUseCase,
	cache Cache,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) *DashboardUseCase {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &DashboardUseCase{
		buyRepo:     buyRepo,
		sellRepo:    sellRepo,
		lendRepo:    lendRepo,
		expenseRepo: expenseRepo,
		paymentRepo: paymentRepo,
		cashBook:    cashBook,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "dashboard").Logger(),
	}
}

// StockItem is the net held quantity of one grain type.
type StockItem struct {
	GrainType string          `json:"grain_type"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// Summary is the aggregated dashboard view for a period.
type Summary struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	TotalBuyAmount     decimal.Decimal `json:"total_buy_amount"`
	TotalSellAmount    decimal.Decimal `json:"total_sell_amount"`
	TotalExpenseAmount decimal.Decimal `json:"total_expense_amount"`

	// Profit is commission plus sell labour plus net interest, less expenses.
	// Trade totals themselves are pass-through for a commission agent.
	Profit decimal.Decimal `json:"profit"`

	PendingToFarmers     decimal.Decimal `json:"pending_to_farmers"`
	PendingFromCustomers decimal.Decimal `json:"pending_from_customers"`
	OutstandingLoans     decimal.Decimal `json:"outstanding_loans"`

	CashBalance decimal.Decimal `json:"cash_balance"`

	Stock []StockItem `json:"stock"`
}

// GetSummary computes the dashboard for a period, serving from cache when a
// recent identical request exists.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, from, to time.Time) (*Summary, error) {
	key := fmt.Sprintf("dashboard:%s:%s", from.Format("20060102"), to.Format("20060102"))

	if uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, key); err == nil && raw != nil {
			var cached Summary
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	summary, err := uc.compute(ctx, from, to)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		raw, err := json.Marshal(summary)
		if err == nil {
			if err := uc.cache.Set(ctx, key, raw, uc.cacheTTL); err != nil {
				uc.logger.Debug().Err(err).Msg("cache dashboard summary")
			}
		}
	}

	return summary, nil
}

func (uc *DashboardUseCase) compute(ctx context.Context, from, to time.Time) (*Summary, error) {
	summary := &Summary{
		From:                 from,
		To:                   to,
		TotalBuyAmount:       decimal.Zero,
		TotalSellAmount:      decimal.Zero,
		TotalExpenseAmount:   decimal.Zero,
		Profit:               decimal.Zero,
		PendingToFarmers:     decimal.Zero,
		PendingFromCustomers: decimal.Zero,
		OutstandingLoans:     decimal.Zero,
	}

	buys, err := uc.buyRepo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	sells, err := uc.sellRepo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	expenses, err := uc.expenseRepo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	commission := decimal.Zero
	sellLabour := decimal.Zero
	stock := map[string]decimal.Decimal{}

	for _, b := range buys {
		summary.TotalBuyAmount = summary.TotalBuyAmount.Add(b.TotalAmount)
		commission = commission.Add(b.CommissionAmount)
		grain := domain.NormalizeGrainType(b.GrainType)
		stock[grain] = stock[grain].Add(b.Quantity)
	}
	for _, s := range sells {
		summary.TotalSellAmount = summary.TotalSellAmount.Add(s.TotalAmount)
		commission = commission.Add(s.CommissionAmount)
		sellLabour = sellLabour.Add(s.LabourCharges)
		if len(s.Items) > 0 {
			for _, item := range s.Items {
				grain := domain.NormalizeGrainType(item.GrainType)
				stock[grain] = stock[grain].Sub(item.Quantity)
			}
		} else {
			grain := domain.NormalizeGrainType(s.GrainType)
			stock[grain] = stock[grain].Sub(s.Quantity)
		}
	}
	for _, e := range expenses {
		summary.TotalExpenseAmount = summary.TotalExpenseAmount.Add(e.Amount)
	}

	netInterest, err := uc.netInterest(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary.Profit = commission.Add(sellLabour).Add(netInterest).Sub(summary.TotalExpenseAmount)

	// Pending balances are whole-ledger, not period-scoped.
	allBuys, err := uc.buyRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range allBuys {
		summary.PendingToFarmers = summary.PendingToFarmers.Add(b.BalanceAmount)
	}

	allSells, err := uc.sellRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range allSells {
		summary.PendingFromCustomers = summary.PendingFromCustomers.Add(s.BalanceAmount)
	}

	allLends, err := uc.lendRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range allLends {
		if l.IsSelfLoan() {
			summary.OutstandingLoans = summary.OutstandingLoans.Sub(l.OutstandingPrincipal())
		} else {
			summary.OutstandingLoans = summary.OutstandingLoans.Add(l.OutstandingPrincipal())
		}
	}

	balance, err := uc.cashBook.Balance(ctx)
	if err != nil {
		return nil, err
	}
	summary.CashBalance = balance

	for grain, qty := range stock {
		if qty.IsZero() {
			continue
		}
		summary.Stock = append(summary.Stock, StockItem{GrainType: grain, Quantity: qty})
	}
	sort.Slice(summary.Stock, func(i, j int) bool {
		if summary.Stock[i].Quantity.Equal(summary.Stock[j].Quantity) {
			return summary.Stock[i].GrainType < summary.Stock[j].GrainType
		}
		return summary.Stock[i].Quantity.GreaterThan(summary.Stock[j].Quantity)
	})

	return summary, nil
}

// netInterest sums the interest component of loan repayments in the period.
// Interest a counterparty paid is income; interest the business paid on a
// self-loan is cost.
func (uc *DashboardUseCase) netInterest(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	payments, err := uc.paymentRepo.ListByTypeBetween(ctx, domain.TypeLend, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	if len(payments) == 0 {
		return decimal.Zero, nil
	}

	lends, err := uc.lendRepo.ListAll(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	selfLoan := make(map[string]bool, len(lends))
	for _, l := range lends {
		selfLoan[l.ID] = l.IsSelfLoan()
	}

	net := decimal.Zero
	for _, p := range payments {
		if selfLoan[p.TransactionID] {
			net = net.Sub(p.InterestAmount)
		} else {
			net = net.Add(p.InterestAmount)
		}
	}
	return net, nil
}
