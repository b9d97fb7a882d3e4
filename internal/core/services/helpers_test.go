package services_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC)

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

// sequentialIDs hands out predictable ids: je_1, jel_2, ...
type sequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequentialIDs) NewID(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s_%d", prefix, g.n)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.DomainEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func debit(accountID, amt string) dto.JournalEntryLineRequest {
	return dto.JournalEntryLineRequest{AccountID: accountID, DebitAmount: amount(amt)}
}

func credit(accountID, amt string) dto.JournalEntryLineRequest {
	return dto.JournalEntryLineRequest{AccountID: accountID, CreditAmount: amount(amt)}
}

func entryRequest(date string, lines ...dto.JournalEntryLineRequest) dto.CreateJournalEntryRequest {
	return dto.CreateJournalEntryRequest{
		EntryDate:   date,
		Description: "test entry",
		Lines:       lines,
	}
}

// seedAccounts stores a small chart of accounts for the tenant. Account ids are
// global, so tenantA's ids equal their codes and other tenants' ids carry the
// tenant as a prefix.
func seedAccounts(ctx context.Context, repo portsrepo.AccountWriter, tenantID string) error {
	chart := []struct {
		code  string
		name  string
		typ   domain.AccountType
		class domain.AccountClass
	}{
		{"1000", "Cash", domain.Asset, domain.CurrentAsset},
		{"1500", "Equipment", domain.Asset, domain.FixedAsset},
		{"2000", "Accounts Payable", domain.Liability, domain.CurrentLiability},
		{"3000", "Owner Capital", domain.Equity, domain.OwnersEquity},
		{"4000", "Sales", domain.Revenue, domain.RevenueClass},
		{"5000", "Rent", domain.Expense, domain.OperatingExpense},
	}
	for _, c := range chart {
		accountID := c.code
		if tenantID != tenantA {
			accountID = tenantID + ":" + c.code
		}
		err := repo.SaveAccount(ctx, domain.ChartOfAccount{
			AccountID:      accountID,
			TenantID:       tenantID,
			Code:           c.code,
			Name:           c.name,
			AccountType:    c.typ,
			AccountClass:   c.class,
			IsActive:       true,
			OpeningBalance: decimal.Zero,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
