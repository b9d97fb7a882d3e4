package services

import (
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
)

// ContainerOptions carries the collaborators shared by every service.
// Nil Clock and IDs fall back to the system clock and TypeID generator.
type ContainerOptions struct {
	StrictLinePolicy bool
	Clock            portssvc.Clock
	IDs              portssvc.IDGenerator
	Publisher        portssvc.EventPublisher
	// Interceptors wrap every service call, outermost first. Empty means undecorated.
	Interceptors Chain
}

// NewContainer creates the service container with properly initialized dependencies
func NewContainer(repos *portsrepo.RepositoryProvider, opts ContainerOptions) *portssvc.ServiceContainer {
	journalOpts := []JournalEntryServiceOption{
		WithStrictLinePolicy(opts.StrictLinePolicy),
		WithEventPublisher(opts.Publisher),
	}
	accountOpts := []AccountServiceOption{}
	reportingOpts := []ReportingServiceOption{WithReportingPublisher(opts.Publisher)}
	if opts.Clock != nil {
		journalOpts = append(journalOpts, WithClock(opts.Clock))
		accountOpts = append(accountOpts, WithAccountClock(opts.Clock))
		reportingOpts = append(reportingOpts, WithReportingClock(opts.Clock))
	}
	if opts.IDs != nil {
		journalOpts = append(journalOpts, WithIDGenerator(opts.IDs))
		accountOpts = append(accountOpts, WithAccountIDGenerator(opts.IDs))
	}

	container := &portssvc.ServiceContainer{
		Account:      NewAccountService(repos.AccountRepo, accountOpts...),
		JournalEntry: NewJournalEntryService(repos.JournalEntryRepo, repos.AccountRepo, journalOpts...),
		Reporting:    NewReportingService(repos.ReportingRepo, repos.AccountRepo, reportingOpts...),
	}

	if len(opts.Interceptors) > 0 {
		container.Account = NewInterceptedAccountService(container.Account, opts.Interceptors)
		container.JournalEntry = NewInterceptedJournalEntryService(container.JournalEntry, opts.Interceptors)
		container.Reporting = NewInterceptedReportingService(container.Reporting, opts.Interceptors)
	}
	return container
}
