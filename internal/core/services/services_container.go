package services

import (
	"time"

	portsrepo "github.com/kolectiva/lets_ledger/internal/core/ports/repositories"
	portssvc "github.com/kolectiva/lets_ledger/internal/core/ports/services"
)

// Options carries the tunable ledger policies wired from configuration.
type Options struct {
	// ExchangeTokenTTL is the expiry assigned to tokens minted for exchange
	// receivers. Zero falls back to DefaultExchangeTokenTTL.
	ExchangeTokenTTL time.Duration
	// SweepOnBalanceRead makes balance reads sweep expired tokens lazily
	// before reporting. Off by default; sweeping can instead be driven
	// externally through the sweep endpoint.
	SweepOnBalanceRead bool
}

// ServiceContainer bundles the ledger service facades consumed by handlers.
type ServiceContainer struct {
	Balance     portssvc.BalanceSvcFacade
	Exchange    portssvc.ExchangeSvcFacade
	Expiry      portssvc.ExpirySvcFacade
	Eligibility portssvc.EligibilitySvcFacade
	History     portssvc.HistorySvcFacade
}

// NewServiceContainer wires the ledger services onto the given repositories.
func NewServiceContainer(repos portsrepo.RepositoryProvider, opts Options) *ServiceContainer {
	expiry := NewExpiryService(repos.LedgerRepo, repos.AccountRepo)

	var lazySweeper portssvc.ExpirySvcFacade
	if opts.SweepOnBalanceRead {
		lazySweeper = expiry
	}
	balance := NewBalanceService(repos.AccountRepo, repos.LedgerRepo, lazySweeper)

	return &ServiceContainer{
		Balance:     balance,
		Exchange:    NewExchangeService(repos.LedgerRepo, repos.AccountRepo, balance, opts.ExchangeTokenTTL),
		Expiry:      expiry,
		Eligibility: NewEligibilityService(repos.AccountRepo, repos.LedgerRepo),
		History:     NewHistoryService(repos.AccountRepo, repos.LedgerRepo),
	}
}
