package cron

import (
	"context"
	"time"
)

// BalanceProvisioner creates the missing ledger rows for a calendar year
type BalanceProvisioner interface {
	ProvisionYearlyBalances(ctx context.Context, year int) error
}

// RegisterBalanceAccrual schedules the daily job that keeps the current
// year's balance rows provisioned. The provisioner is idempotent, so running
// daily instead of once on January 1st only costs cheap no-op passes and
// covers employees added mid-year.
func RegisterBalanceAccrual(s *Scheduler, provisioner BalanceProvisioner) {
	s.AddJob("yearly-balance-accrual", 24*time.Hour, func(ctx context.Context) error {
		return provisioner.ProvisionYearlyBalances(ctx, time.Now().UTC().Year())
	})
}
