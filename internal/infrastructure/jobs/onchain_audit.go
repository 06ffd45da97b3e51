package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"scholarship-fund.backend/internal/domain/entities"
)

// Auditor compares the registry against the deployed contract
type Auditor interface {
	Audit(ctx context.Context) (*entities.OnchainAuditReport, error)
}

// OnchainAuditJob periodically audits the registry against the chain
type OnchainAuditJob struct {
	auditor  Auditor
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func NewOnchainAuditJob(auditor Auditor, interval time.Duration) *OnchainAuditJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &OnchainAuditJob{
		auditor:  auditor,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (j *OnchainAuditJob) Start(ctx context.Context) {
	log.Println("🕐 Starting on-chain audit job...")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.runAudit(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ On-chain audit job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ On-chain audit job stopped")
			return
		case <-ticker.C:
			j.runAudit(ctx)
		}
	}
}

func (j *OnchainAuditJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

func (j *OnchainAuditJob) runAudit(ctx context.Context) {
	report, err := j.auditor.Audit(ctx)
	if err != nil {
		log.Printf("❌ On-chain audit failed: %v", err)
		return
	}
	if report.InSync {
		return
	}

	log.Printf("⚠️ On-chain drift: %d mismatches against %s", len(report.Mismatches), report.Contract)
	for _, m := range report.Mismatches {
		log.Printf("   %s %s: service=%s onchain=%s", m.Field, m.Address, m.Service, m.Onchain)
	}
}
