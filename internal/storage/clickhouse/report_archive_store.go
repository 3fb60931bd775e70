package clickhouse

import (
	"context"
	"fmt"

	"rugwatch/internal/domain"
	"rugwatch/internal/storage"
)

// ReportArchiveStore implements storage.ReportArchiveStore using
// ClickHouse. One flat row per emitted report; the ReplacingMergeTree
// keyed on report_id absorbs accidental re-archives.
type ReportArchiveStore struct {
	conn *Conn
}

// NewReportArchiveStore creates a new ReportArchiveStore.
func NewReportArchiveStore(conn *Conn) *ReportArchiveStore {
	return &ReportArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ReportArchiveStore = (*ReportArchiveStore)(nil)

// InsertBulk archives multiple reports.
func (s *ReportArchiveStore) InsertBulk(ctx context.Context, reports []*domain.Report) error {
	if len(reports) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO report_archive (
			report_id, contract_address, deployer,
			token_score, token_level, token_label,
			deployer_score, deployer_class, deployer_label,
			generated_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range reports {
		err = batch.Append(
			r.ReportID,
			r.Contract,
			r.Deployer,
			int32(r.Token.RiskScore),
			string(r.Token.RiskLevel),
			string(r.Token.Label),
			int32(r.Reputation.Score),
			string(r.Reputation.RiskClass),
			string(r.Reputation.Label),
			uint64(r.GeneratedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}
