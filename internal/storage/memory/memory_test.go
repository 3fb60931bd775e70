package memory

import (
	"context"
	"errors"
	"testing"

	"rugwatch/internal/domain"
	"rugwatch/internal/storage"
)

func record(address, deployer string, deployedAt int64) *domain.ContractRecord {
	return &domain.ContractRecord{
		Address:    address,
		Deployer:   deployer,
		Source:     "contract X {}",
		DeployedAt: deployedAt,
	}
}

func tokenAssessment(address string, label domain.TokenLabel, assessedAt int64) *domain.TokenAssessment {
	return &domain.TokenAssessment{
		ContractAddress: address,
		RiskScore:       50,
		RiskLevel:       domain.RiskLevelMedium,
		Label:           label,
		AssessedAt:      assessedAt,
	}
}

func report(id, contract string, generatedAt int64) *domain.Report {
	return &domain.Report{
		ReportID: id,
		Contract: contract,
		Deployer: "0xdep",
		Token: &domain.TokenAssessment{
			ContractAddress: contract,
			RiskScore:       82,
			RiskLevel:       domain.RiskLevelHigh,
			Label:           domain.TokenLabelRugpull,
		},
		Reputation: &domain.DeployerAssessment{
			Deployer:  "0xdep",
			Score:     80,
			RiskClass: domain.RiskLevelHigh,
			Label:     domain.DeployerLabelHighRisk,
		},
		GeneratedAt: generatedAt,
	}
}

func TestContractStore_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewContractStore()

	c := record("0xabc", "0xdep", 1000)
	if err := store.Insert(ctx, c); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := store.GetByAddress(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByAddress: %v", err)
	}
	if got.Deployer != "0xdep" || got.DeployedAt != 1000 {
		t.Errorf("got %+v", got)
	}

	// Stored copy is isolated from caller mutation
	c.Deployer = "0xmutated"
	got, err = store.GetByAddress(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByAddress after mutation: %v", err)
	}
	if got.Deployer != "0xdep" {
		t.Errorf("stored record mutated: %s", got.Deployer)
	}
}

func TestContractStore_Duplicate(t *testing.T) {
	ctx := context.Background()
	store := NewContractStore()

	if err := store.Insert(ctx, record("0xabc", "0xdep", 1000)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := store.Insert(ctx, record("0xabc", "0xother", 2000)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("got %v, want ErrDuplicateKey", err)
	}
}

func TestContractStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewContractStore()

	if _, err := store.GetByAddress(ctx, "0xmissing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestContractStore_GetByDeployerOrder(t *testing.T) {
	ctx := context.Background()
	store := NewContractStore()

	// Inserted out of deployment order
	for _, c := range []*domain.ContractRecord{
		record("0xc2", "0xdep", 2000),
		record("0xc1", "0xdep", 1000),
		record("0xc3", "0xdep", 3000),
		record("0xother", "0xelse", 500),
	} {
		if err := store.Insert(ctx, c); err != nil {
			t.Fatalf("Insert %s: %v", c.Address, err)
		}
	}

	got, err := store.GetByDeployer(ctx, "0xdep")
	if err != nil {
		t.Fatalf("GetByDeployer: %v", err)
	}
	want := []string{"0xc1", "0xc2", "0xc3"}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i, addr := range want {
		if got[i].Address != addr {
			t.Errorf("record %d: got %s, want %s", i, got[i].Address, addr)
		}
	}
}

func TestContractStore_GetByTimeRange(t *testing.T) {
	ctx := context.Background()
	store := NewContractStore()

	for _, c := range []*domain.ContractRecord{
		record("0xc1", "0xdep", 1000),
		record("0xc2", "0xdep", 2000),
		record("0xc3", "0xdep", 3000),
	} {
		if err := store.Insert(ctx, c); err != nil {
			t.Fatalf("Insert %s: %v", c.Address, err)
		}
	}

	got, err := store.GetByTimeRange(ctx, 1000, 2000)
	if err != nil {
		t.Fatalf("GetByTimeRange: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("inclusive range: got %d records, want 2", len(got))
	}
	if got[0].Address != "0xc1" || got[1].Address != "0xc2" {
		t.Errorf("got %s, %s", got[0].Address, got[1].Address)
	}
}

func TestTokenAssessmentStore_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewTokenAssessmentStore()

	if err := store.Insert(ctx, tokenAssessment("0xabc", domain.TokenLabelSafe, 1000)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := store.Insert(ctx, tokenAssessment("0xabc", domain.TokenLabelRugpull, 2000)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("re-assessment: got %v, want ErrDuplicateKey", err)
	}

	got, err := store.GetByContract(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByContract: %v", err)
	}
	if got.Label != domain.TokenLabelSafe {
		t.Errorf("label: got %s", got.Label)
	}

	if _, err := store.GetByContract(ctx, "0xmissing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestTokenAssessmentStore_GetByLabel(t *testing.T) {
	ctx := context.Background()
	store := NewTokenAssessmentStore()

	for _, a := range []*domain.TokenAssessment{
		tokenAssessment("0xc1", domain.TokenLabelSafe, 1000),
		tokenAssessment("0xc2", domain.TokenLabelRugpull, 3000),
		tokenAssessment("0xc3", domain.TokenLabelRugpull, 2000),
	} {
		if err := store.Insert(ctx, a); err != nil {
			t.Fatalf("Insert %s: %v", a.ContractAddress, err)
		}
	}

	got, err := store.GetByLabel(ctx, domain.TokenLabelRugpull)
	if err != nil {
		t.Fatalf("GetByLabel: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d assessments, want 2", len(got))
	}
	// Ordered by assessed_at ASC
	if got[0].ContractAddress != "0xc3" || got[1].ContractAddress != "0xc2" {
		t.Errorf("got %s, %s", got[0].ContractAddress, got[1].ContractAddress)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("GetAll: got %d, want 3", len(all))
	}
}

func TestDeployerHistoryStore_AppendOrder(t *testing.T) {
	ctx := context.Background()
	store := NewDeployerHistoryStore()

	labels := []domain.TokenLabel{
		domain.TokenLabelSafe,
		domain.TokenLabelRugpull,
		domain.TokenLabelSuspicious,
	}
	for i, label := range labels {
		a := tokenAssessment("0xc", label, int64(1000+i))
		if err := store.Append(ctx, "0xdep", a); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	got, err := store.ListByDeployer(ctx, "0xdep")
	if err != nil {
		t.Fatalf("ListByDeployer: %v", err)
	}
	if len(got) != len(labels) {
		t.Fatalf("got %d entries, want %d", len(got), len(labels))
	}
	for i, label := range labels {
		if got[i].Label != label {
			t.Errorf("entry %d: got %s, want %s", i, got[i].Label, label)
		}
	}

	empty, err := store.ListByDeployer(ctx, "0xnobody")
	if err != nil {
		t.Fatalf("ListByDeployer empty: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("unknown deployer: got %d entries, want 0", len(empty))
	}
}

func TestDeployerHistoryStore_Deployers(t *testing.T) {
	ctx := context.Background()
	store := NewDeployerHistoryStore()

	for _, deployer := range []string{"0xdep1", "0xdep2", "0xdep1"} {
		if err := store.Append(ctx, deployer, tokenAssessment("0xc", domain.TokenLabelSafe, 1000)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := store.Deployers(ctx)
	if err != nil {
		t.Fatalf("Deployers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d deployers, want 2", len(got))
	}
}

func TestDeployerAssessmentStore_Versions(t *testing.T) {
	ctx := context.Background()
	store := NewDeployerAssessmentStore()

	versions := []*domain.DeployerAssessment{
		{Deployer: "0xdep", Score: 0, RiskClass: domain.RiskLevelLow, Label: domain.DeployerLabelTrusted, NContracts: 1, AssessedAt: 1000},
		{Deployer: "0xdep", Score: 50, RiskClass: domain.RiskLevelMedium, Label: domain.DeployerLabelWatchlist, NContracts: 2, AssessedAt: 2000},
		{Deployer: "0xdep", Score: 80, RiskClass: domain.RiskLevelHigh, Label: domain.DeployerLabelHighRisk, NContracts: 3, AssessedAt: 3000},
	}
	for i, a := range versions {
		if err := store.Insert(ctx, a); err != nil {
			t.Fatalf("Insert version %d: %v", i, err)
		}
	}

	got, err := store.GetLatest(ctx, "0xdep")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if got.Score != 80 || got.NContracts != 3 {
		t.Errorf("latest version: got %+v", got)
	}

	if _, err := store.GetLatest(ctx, "0xnobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDeployerAssessmentStore_ListLatest(t *testing.T) {
	ctx := context.Background()
	store := NewDeployerAssessmentStore()

	for _, a := range []*domain.DeployerAssessment{
		{Deployer: "0xdep1", Score: 10, RiskClass: domain.RiskLevelLow, Label: domain.DeployerLabelTrusted, NContracts: 1, AssessedAt: 1000},
		{Deployer: "0xdep1", Score: 60, RiskClass: domain.RiskLevelMedium, Label: domain.DeployerLabelWatchlist, NContracts: 2, AssessedAt: 2000},
		{Deployer: "0xdep2", Score: 80, RiskClass: domain.RiskLevelHigh, Label: domain.DeployerLabelHighRisk, NContracts: 4, AssessedAt: 1500},
	} {
		if err := store.Insert(ctx, a); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	got, err := store.ListLatest(ctx)
	if err != nil {
		t.Fatalf("ListLatest: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d deployers, want 2", len(got))
	}
	byDeployer := make(map[string]*domain.DeployerAssessment, len(got))
	for _, a := range got {
		byDeployer[a.Deployer] = a
	}
	if byDeployer["0xdep1"] == nil || byDeployer["0xdep1"].Score != 60 {
		t.Errorf("0xdep1 latest: got %+v", byDeployer["0xdep1"])
	}
	if byDeployer["0xdep2"] == nil || byDeployer["0xdep2"].Score != 80 {
		t.Errorf("0xdep2 latest: got %+v", byDeployer["0xdep2"])
	}
}

func TestReportStore_InsertAndQuery(t *testing.T) {
	ctx := context.Background()
	store := NewReportStore()

	if err := store.Insert(ctx, report("r1", "0xabc", 1000)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := store.Insert(ctx, report("r1", "0xabc", 2000)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("duplicate id: got %v, want ErrDuplicateKey", err)
	}
	if err := store.Insert(ctx, report("r2", "0xabc", 3000)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := store.GetByContract(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByContract: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d reports, want 2", len(got))
	}
	if got[0].ReportID != "r1" || got[1].ReportID != "r2" {
		t.Errorf("order: got %s, %s", got[0].ReportID, got[1].ReportID)
	}

	ranged, err := store.GetByTimeRange(ctx, 2000, 4000)
	if err != nil {
		t.Fatalf("GetByTimeRange: %v", err)
	}
	if len(ranged) != 1 || ranged[0].ReportID != "r2" {
		t.Errorf("range query: got %+v", ranged)
	}
}

func TestReportStore_InsertBulkSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewReportStore()

	if err := store.Insert(ctx, report("r1", "0xabc", 1000)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.Report{
		report("r1", "0xabc", 1000),
		report("r2", "0xdef", 2000),
	})
	if err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}

	got, err := store.GetByTimeRange(ctx, 0, 10000)
	if err != nil {
		t.Fatalf("GetByTimeRange: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d reports, want 2", len(got))
	}
}

func TestStores_InvalidInput(t *testing.T) {
	ctx := context.Background()

	if err := NewContractStore().Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("contract nil insert: got %v", err)
	}
	if err := NewContractStore().Insert(ctx, &domain.ContractRecord{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("contract empty address: got %v", err)
	}
	if err := NewReportStore().Insert(ctx, &domain.Report{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("report empty id: got %v", err)
	}
}
