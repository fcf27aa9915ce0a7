package stats

import (
	"encoding/json"
	"testing"

	"nft-marketplace/pkg/apperr"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type memRepo struct {
	denoms  map[string]*DenomStats
	general *GeneralStats
}

func newMemRepo() *memRepo {
	return &memRepo{denoms: make(map[string]*DenomStats)}
}

func (m *memRepo) WithTx(tx *gorm.DB) Repository { return m }

func (m *memRepo) CreateDenomStats(ds *DenomStats) error {
	cp := *ds
	m.denoms[ds.Denom] = &cp
	return nil
}

func (m *memRepo) GetDenomStats(denom string) (*DenomStats, error) {
	ds, ok := m.denoms[denom]
	if !ok {
		return nil, nil
	}
	cp := *ds
	return &cp, nil
}

func (m *memRepo) SaveDenomStats(ds *DenomStats) error {
	cp := *ds
	m.denoms[ds.Denom] = &cp
	return nil
}

func (m *memRepo) ListDenomStats() ([]*DenomStats, error) {
	var list []*DenomStats
	for _, ds := range m.denoms {
		cp := *ds
		list = append(list, &cp)
	}
	return list, nil
}

func (m *memRepo) GetGeneralStats() (*GeneralStats, error) {
	if m.general == nil {
		return nil, nil
	}
	cp := *m.general
	return &cp, nil
}

func (m *memRepo) SaveGeneralStats(gs *GeneralStats) error {
	cp := *gs
	m.general = &cp
	return nil
}

func newTestService(t *testing.T) (Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	svc := NewService(repo)
	if err := svc.EnsureDenom(nil, "usdc"); err != nil {
		t.Fatalf("EnsureDenom: %v", err)
	}
	if err := svc.EnsureGeneralStats(nil); err != nil {
		t.Fatalf("EnsureGeneralStats: %v", err)
	}
	return svc, repo
}

func TestAccrueTradeUpdatesCounters(t *testing.T) {
	svc, repo := newTestService(t)

	price := decimal.NewFromInt(100000)
	fee := decimal.NewFromInt(1000)
	if err := svc.AccrueTrade(nil, "usdc", price, fee); err != nil {
		t.Fatalf("AccrueTrade: %v", err)
	}

	ds := repo.denoms["usdc"]
	if ds.RealizedSales != 1 {
		t.Fatalf("RealizedSales = %d, want 1", ds.RealizedSales)
	}
	if ds.TotalVolume != "100000" {
		t.Fatalf("TotalVolume = %s, want 100000", ds.TotalVolume)
	}
	if ds.TotalFees != "1000" || ds.FeesToClaim != "1000" {
		t.Fatalf("fees = %s/%s, want 1000/1000", ds.TotalFees, ds.FeesToClaim)
	}
}

func TestClaimDrainsOnce(t *testing.T) {
	svc, repo := newTestService(t)

	if err := svc.AccrueTrade(nil, "usdc", decimal.NewFromInt(100000), decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("AccrueTrade: %v", err)
	}

	amount, err := svc.Claim(nil, "usdc")
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if !amount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("claimed %s, want 1000", amount.String())
	}

	// 紧接的二次领取得到零
	amount, err = svc.Claim(nil, "usdc")
	if err != nil {
		t.Fatalf("second Claim: %v", err)
	}
	if !amount.IsZero() {
		t.Fatalf("second claim = %s, want 0", amount.String())
	}

	// 累计手续费不受领取影响
	if repo.denoms["usdc"].TotalFees != "1000" {
		t.Fatalf("TotalFees = %s, want 1000", repo.denoms["usdc"].TotalFees)
	}
}

func TestListingRemovedUnderflow(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.ListingRemoved(nil, "usdc")
	if apperr.KindOf(err) != apperr.KindStateConflict {
		t.Fatalf("kind = %v, want state conflict", apperr.KindOf(err))
	}

	if err := svc.ListingAdded(nil, "usdc"); err != nil {
		t.Fatalf("ListingAdded: %v", err)
	}
	if err := svc.ListingRemoved(nil, "usdc"); err != nil {
		t.Fatalf("ListingRemoved: %v", err)
	}
}

func TestRecordTradeMaintainsAggregates(t *testing.T) {
	svc, repo := newTestService(t)

	if err := svc.RecordTrade(nil, "col-a", decimal.NewFromInt(500)); err != nil {
		t.Fatalf("RecordTrade: %v", err)
	}
	if err := svc.RecordTrade(nil, "col-b", decimal.NewFromInt(200)); err != nil {
		t.Fatalf("RecordTrade: %v", err)
	}
	if err := svc.RecordTrade(nil, "col-a", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("RecordTrade: %v", err)
	}

	gs := repo.general
	var entries []VolumeEntry
	if err := json.Unmarshal([]byte(gs.Top10VolumeUsdc), &entries); err != nil {
		t.Fatalf("unmarshal top10: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Collection != "col-b" || entries[1].VolumeUsdc != "600" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if gs.LowestVolumeUsdc != "200" {
		t.Fatalf("LowestVolumeUsdc = %s, want 200", gs.LowestVolumeUsdc)
	}

	var traded []string
	if err := json.Unmarshal([]byte(gs.LastCollectionsTraded), &traded); err != nil {
		t.Fatalf("unmarshal last traded: %v", err)
	}
	if len(traded) != 2 || traded[0] != "col-a" || traded[1] != "col-b" {
		t.Fatalf("unexpected last traded: %v", traded)
	}
}
