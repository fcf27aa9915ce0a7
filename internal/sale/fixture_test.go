package sale

import (
	"sort"
	"testing"
	"time"

	"nft-marketplace/internal/activity"
	"nft-marketplace/internal/bank"
	"nft-marketplace/internal/collection"
	"nft-marketplace/internal/market"
	"nft-marketplace/internal/oracle"
	"nft-marketplace/internal/profile"
	"nft-marketplace/internal/reward"
	"nft-marketplace/internal/stats"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 测试用的内存仓储。事务语义由穿透式Transactor代替，
// 所有WithTx都返回自身。

type memSaleRepo struct {
	sales  map[string]*Sale
	nextID uint
}

func saleKey(collection, tokenID string) string { return collection + "|" + tokenID }

func newMemSaleRepo() *memSaleRepo {
	return &memSaleRepo{sales: make(map[string]*Sale), nextID: 1}
}

func (m *memSaleRepo) WithTx(tx *gorm.DB) Repository { return m }

func (m *memSaleRepo) Create(s *Sale) error {
	s.ID = m.nextID
	m.nextID++
	cp := *s
	m.sales[saleKey(s.Collection, s.TokenID)] = &cp
	return nil
}

func (m *memSaleRepo) Get(collection, tokenID string) (*Sale, error) {
	s, ok := m.sales[saleKey(collection, tokenID)]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memSaleRepo) Delete(collection, tokenID string) error {
	delete(m.sales, saleKey(collection, tokenID))
	return nil
}

func (m *memSaleRepo) MinPrice(collection, denom string) (decimal.Decimal, bool, error) {
	min := decimal.Zero
	found := false
	for _, s := range m.sales {
		if s.Collection != collection || s.PriceDenom != denom {
			continue
		}
		v, err := decimal.NewFromString(s.PriceValue)
		if err != nil {
			return decimal.Zero, false, err
		}
		if !found || v.LessThan(min) {
			min = v
			found = true
		}
	}
	return min, found, nil
}

func (m *memSaleRepo) FindExpired(denom string, now time.Time, limit int) ([]*Sale, error) {
	var expired []*Sale
	for _, s := range m.sales {
		if s.PriceDenom == denom && s.Expiration.Before(now) {
			cp := *s
			expired = append(expired, &cp)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		if expired[i].Collection != expired[j].Collection {
			return expired[i].Collection < expired[j].Collection
		}
		return expired[i].TokenID < expired[j].TokenID
	})
	if len(expired) > limit {
		expired = expired[:limit]
	}
	return expired, nil
}

func (m *memSaleRepo) DeleteByIDs(ids []uint) error {
	for _, id := range ids {
		for key, s := range m.sales {
			if s.ID == id {
				delete(m.sales, key)
			}
		}
	}
	return nil
}

func (m *memSaleRepo) ListByCollection(collection string, page, size int) ([]*Sale, int64, error) {
	var list []*Sale
	for _, s := range m.sales {
		if s.Collection == collection {
			cp := *s
			list = append(list, &cp)
		}
	}
	return list, int64(len(list)), nil
}

type memConfigRepo struct {
	cfg *market.Config
}

func (m *memConfigRepo) WithTx(tx *gorm.DB) market.Repository { return m }

func (m *memConfigRepo) Create(cfg *market.Config) error {
	cp := *cfg
	m.cfg = &cp
	return nil
}

func (m *memConfigRepo) Get() (*market.Config, error) {
	if m.cfg == nil {
		return nil, nil
	}
	cp := *m.cfg
	return &cp, nil
}

func (m *memConfigRepo) Save(cfg *market.Config) error {
	cp := *cfg
	m.cfg = &cp
	return nil
}

type memStatsRepo struct {
	denoms  map[string]*stats.DenomStats
	general *stats.GeneralStats
}

func (m *memStatsRepo) WithTx(tx *gorm.DB) stats.Repository { return m }

func (m *memStatsRepo) CreateDenomStats(ds *stats.DenomStats) error {
	cp := *ds
	m.denoms[ds.Denom] = &cp
	return nil
}

func (m *memStatsRepo) GetDenomStats(denom string) (*stats.DenomStats, error) {
	ds, ok := m.denoms[denom]
	if !ok {
		return nil, nil
	}
	cp := *ds
	return &cp, nil
}

func (m *memStatsRepo) SaveDenomStats(ds *stats.DenomStats) error {
	cp := *ds
	m.denoms[ds.Denom] = &cp
	return nil
}

func (m *memStatsRepo) ListDenomStats() ([]*stats.DenomStats, error) { return nil, nil }

func (m *memStatsRepo) GetGeneralStats() (*stats.GeneralStats, error) {
	if m.general == nil {
		return nil, nil
	}
	cp := *m.general
	return &cp, nil
}

func (m *memStatsRepo) SaveGeneralStats(gs *stats.GeneralStats) error {
	cp := *gs
	m.general = &cp
	return nil
}

type memColRepo struct {
	infos map[string]*collection.CollectionInfo
	stats map[string]*collection.CollectionDenomStats
}

func (m *memColRepo) WithTx(tx *gorm.DB) collection.Repository { return m }

func (m *memColRepo) CreateInfo(info *collection.CollectionInfo) error {
	cp := *info
	m.infos[info.Address] = &cp
	return nil
}

func (m *memColRepo) GetInfo(address string) (*collection.CollectionInfo, error) {
	info, ok := m.infos[address]
	if !ok {
		return nil, nil
	}
	cp := *info
	return &cp, nil
}

func (m *memColRepo) ListInfo() ([]*collection.CollectionInfo, error) { return nil, nil }

func (m *memColRepo) CreateDenomStats(cds *collection.CollectionDenomStats) error {
	cp := *cds
	m.stats[cds.Collection+"|"+cds.Denom] = &cp
	return nil
}

func (m *memColRepo) GetDenomStats(col, denom string) (*collection.CollectionDenomStats, error) {
	cds, ok := m.stats[col+"|"+denom]
	if !ok {
		return nil, nil
	}
	cp := *cds
	return &cp, nil
}

func (m *memColRepo) SaveDenomStats(cds *collection.CollectionDenomStats) error {
	cp := *cds
	m.stats[cds.Collection+"|"+cds.Denom] = &cp
	return nil
}

func (m *memColRepo) ListDenomStats(col string) ([]*collection.CollectionDenomStats, error) {
	return nil, nil
}

type memBankRepo struct {
	balances map[string]decimal.Decimal
}

func (m *memBankRepo) WithTx(tx *gorm.DB) bank.Repository { return m }

func (m *memBankRepo) Credit(address, denom string, amount decimal.Decimal) error {
	m.balances[address+"|"+denom] = m.balances[address+"|"+denom].Add(amount)
	return nil
}

func (m *memBankRepo) GetBalance(address, denom string) (decimal.Decimal, error) {
	return m.balances[address+"|"+denom], nil
}

func (m *memBankRepo) ListBalances(address string) ([]*bank.Balance, error) { return nil, nil }

type memRewardRepo struct {
	sys     *reward.RewardSystem
	perks   map[int]*reward.VipPerk
	payouts []*reward.Payout
}

func (m *memRewardRepo) WithTx(tx *gorm.DB) reward.Repository { return m }

func (m *memRewardRepo) GetSystem() (*reward.RewardSystem, error) {
	if m.sys == nil {
		return nil, nil
	}
	cp := *m.sys
	return &cp, nil
}

func (m *memRewardRepo) SaveSystem(sys *reward.RewardSystem) error {
	cp := *sys
	m.sys = &cp
	return nil
}

func (m *memRewardRepo) ReplacePerks(perks []*reward.VipPerk) error {
	m.perks = make(map[int]*reward.VipPerk, len(perks))
	for _, p := range perks {
		cp := *p
		m.perks[p.Level] = &cp
	}
	return nil
}

func (m *memRewardRepo) GetPerk(level int) (*reward.VipPerk, error) {
	p, ok := m.perks[level]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memRewardRepo) ListPerks() ([]*reward.VipPerk, error) { return nil, nil }

func (m *memRewardRepo) CreatePayout(p *reward.Payout) error {
	cp := *p
	m.payouts = append(m.payouts, &cp)
	return nil
}

func (m *memRewardRepo) ListPendingPayouts(limit int) ([]*reward.Payout, error) {
	var pending []*reward.Payout
	for _, p := range m.payouts {
		if p.Status == reward.PayoutStatusPending && len(pending) < limit {
			pending = append(pending, p)
		}
	}
	return pending, nil
}

func (m *memRewardRepo) MarkDispatched(id uint) error {
	for _, p := range m.payouts {
		if p.ID == id {
			p.Status = reward.PayoutStatusDispatched
		}
	}
	return nil
}

type memProfileRepo struct {
	profiles map[string]*profile.Profile
}

func (m *memProfileRepo) WithTx(tx *gorm.DB) profile.Repository { return m }

func (m *memProfileRepo) Create(p *profile.Profile) error {
	cp := *p
	m.profiles[p.Address] = &cp
	return nil
}

func (m *memProfileRepo) Get(address string) (*profile.Profile, error) {
	p, ok := m.profiles[address]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memProfileRepo) SetVipLevel(address string, level profile.VipLevel) error {
	if p, ok := m.profiles[address]; ok {
		p.VipLevel = level
	}
	return nil
}

type memActivityRepo struct {
	records []*activity.Activity
}

func (m *memActivityRepo) WithTx(tx *gorm.DB) activity.Repository { return m }

func (m *memActivityRepo) Record(a *activity.Activity) error {
	cp := *a
	m.records = append(m.records, &cp)
	return nil
}

func (m *memActivityRepo) List(filter *activity.ListFilter) ([]*activity.Activity, int64, error) {
	return m.records, int64(len(m.records)), nil
}

type nftStub struct {
	owners map[string]string
	supply uint64
}

func (s *nftStub) OwnerOf(collection, tokenID string) (string, error) {
	return s.owners[collection+"|"+tokenID], nil
}

func (s *nftStub) ContractInfo(collection string) (*oracle.ContractInfo, error) {
	return &oracle.ContractInfo{Name: "Test Apes"}, nil
}

func (s *nftStub) NumTokens(collection string) (uint64, error) { return s.supply, nil }

// identityPrice 1:1折算USDC
type identityPrice struct{}

func (identityPrice) UsdcValue(amount decimal.Decimal, denom string) (decimal.Decimal, error) {
	return amount, nil
}

type passthroughTx struct{}

func (passthroughTx) Transaction(fn func(tx *gorm.DB) error) error { return fn(nil) }

const (
	testOwner    = "addr-owner"
	testOperator = "addr-operator"
	testSeller   = "addr-seller"
	testBuyer    = "addr-buyer"
	testCol      = "col-apes"
)

type fixture struct {
	svc       Service
	repo      *memSaleRepo
	marketSvc market.Service
	colSvc    collection.Service
	statsSvc  stats.Service
	bank      *memBankRepo
	rewards   *memRewardRepo
	profiles  *memProfileRepo
	acts      *memActivityRepo
	nft       *nftStub
}

// newFixture 以1%手续费的已初始化市场起一个完整的销售服务，
// 集合col-apes已注册，token-1由addr-seller持有。
func newFixture(t *testing.T) *fixture {
	t.Helper()

	configRepo := &memConfigRepo{cfg: &market.Config{
		Enabled:               true,
		Owner:                 testOwner,
		Operator:              testOperator,
		FeePct:                "0.01",
		AcceptedDenoms:        `["usdc","atom"]`,
		ListingFeeValue:       "10000",
		ListingFeeDenom:       "usdc",
		AcceptedContractTypes: `[{"code_id":1,"contract_type":"erc721"}]`,
	}}
	statsRepo := &memStatsRepo{denoms: make(map[string]*stats.DenomStats)}
	colRepo := &memColRepo{
		infos: make(map[string]*collection.CollectionInfo),
		stats: make(map[string]*collection.CollectionDenomStats),
	}
	bankRepo := &memBankRepo{balances: make(map[string]decimal.Decimal)}
	rewardRepo := &memRewardRepo{}
	profileRepo := &memProfileRepo{profiles: make(map[string]*profile.Profile)}
	activityRepo := &memActivityRepo{}
	nft := &nftStub{owners: map[string]string{testCol + "|token-1": testSeller}, supply: 100}
	txm := passthroughTx{}

	statsSvc := stats.NewService(statsRepo)
	profileSvc := profile.NewService(profileRepo)
	marketSvc := market.NewService(configRepo, statsSvc, bankRepo, identityPrice{}, txm)
	colSvc := collection.NewService(colRepo, marketSvc, statsSvc, nft, txm)
	rewardSvc := reward.NewService(rewardRepo, marketSvc, profileSvc, activityRepo, txm)

	for _, denom := range []string{"usdc", "atom"} {
		if err := statsSvc.EnsureDenom(nil, denom); err != nil {
			t.Fatalf("EnsureDenom: %v", err)
		}
	}
	if err := statsSvc.EnsureGeneralStats(nil); err != nil {
		t.Fatalf("EnsureGeneralStats: %v", err)
	}
	if err := rewardSvc.Bootstrap(
		&reward.RewardSystem{RewardToken: "addr-reward-token", TokensPerUsdc: "1"},
		[]*reward.VipPerk{
			{Level: 1, Price: "1000"},
			{Level: 2, Price: "10000"},
			{Level: 3, Price: "100000"},
		},
	); err != nil {
		t.Fatalf("reward Bootstrap: %v", err)
	}
	if _, err := colSvc.Register("addr-creator", testCol, 1, "erc721"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	saleRepo := newMemSaleRepo()
	svc := NewService(saleRepo, marketSvc, colSvc, statsSvc, bankRepo,
		rewardSvc, profileSvc, activityRepo, nft, identityPrice{}, txm)

	return &fixture{
		svc:       svc,
		repo:      saleRepo,
		marketSvc: marketSvc,
		colSvc:    colSvc,
		statsSvc:  statsSvc,
		bank:      bankRepo,
		rewards:   rewardRepo,
		profiles:  profileRepo,
		acts:      activityRepo,
		nft:       nft,
	}
}

func (f *fixture) listToken1(t *testing.T) *Sale {
	t.Helper()
	s, err := f.svc.List(&ListRequest{
		Collection: testCol,
		TokenID:    "token-1",
		Seller:     testSeller,
		Price:      Funds{Denom: "usdc", Value: decimal.NewFromInt(100000)},
		Expiration: time.Now().Add(48 * time.Hour),
		FeeFunds:   Funds{Denom: "usdc", Value: decimal.NewFromInt(10000)},
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	return s
}
