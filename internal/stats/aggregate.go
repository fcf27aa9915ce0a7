package stats

import (
	"math"
	"sort"

	"nft-marketplace/pkg/apperr"

	"github.com/shopspring/decimal"
)

// 榜单与环形列表的容量上限
const (
	topVolumeLimit  = 10
	lastTradedLimit = 10
)

// addUint64 受检加法，溢出时中止当前事务而不是回绕
func addUint64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, apperr.Invalid("counter_overflow", "counter overflow")
	}
	return a + b, nil
}

// mergeTopVolume 将集合的累计USDC成交量并入榜单：移除旧条目、插入新条目、
// 按成交量升序排序，超出容量时无条件移除下标0的条目。
func mergeTopVolume(entries []VolumeEntry, collection string, increment decimal.Decimal) ([]VolumeEntry, error) {
	total := increment
	merged := make([]VolumeEntry, 0, len(entries)+1)
	for _, e := range entries {
		if e.Collection == collection {
			prev, err := decimal.NewFromString(e.VolumeUsdc)
			if err != nil {
				return nil, err
			}
			total = total.Add(prev)
			continue
		}
		merged = append(merged, e)
	}

	merged = append(merged, VolumeEntry{Collection: collection, VolumeUsdc: total.String()})

	var sortErr error
	sort.SliceStable(merged, func(i, j int) bool {
		vi, err := decimal.NewFromString(merged[i].VolumeUsdc)
		if err != nil {
			sortErr = err
			return false
		}
		vj, err := decimal.NewFromString(merged[j].VolumeUsdc)
		if err != nil {
			sortErr = err
			return false
		}
		return vi.LessThan(vj)
	})
	if sortErr != nil {
		return nil, sortErr
	}

	if len(merged) > topVolumeLimit {
		merged = merged[1:]
	}
	return merged, nil
}

// appendLastTraded 追加集合到最近成交环形列表：已存在则不动，
// 超出容量时淘汰最旧的。
func appendLastTraded(list []string, collection string) []string {
	for _, c := range list {
		if c == collection {
			return list
		}
	}
	list = append(list, collection)
	if len(list) > lastTradedLimit {
		list = list[1:]
	}
	return list
}
