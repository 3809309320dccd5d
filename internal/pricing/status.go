package pricing

import (
	"fmt"

	"GoldBean/internal/cache"
)

// TodayStatus is one of 无数据, 今日已更新 or 今日未更新.
func (s *Service) TodayStatus() string {
	snap := s.Snapshot()
	switch {
	case !snap.Valid:
		return "无数据"
	case cache.IsSameCalendarDay(snap.Timestamp, s.now()):
		return "今日已更新"
	default:
		return "今日未更新"
	}
}

func (s *Service) FormattedPrice() string {
	snap := s.Snapshot()
	if !snap.Valid || snap.Price <= 0 {
		return "暂无数据"
	}
	return fmt.Sprintf("¥%.2f/克", snap.Price)
}

func (s *Service) FormattedLastUpdated() string {
	if s.Loading() {
		return "正在获取金价数据..."
	}
	snap := s.Snapshot()
	if !snap.Valid {
		return "稍后可手动刷新获取数据"
	}
	return fmt.Sprintf("%s (%s)", snap.Timestamp.In(s.now().Location()).Format("01-02 15:04"), snap.Source)
}

// RefreshLabel is the text for the manual refresh action.
func (s *Service) RefreshLabel() string {
	if s.Loading() {
		return "更新中..."
	}
	switch s.TodayStatus() {
	case "无数据":
		return "获取金价"
	case "今日已更新":
		return "重新获取"
	default:
		return "刷新价格"
	}
}
