package notifier

import (
	"fmt"
	"html"
	"strings"

	"GoldBean/internal/calculator"
	"GoldBean/internal/model"
)

// FormatPriceStatus renders the current price with its freshness.
func FormatPriceStatus(snap model.PriceSnapshot, status, updated, advisory string) string {
	var b strings.Builder
	b.WriteString("💰 <b>当前金价</b>\n\n")
	if snap.Valid {
		b.WriteString(fmt.Sprintf("¥%.2f/克\n", snap.Price))
	} else {
		b.WriteString("暂无数据\n")
	}
	b.WriteString(fmt.Sprintf("状态: %s\n", status))
	b.WriteString(fmt.Sprintf("更新: %s\n", html.EscapeString(updated)))
	if advisory != "" {
		b.WriteString(fmt.Sprintf("\n⚠️ %s\n", advisory))
	}
	return b.String()
}

// FormatDailyPrice is the scheduled morning message.
func FormatDailyPrice(snap model.PriceSnapshot) string {
	return fmt.Sprintf("💰 <b>今日金价</b>\n\n当前金价：¥%.2f/克\n数据来源：%s", snap.Price, html.EscapeString(snap.Source))
}

// FormatTrendReport renders a window summary.
func FormatTrendReport(w model.Window, sum model.TrendSummary, ind calculator.Indicators, points []model.PricePoint) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>金价走势</b> | 近%s\n\n", w.Label()))
	if len(points) == 0 {
		b.WriteString("暂无历史数据\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("当前: ¥%.2f/克\n", sum.Current))
	b.WriteString(fmt.Sprintf("最高: ¥%.2f | 最低: ¥%.2f\n", sum.High, sum.Low))
	b.WriteString(fmt.Sprintf("均价: ¥%.2f\n", sum.Average))
	b.WriteString(fmt.Sprintf("涨跌: %+.2f (%+.2f%%)\n", sum.Change, sum.ChangePercent))
	if ind.HasMA30 {
		b.WriteString(fmt.Sprintf("MA30: ¥%.2f | ", ind.MA30))
	}
	b.WriteString(fmt.Sprintf("RSI14: %.0f\n", ind.RSI14))

	first, last := points[0], points[len(points)-1]
	b.WriteString(fmt.Sprintf("\n%s ~ %s, %d 个数据点\n", first.Date.Format("2006-01-02"), last.Date.Format("2006-01-02"), len(points)))
	b.WriteString(fmt.Sprintf("数据来源: %s\n", html.EscapeString(first.Source)))
	return b.String()
}

// FormatHoldings renders each record and the portfolio total.
func FormatHoldings(records []model.HoldingRecord, pf model.Portfolio) string {
	var b strings.Builder
	b.WriteString("📦 <b>我的黄金</b>\n\n")
	if len(records) == 0 {
		b.WriteString("还没有记录\n")
		return b.String()
	}
	if pf.Price <= 0 {
		b.WriteString("⚠️ 暂无金价，无法计算盈亏\n\n")
	}

	for _, r := range records {
		b.WriteString(fmt.Sprintf("• %s %.2f克 (%s)\n", html.EscapeString(r.DisplayName()), r.Weight, r.PurchaseDate.Format("2006-01-02")))
		b.WriteString(fmt.Sprintf("  买入 ¥%.2f (¥%.2f/克)", r.PurchasePrice, r.PricePerGram()))
		if pf.Price > 0 {
			b.WriteString(fmt.Sprintf(" → ¥%.2f, %+.2f (%+.2f%%)",
				r.CurrentValue(pf.Price), r.ProfitLoss(pf.Price), r.ProfitLossPercent(pf.Price)))
		}
		b.WriteString("\n")
	}

	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("总重量: %.2f克 | 总投入: ¥%.2f\n", pf.TotalWeight, pf.TotalInvestment))
	if pf.Price > 0 {
		b.WriteString(fmt.Sprintf("当前市值: ¥%.2f\n", pf.CurrentValue))
		b.WriteString(fmt.Sprintf("总盈亏: %+.2f (%+.2f%%)\n", pf.ProfitLoss, pf.ProfitLossPercent))
	}
	return b.String()
}
