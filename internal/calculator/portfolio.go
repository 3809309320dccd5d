package calculator

import "GoldBean/internal/model"

// Valuate totals the holdings at price.
func Valuate(records []model.HoldingRecord, price float64) model.Portfolio {
	pf := model.Portfolio{Count: len(records), Price: price}
	for _, r := range records {
		pf.TotalWeight += r.Weight
		pf.TotalInvestment += r.PurchasePrice
		pf.CurrentValue += r.CurrentValue(price)
	}
	pf.ProfitLoss = pf.CurrentValue - pf.TotalInvestment
	if pf.TotalInvestment > 0 {
		pf.ProfitLossPercent = pf.ProfitLoss / pf.TotalInvestment * 100
	}
	return pf
}
