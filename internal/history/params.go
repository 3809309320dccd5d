package history

// params shapes the synthesized series for one window length. Every
// column grows with the window.
type params struct {
	days         int
	growth       float64 // total rise from window start to today
	cycleAmp     float64 // annual cycle amplitude, CNY/g
	mockTrendAmp float64
	mockNoiseAmp float64
	mockCycle    float64 // radians per day
}

var paramTable = []params{
	{days: 180, growth: 0.05, cycleAmp: 15, mockTrendAmp: 10, mockNoiseAmp: 8, mockCycle: 0.1},
	{days: 365, growth: 0.10, cycleAmp: 25, mockTrendAmp: 15, mockNoiseAmp: 12, mockCycle: 0.05},
	{days: 1095, growth: 0.35, cycleAmp: 40, mockTrendAmp: 30, mockNoiseAmp: 20, mockCycle: 0.02},
	{days: 1825, growth: 0.65, cycleAmp: 50, mockTrendAmp: 50, mockNoiseAmp: 25, mockCycle: 0.01},
	{days: 3650, growth: 1.20, cycleAmp: 60, mockTrendAmp: 80, mockNoiseAmp: 30, mockCycle: 0.005},
}

// paramsFor picks the largest row not longer than days, or the first row.
func paramsFor(days int) params {
	p := paramTable[0]
	for _, row := range paramTable {
		if days >= row.days {
			p = row
		}
	}
	return p
}
