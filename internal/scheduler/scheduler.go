package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"GoldBean/internal/calculator"
	"GoldBean/internal/history"
	"GoldBean/internal/model"
	"GoldBean/internal/notifier"
	"GoldBean/internal/pricing"
	"GoldBean/internal/store"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sender delivers outbound messages.
type Sender interface {
	Enabled() bool
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the daily jobs and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Price    *pricing.Service
	History  *history.Service
	Holdings store.HoldingStore
	Notifier Sender
	Ctx      context.Context

	log *logrus.Logger
}

func NewScheduler(ctx context.Context, price *pricing.Service, hist *history.Service, holdings store.HoldingStore, sender Sender, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Price:    price,
		History:  hist,
		Holdings: holdings,
		Notifier: sender,
		Ctx:      ctx,
		log:      logger,
	}
}

// RegisterAll registers the daily update and the daily price report.
func (s *Scheduler) RegisterAll(updateCron, reportCron string) error {
	if _, err := s.Cron.AddFunc(updateCron, s.dailyUpdate); err != nil {
		return fmt.Errorf("register daily update: %w", err)
	}
	if _, err := s.Cron.AddFunc(reportCron, s.dailyReport); err != nil {
		return fmt.Errorf("register daily report: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunUpdateNow runs the daily update immediately (startup path).
func (s *Scheduler) RunUpdateNow() {
	s.dailyUpdate()
}

func (s *Scheduler) dailyUpdate() {
	s.log.Info("running daily price update")
	ran, err := s.Price.AutoUpdate(s.Ctx)
	if err != nil {
		s.log.WithError(err).Warn("daily update failed")
		return
	}
	if ran {
		s.History.Invalidate()
	}
}

func (s *Scheduler) dailyReport() {
	snap := s.Price.Snapshot()
	if !snap.Valid {
		s.log.Warn("no valid price for daily report")
		return
	}
	s.trySend(notifier.FormatDailyPrice(snap))
}

const helpText = "可用命令:\n" +
	"• 查看金价 /price\n" +
	"• 刷新金价 /refresh\n" +
	"• 确认刷新 /confirm\n" +
	"• 查看走势 /history [6M|1Y|3Y|5Y|10Y]\n" +
	"• 查看持仓 /holdings\n" +
	"• 清除历史缓存 /clear"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	name, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]

	switch name {
	case "查看金价", "/price":
		return s.priceStatus()
	case "刷新金价", "/refresh":
		return s.refresh(ctx, false)
	case "确认刷新", "/confirm":
		return s.refresh(ctx, true)
	case "查看走势", "/history":
		return s.trend(ctx, args)
	case "查看持仓", "/holdings":
		return s.holdings(ctx)
	case "清除历史缓存", "/clear":
		if err := s.History.Clear(ctx); err != nil {
			s.log.WithError(err).Error("clear history")
			return "❌ 清除失败"
		}
		return "🗑️ 已清除历史数据缓存"
	default:
		return helpText
	}
}

func (s *Scheduler) priceStatus() string {
	return notifier.FormatPriceStatus(s.Price.Snapshot(), s.Price.TodayStatus(), s.Price.FormattedLastUpdated(), s.Price.Advisory())
}

func (s *Scheduler) refresh(ctx context.Context, force bool) string {
	_, err := s.Price.Refresh(ctx, force)
	switch {
	case errors.Is(err, pricing.ErrAlreadyUpdated):
		return pricing.AdvisoryAlreadyUpdated + "\n发送 /confirm 强制刷新"
	case err == nil:
		s.History.Invalidate()
	}
	return s.priceStatus()
}

func (s *Scheduler) trend(ctx context.Context, args []string) string {
	w := model.Window6M
	if len(args) == 0 {
		if sum, points, ok := s.History.Cached(w); ok {
			return notifier.FormatTrendReport(w, sum, calculator.ComputeIndicators(points), points)
		}
	} else {
		parsed, err := model.ParseWindow(args[0])
		if err != nil {
			return "未知时间范围，可选: 6M 1Y 3Y 5Y 10Y"
		}
		w = parsed
	}
	sum, points, err := s.History.Summary(ctx, w)
	if err != nil {
		s.log.WithError(err).Error("history summary")
		return "❌ 获取历史数据失败"
	}
	return notifier.FormatTrendReport(w, sum, calculator.ComputeIndicators(points), points)
}

func (s *Scheduler) holdings(ctx context.Context) string {
	records, err := s.Holdings.ListHoldings(ctx)
	if err != nil {
		s.log.WithError(err).Error("list holdings")
		return "❌ 读取记录失败"
	}
	return notifier.FormatHoldings(records, calculator.Valuate(records, s.Price.CurrentPrice()))
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil || !s.Notifier.Enabled() {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.WithError(err).Error("send notification")
	}
}
