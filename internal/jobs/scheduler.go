// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежедневное напоминание о несобранной
// прибыли. Само начисление остаётся ленивым и происходит при обращении
// к балансу — задача только читает и уведомляет.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"mlwizard.ru/investment-bot/internal/common"
	"mlwizard.ru/investment-bot/internal/features/invest"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron          *cron.Cron
	investService *invest.Service
	sendFunc      func(userID int64, text string)
}

// NewScheduler создаёт планировщик задач с московским часовым поясом.
func NewScheduler(investService *invest.Service, sendFunc func(userID int64, text string)) *Scheduler {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		log.WithError(err).Warn("Не удалось загрузить Europe/Moscow, используем UTC+3")
		loc = time.FixedZone("MSK", 3*60*60)
	}

	return &Scheduler{
		cron:          cron.New(cron.WithLocation(loc)),
		investService: investService,
		sendFunc:      sendFunc,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Ежедневное напоминание в 12:00 по Москве
	s.cron.AddFunc("0 12 * * *", func() {
		log.Info("[CRON] Напоминания о несобранной прибыли")
		if err := s.notifyAccumulated(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка напоминаний")
		}
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен (Europe/Moscow)")
}

// Stop останавливает планировщик и дожидается завершения текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

// notifyAccumulated шлёт напоминание всем, у кого накопилась прибыль.
func (s *Scheduler) notifyAccumulated(ctx context.Context) error {
	totals, err := s.investService.AccruedTotals(ctx)
	if err != nil {
		return err
	}

	for _, t := range totals {
		text := "💰 Вам начислено <b>" + common.FormatAmount(t.Total) +
			"</b> прибыли!\n\nЗаберите её в приложении и выведите в любой момент."
		s.sendFunc(t.UserID, text)
	}

	log.WithField("count", len(totals)).Info("[CRON] Напоминания отправлены")
	return nil
}
