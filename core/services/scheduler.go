package services

import (
	"github.com/mrwonko/cron"

	"RaffleOracle/core/logger"
)

// Scheduler is the in-process upkeep collaborator: it polls readiness
// on a cron schedule and conditionally closes the round. PerformUpkeep
// re-validates readiness itself, so a poll that races a manual close is
// harmless.
type Scheduler struct {
	Raffle   *Raffle
	schedule string
	cron     *cron.Cron
}

func NewScheduler(raffle *Raffle, schedule string) *Scheduler {
	return &Scheduler{Raffle: raffle, schedule: schedule}
}

func (self *Scheduler) Start() error {
	self.cron = cron.New()
	if err := self.cron.AddFunc(self.schedule, self.pollUpkeep); err != nil {
		return err
	}
	self.cron.Start()
	return nil
}

func (self *Scheduler) Stop() {
	if self.cron != nil {
		self.cron.Stop()
	}
}

func (self *Scheduler) pollUpkeep() {
	ready, err := self.Raffle.CheckUpkeep()
	if err != nil {
		logger.Errorw("upkeep check failed", "error", err)
		return
	}
	if !ready {
		return
	}
	if _, err := self.Raffle.PerformUpkeep(); err != nil {
		switch err.(type) {
		case *UpkeepNotNeededError:
			logger.Debugw("upkeep no longer needed", "error", err)
		default:
			logger.Errorw("upkeep failed", "error", err)
		}
	}
}
