package services

import (
	"RaffleOracle/core/hub"
	"RaffleOracle/core/store"
)

type Application struct {
	Store     *store.Store
	Hub       *hub.Hub
	Raffle    *Raffle
	Scheduler *Scheduler
}

func NewApplication(config store.Config) *Application {
	str := store.NewStore(config)
	eventHub := hub.NewHub()
	coordinator := NewHTTPCoordinator(config.VRFCoordinatorURL)
	raffle := NewRaffle(str, coordinator, str.Eth, eventHub)
	return &Application{
		Store:     str,
		Hub:       eventHub,
		Raffle:    raffle,
		Scheduler: NewScheduler(raffle, config.PollingSchedule),
	}
}

func (self *Application) Start() error {
	self.Store.Start()
	go self.Hub.Run()
	return self.Scheduler.Start()
}

func (self *Application) Stop() error {
	self.Scheduler.Stop()
	self.Hub.Stop()
	return self.Store.Close()
}
