package controllers

import (
	"github.com/gin-gonic/gin"

	"RaffleOracle/core/services"
)

type UpkeepController struct {
	App *services.Application
}

// Show is the read-only readiness poll. No side effects, no auth.
func (self *UpkeepController) Show(c *gin.Context) {
	ready, err := self.App.Raffle.CheckUpkeep()
	if err != nil {
		c.JSON(500, gin.H{
			"errors": []string{err.Error()},
		})
		return
	}
	c.JSON(200, gin.H{"ready": ready})
}

// Create closes the round. Readiness is re-validated server side; a
// stale poll result gets a 409 carrying the observed state.
func (self *UpkeepController) Create(c *gin.Context) {
	request, err := self.App.Raffle.PerformUpkeep()
	if err == nil {
		c.JSON(200, gin.H{"requestId": request.RequestID, "roundId": request.RoundID})
		return
	}
	if notNeeded, ok := err.(*services.UpkeepNotNeededError); ok {
		c.JSON(409, gin.H{
			"errors":   []string{notNeeded.Error()},
			"balance":  notNeeded.Balance.String(),
			"entrants": notNeeded.Entrants,
			"state":    notNeeded.State,
		})
		return
	}
	c.JSON(500, gin.H{
		"errors": []string{err.Error()},
	})
}
