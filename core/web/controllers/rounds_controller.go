package controllers

import (
	"strconv"

	"github.com/asdine/storm"
	"github.com/gin-gonic/gin"

	"RaffleOracle/core/services"
	"RaffleOracle/core/store/models"
)

type RoundsController struct {
	App *services.Application
}

type RoundPresenter struct {
	models.Round
	Entrants int `json:"entrants"`
}

func (self *RoundsController) Show(c *gin.Context) {
	round, err := self.App.Raffle.CurrentRound()
	if err != nil {
		c.JSON(500, gin.H{
			"errors": []string{err.Error()},
		})
		return
	}
	entrants, err := self.App.Raffle.NumEntrants()
	if err != nil {
		c.JSON(500, gin.H{
			"errors": []string{err.Error()},
		})
		return
	}
	c.JSON(200, RoundPresenter{*round, entrants})
}

func (self *RoundsController) Entrant(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(400, gin.H{
			"errors": []string{"index must be an integer"},
		})
		return
	}
	participant, err := self.App.Raffle.EntrantAt(index)
	if err == services.ErrNoSuchEntrant {
		c.JSON(404, gin.H{
			"errors": []string{err.Error()},
		})
		return
	}
	if err != nil {
		c.JSON(500, gin.H{
			"errors": []string{err.Error()},
		})
		return
	}
	c.JSON(200, gin.H{"participant": participant.Hex()})
}

func (self *RoundsController) Winner(c *gin.Context) {
	winner, err := self.App.Raffle.RecentWinner()
	if err == storm.ErrNotFound {
		c.JSON(404, gin.H{
			"errors": []string{"No winner picked yet."},
		})
		return
	}
	if err != nil {
		c.JSON(500, gin.H{
			"errors": []string{err.Error()},
		})
		return
	}
	c.JSON(200, winner)
}

func (self *RoundsController) Events(c *gin.Context) {
	events, err := self.App.Store.RecentEvents(100)
	if err != nil {
		c.JSON(500, gin.H{
			"errors": []string{err.Error()},
		})
		return
	}
	c.JSON(200, gin.H{"events": events})
}
