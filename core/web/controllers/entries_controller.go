package controllers

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"RaffleOracle/core/services"
)

type EntriesController struct {
	App *services.Application
}

type entryRequest struct {
	Participant string `json:"participant" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
}

func (self *EntriesController) Create(c *gin.Context) {
	var request entryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(400, gin.H{
			"errors": []string{err.Error()},
		})
		return
	}
	if !common.IsHexAddress(request.Participant) {
		c.JSON(400, gin.H{
			"errors": []string{"participant is not a valid address"},
		})
		return
	}
	amount, ok := new(big.Int).SetString(request.Amount, 10)
	if !ok {
		c.JSON(400, gin.H{
			"errors": []string{"amount is not a valid wei value"},
		})
		return
	}

	entry, err := self.App.Raffle.Enter(common.HexToAddress(request.Participant), amount)
	switch err {
	case nil:
		c.JSON(200, gin.H{"id": entry.ID, "roundId": entry.RoundID})
	case services.ErrRoundNotOpen:
		c.JSON(409, gin.H{
			"errors": []string{err.Error()},
		})
	case services.ErrInsufficientFee:
		c.JSON(402, gin.H{
			"errors": []string{err.Error()},
		})
	default:
		c.JSON(500, gin.H{
			"errors": []string{err.Error()},
		})
	}
}
