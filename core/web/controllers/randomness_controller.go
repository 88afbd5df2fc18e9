package controllers

import (
	"math/big"

	"github.com/gin-gonic/gin"

	"RaffleOracle/core/services"
	"RaffleOracle/core/utils"
)

type RandomnessController struct {
	App *services.Application
}

type randomnessResponse struct {
	RequestID   string   `json:"requestId" binding:"required"`
	RandomWords []string `json:"randomWords"`
}

// Create is the oracle's fulfillment callback. Caller authenticity is
// enforced by the router's oracle gate; request freshness is enforced
// here via the raffle's pending-request record.
func (self *RandomnessController) Create(c *gin.Context) {
	var response randomnessResponse
	if err := c.ShouldBindJSON(&response); err != nil {
		c.JSON(400, gin.H{
			"errors": []string{err.Error()},
		})
		return
	}
	requestID, err := utils.StringToHash(response.RequestID)
	if err != nil {
		c.JSON(400, gin.H{
			"errors": []string{err.Error()},
		})
		return
	}
	randomWords := make([]*big.Int, 0, len(response.RandomWords))
	for _, raw := range response.RandomWords {
		word, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			word, ok = new(big.Int).SetString(utils.RemoveHexPrefix(raw), 16)
		}
		if !ok {
			c.JSON(400, gin.H{
				"errors": []string{"randomWords must be decimal or hex integers"},
			})
			return
		}
		randomWords = append(randomWords, word)
	}

	winner, err := self.App.Raffle.FulfillRandomWords(requestID, randomWords)
	switch err.(type) {
	case nil:
		c.JSON(200, gin.H{
			"winner":  winner.Address.Hex(),
			"amount":  winner.Amount.String(),
			"roundId": winner.RoundID,
		})
		return
	case *services.PayoutTransferFailedError:
		// Bookkeeping has committed; only the transfer needs remediation.
		c.JSON(502, gin.H{
			"errors":  []string{err.Error()},
			"winner":  winner.Address.Hex(),
			"amount":  winner.Amount.String(),
			"roundId": winner.RoundID,
		})
		return
	}
	switch err {
	case services.ErrUnknownOrExpiredRequest:
		c.JSON(404, gin.H{
			"errors": []string{err.Error()},
		})
	case services.ErrEmptyRandomWords:
		c.JSON(400, gin.H{
			"errors": []string{err.Error()},
		})
	default:
		c.JSON(500, gin.H{
			"errors": []string{err.Error()},
		})
	}
}
