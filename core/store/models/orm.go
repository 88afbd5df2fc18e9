package models

import (
	"math/big"
	"path"
	"time"

	"github.com/asdine/storm"
	"github.com/asdine/storm/q"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"RaffleOracle/core/utils"
)

type ORM struct {
	*storm.DB
}

func NewORM(dir string) *ORM {
	db, err := storm.Open(path.Join(dir, "raffle.db"))
	if err != nil {
		panic(err)
	}
	return &ORM{db}
}

func (self *ORM) Close() error {
	return self.DB.Close()
}

// CurrentRound returns the newest round, creating the initial open round
// on first use. The newest round is always open or calculating.
func (self *ORM) CurrentRound() (*Round, error) {
	var round Round
	err := self.Select().OrderBy("ID").Reverse().First(&round)
	if err == storm.ErrNotFound {
		round = NewRound(time.Now())
		if err := self.Save(&round); err != nil {
			return nil, err
		}
		return &round, nil
	}
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (self *ORM) EntriesForRound(roundID uint64) ([]Entry, error) {
	entries := []Entry{}
	err := self.Select(q.Eq("RoundID", roundID)).OrderBy("ID").Find(&entries)
	if err == storm.ErrNotFound {
		return []Entry{}, nil
	}
	return entries, err
}

func (self *ORM) RequestByID(requestID string) (*RandomnessRequest, error) {
	var request RandomnessRequest
	err := self.One("RequestID", requestID, &request)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (self *ORM) ConsumeRequest(request *RandomnessRequest) error {
	request.Consumed = true
	return self.Save(request)
}

func (self *ORM) RecentWinner() (*Winner, error) {
	var winner Winner
	err := self.Select().OrderBy("ID").Reverse().First(&winner)
	if err != nil {
		return nil, err
	}
	return &winner, nil
}

func (self *ORM) RecentEvents(limit int) ([]Event, error) {
	events := []Event{}
	err := self.All(&events, storm.Limit(limit), storm.Reverse())
	if err == storm.ErrNotFound {
		return []Event{}, nil
	}
	return events, err
}

func (self *ORM) CreateTx(
	from common.Address,
	nonce uint64,
	to common.Address,
	data []byte,
	value *big.Int,
	gasLimit uint64,
) (*Tx, error) {
	tx := Tx{
		From:     from,
		To:       to,
		Nonce:    nonce,
		Data:     data,
		Value:    value,
		GasLimit: gasLimit,
	}
	return &tx, self.Save(&tx)
}

func (self *ORM) AddAttempt(tx *Tx, etx *types.Transaction, blkNum uint64) (*TxAttempt, error) {
	hex, err := utils.EncodeTxToHex(etx)
	if err != nil {
		return nil, err
	}
	attempt := &TxAttempt{
		Hash:     etx.Hash(),
		GasPrice: etx.GasPrice(),
		Hex:      hex,
		TxID:     tx.ID,
		SentAt:   blkNum,
	}
	if err = self.Save(attempt); err != nil {
		return nil, err
	}
	tx.TxAttempt = *attempt
	return attempt, self.Save(tx)
}

func (self *ORM) ConfirmTx(tx *Tx, txat *TxAttempt) error {
	txat.Confirmed = true
	tx.TxAttempt = *txat
	if err := self.Save(txat); err != nil {
		return err
	}
	return self.Save(tx)
}

func (self *ORM) AttemptsFor(id uint64) ([]*TxAttempt, error) {
	attempts := []*TxAttempt{}
	if err := self.Find("TxID", id, &attempts); err != nil {
		return attempts, err
	}
	return attempts, nil
}
