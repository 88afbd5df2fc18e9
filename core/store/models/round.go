package models

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	null "gopkg.in/guregu/null.v3"
)

type RoundState string

const (
	// RoundStateOpen accepts entrants.
	RoundStateOpen RoundState = "open"
	// RoundStateCalculating has exactly one randomness request in flight
	// and admits nobody until it is fulfilled.
	RoundStateCalculating RoundState = "calculating"
	// RoundStateResolved is a retired round kept for history. The current
	// round is never resolved.
	RoundStateResolved RoundState = "resolved"
)

type Round struct {
	ID               uint64      `json:"id" storm:"id,increment,index"`
	State            RoundState  `json:"state" storm:"index"`
	PoolBalance      *big.Int    `json:"poolBalance"`
	LastCloseAt      time.Time   `json:"lastCloseAt"`
	PendingRequestID null.String `json:"pendingRequestId"`
	CreatedAt        time.Time   `json:"createdAt"`
}

func NewRound(lastCloseAt time.Time) Round {
	return Round{
		State:       RoundStateOpen,
		PoolBalance: big.NewInt(0),
		LastCloseAt: lastCloseAt,
		CreatedAt:   time.Now(),
	}
}

func (self Round) Open() bool {
	return self.State == RoundStateOpen
}

func (self Round) Calculating() bool {
	return self.State == RoundStateCalculating
}

func (self Round) ForLogger(kvs ...interface{}) []interface{} {
	output := []interface{}{
		"round", self.ID,
		"state", self.State,
		"poolBalance", self.PoolBalance,
	}
	if self.PendingRequestID.Valid {
		output = append(output, "requestId", self.PendingRequestID.String)
	}
	return append(output, kvs...)
}

// Entry is one admitted participant. Entries are ordered by ID within a
// round; the same address may appear any number of times.
type Entry struct {
	ID          uint64         `json:"id" storm:"id,increment,index"`
	RoundID     uint64         `json:"roundId" storm:"index"`
	Participant common.Address `json:"participant"`
	Amount      *big.Int       `json:"amount"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// RandomnessRequest correlates an outbound randomness request with the
// round that issued it. Consumed requests are kept so a replayed
// fulfillment is distinguishable from one that was never issued.
type RandomnessRequest struct {
	RequestID string    `json:"requestId" storm:"id,unique"`
	RoundID   uint64    `json:"roundId" storm:"index"`
	Consumed  bool      `json:"consumed"`
	IssuedAt  time.Time `json:"issuedAt"`
}

func (self RandomnessRequest) Hash() common.Hash {
	return common.HexToHash(self.RequestID)
}

type Winner struct {
	ID           uint64         `json:"id" storm:"id,increment,index"`
	RoundID      uint64         `json:"roundId" storm:"index"`
	Address      common.Address `json:"address"`
	Amount       *big.Int       `json:"amount"`
	PayoutTxHash null.String    `json:"payoutTxHash"`
	PickedAt     time.Time      `json:"pickedAt"`
}

const (
	EventEntrantAdmitted = "entrant_admitted"
	EventRoundClosing    = "round_closing"
	EventWinnerPicked    = "winner_picked"
)

// Event is the persisted form of a notification, paged through by
// external indexers and mirrored on the websocket feed.
type Event struct {
	ID        uint64          `json:"id" storm:"id,increment,index"`
	Name      string          `json:"name" storm:"index"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt" storm:"index"`
}
