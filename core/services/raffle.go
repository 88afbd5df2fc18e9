package services

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/asdine/storm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	null "gopkg.in/guregu/null.v3"

	"RaffleOracle/core/logger"
	"RaffleOracle/core/store"
	"RaffleOracle/core/store/models"
)

var (
	ErrInsufficientFee         = errors.New("amount below entrance fee")
	ErrRoundNotOpen            = errors.New("round is not open")
	ErrUnknownOrExpiredRequest = errors.New("unknown or expired randomness request")
	ErrEmptyRandomWords        = errors.New("randomness response carried no words")
	ErrNoSuchEntrant           = errors.New("no entrant at index")
)

// UpkeepNotNeededError reports why a round could not be closed,
// carrying the observed state for diagnostics.
type UpkeepNotNeededError struct {
	Balance  *big.Int
	Entrants int
	State    models.RoundState
}

func (self *UpkeepNotNeededError) Error() string {
	return fmt.Sprintf(
		"upkeep not needed: balance %v, %v entrants, state %v",
		self.Balance, self.Entrants, self.State)
}

// PayoutTransferFailedError is raised after the round bookkeeping has
// already committed. The winner and reset stand; only the transfer
// needs external remediation.
type PayoutTransferFailedError struct {
	Winner common.Address
	Amount *big.Int
	cause  error
}

func (self *PayoutTransferFailedError) Error() string {
	return fmt.Sprintf(
		"payout of %v to %v failed: %v",
		self.Amount, self.Winner.Hex(), self.cause)
}

func (self *PayoutTransferFailedError) Cause() error {
	return self.cause
}

// Payer moves value to the winner. Satisfied by store.Eth.
type Payer interface {
	PayWinner(to common.Address, amount *big.Int) (*models.Tx, error)
}

// Notifier receives every persisted raffle event. Satisfied by hub.Hub.
type Notifier interface {
	Notify(event models.Event)
}

// Raffle owns the round lifecycle: admission while open, the upkeep
// decision, the randomness request on close, winner resolution and
// payout. All operations on the current round go through one mutex,
// preserving the single-writer model the round semantics assume.
type Raffle struct {
	Store       *store.Store
	Coordinator Coordinator
	Payer       Payer
	Notifier    Notifier
	mutex       sync.Mutex
}

func NewRaffle(str *store.Store, coordinator Coordinator, payer Payer, notifier Notifier) *Raffle {
	return &Raffle{
		Store:       str,
		Coordinator: coordinator,
		Payer:       payer,
		Notifier:    notifier,
	}
}

// Enter admits a participant into the current round. The full amount is
// credited to the pool; overpayment is kept, not returned. Duplicate
// addresses are admitted as independent entrants.
func (self *Raffle) Enter(participant common.Address, amount *big.Int) (models.Entry, error) {
	self.mutex.Lock()
	defer self.mutex.Unlock()

	round, err := self.Store.CurrentRound()
	if err != nil {
		return models.Entry{}, err
	}
	if !round.Open() {
		return models.Entry{}, ErrRoundNotOpen
	}
	if amount == nil || amount.Cmp(self.Store.Config.EntranceFeeWei) < 0 {
		return models.Entry{}, ErrInsufficientFee
	}

	entry := models.Entry{
		RoundID:     round.ID,
		Participant: participant,
		Amount:      new(big.Int).Set(amount),
		CreatedAt:   time.Now(),
	}
	if err := self.Store.Save(&entry); err != nil {
		return models.Entry{}, err
	}
	round.PoolBalance = new(big.Int).Add(round.PoolBalance, amount)
	if err := self.Store.Save(round); err != nil {
		return models.Entry{}, err
	}

	logger.Infow("Entrant admitted", round.ForLogger("participant", participant.Hex(), "amount", amount)...)
	self.notify(models.EventEntrantAdmitted, map[string]interface{}{
		"roundId":     round.ID,
		"participant": participant.Hex(),
		"amount":      amount.String(),
		"poolBalance": round.PoolBalance.String(),
	})
	return entry, nil
}

// CheckUpkeep reports whether the current round may be closed. Ready
// means: round open, interval elapsed since the last close (exactly at
// the interval counts), pool funded, at least one entrant. Read-only.
func (self *Raffle) CheckUpkeep() (bool, error) {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	ready, _, _, err := self.upkeepStatus()
	return ready, err
}

func (self *Raffle) upkeepStatus() (bool, *models.Round, []models.Entry, error) {
	round, err := self.Store.CurrentRound()
	if err != nil {
		return false, nil, nil, err
	}
	entries, err := self.Store.EntriesForRound(round.ID)
	if err != nil {
		return false, round, nil, err
	}
	intervalPassed := time.Since(round.LastCloseAt) >= self.Store.Config.RaffleInterval()
	hasBalance := round.PoolBalance != nil && round.PoolBalance.Sign() > 0
	ready := round.Open() && intervalPassed && hasBalance && len(entries) > 0
	return ready, round, entries, nil
}

// PerformUpkeep closes the round: transitions it to calculating and
// issues exactly one randomness request. Readiness is re-validated
// regardless of any prior CheckUpkeep result. The calculating state is
// persisted before the request goes out, so a failure on any later save
// can never leave the round closeable with a request already in flight;
// a coordinator failure reopens the round.
func (self *Raffle) PerformUpkeep() (models.RandomnessRequest, error) {
	self.mutex.Lock()
	defer self.mutex.Unlock()

	ready, round, entries, err := self.upkeepStatus()
	if err != nil {
		return models.RandomnessRequest{}, err
	}
	if !ready {
		return models.RandomnessRequest{}, &UpkeepNotNeededError{
			Balance:  round.PoolBalance,
			Entrants: len(entries),
			State:    round.State,
		}
	}

	round.State = models.RoundStateCalculating
	if err := self.Store.Save(round); err != nil {
		return models.RandomnessRequest{}, err
	}

	config := self.Store.Config
	requestID, err := self.Coordinator.RequestRandomWords(RandomnessRequestSpec{
		KeyHash:              config.VRFKeyHash(),
		SubscriptionID:       config.VRFSubscriptionID,
		RequestConfirmations: uint32(config.VRFRequestConfirmations),
		CallbackGasLimit:     config.VRFCallbackGasLimit,
		NumWords:             1,
		NativePayment:        config.VRFNativePayment,
	})
	if err != nil {
		round.State = models.RoundStateOpen
		if revertErr := self.Store.Save(round); revertErr != nil {
			logger.Errorw("cannot reopen round after failed randomness request",
				round.ForLogger("error", revertErr)...)
		}
		return models.RandomnessRequest{}, errors.Wrap(err, "issuing randomness request")
	}

	request := models.RandomnessRequest{
		RequestID: requestID.Hex(),
		RoundID:   round.ID,
		IssuedAt:  time.Now(),
	}
	if err := self.Store.Save(&request); err != nil {
		return models.RandomnessRequest{}, err
	}
	round.PendingRequestID = null.StringFrom(request.RequestID)
	if err := self.Store.Save(round); err != nil {
		return models.RandomnessRequest{}, err
	}

	logger.Infow("Round closing, randomness requested", round.ForLogger("entrants", len(entries))...)
	self.notify(models.EventRoundClosing, map[string]interface{}{
		"roundId":   round.ID,
		"requestId": request.RequestID,
		"entrants":  len(entries),
	})
	return request, nil
}

// FulfillRandomWords consumes the coordinator's response, derives the
// winner and pays out. Bookkeeping (winner record, round reset, close
// timestamp) commits before the transfer; a transfer failure is
// surfaced but never rolled back.
func (self *Raffle) FulfillRandomWords(requestID common.Hash, randomWords []*big.Int) (models.Winner, error) {
	self.mutex.Lock()
	defer self.mutex.Unlock()

	round, err := self.Store.CurrentRound()
	if err != nil {
		return models.Winner{}, err
	}
	request, err := self.Store.RequestByID(requestID.Hex())
	if err == storm.ErrNotFound {
		return models.Winner{}, ErrUnknownOrExpiredRequest
	}
	if err != nil {
		return models.Winner{}, err
	}
	if request.Consumed || !round.Calculating() || request.RoundID != round.ID ||
		round.PendingRequestID.String != request.RequestID {
		return models.Winner{}, ErrUnknownOrExpiredRequest
	}
	if len(randomWords) == 0 {
		return models.Winner{}, ErrEmptyRandomWords
	}

	entries, err := self.Store.EntriesForRound(round.ID)
	if err != nil {
		return models.Winner{}, err
	}
	index := new(big.Int).Mod(randomWords[0], big.NewInt(int64(len(entries)))).Uint64()
	prize := new(big.Int).Set(round.PoolBalance)
	now := time.Now()

	winner := models.Winner{
		RoundID:  round.ID,
		Address:  entries[index].Participant,
		Amount:   prize,
		PickedAt: now,
	}
	if err := self.Store.Save(&winner); err != nil {
		return models.Winner{}, err
	}
	if err := self.Store.ConsumeRequest(request); err != nil {
		return winner, err
	}
	round.State = models.RoundStateResolved
	round.PendingRequestID = null.String{}
	round.PoolBalance = big.NewInt(0)
	if err := self.Store.Save(round); err != nil {
		return winner, err
	}
	next := models.NewRound(now)
	if err := self.Store.Save(&next); err != nil {
		return winner, err
	}

	logger.Infow("Winner picked", next.ForLogger(
		"winner", winner.Address.Hex(),
		"prize", prize,
		"settledRound", round.ID,
	)...)
	self.notify(models.EventWinnerPicked, map[string]interface{}{
		"roundId": round.ID,
		"winner":  winner.Address.Hex(),
		"amount":  prize.String(),
		"index":   index,
	})

	tx, err := self.Payer.PayWinner(winner.Address, prize)
	if err != nil {
		logger.Errorw("Payout transfer failed, round bookkeeping stands",
			"winner", winner.Address.Hex(), "amount", prize, "error", err)
		return winner, &PayoutTransferFailedError{
			Winner: winner.Address,
			Amount: prize,
			cause:  err,
		}
	}
	winner.PayoutTxHash = null.StringFrom(tx.Hash.String())
	if err := self.Store.Save(&winner); err != nil {
		return winner, err
	}
	return winner, nil
}

func (self *Raffle) CurrentRound() (*models.Round, error) {
	return self.Store.CurrentRound()
}

func (self *Raffle) NumEntrants() (int, error) {
	round, err := self.Store.CurrentRound()
	if err != nil {
		return 0, err
	}
	entries, err := self.Store.EntriesForRound(round.ID)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (self *Raffle) EntrantAt(index int) (common.Address, error) {
	round, err := self.Store.CurrentRound()
	if err != nil {
		return common.Address{}, err
	}
	entries, err := self.Store.EntriesForRound(round.ID)
	if err != nil {
		return common.Address{}, err
	}
	if index < 0 || index >= len(entries) {
		return common.Address{}, ErrNoSuchEntrant
	}
	return entries[index].Participant, nil
}

func (self *Raffle) RecentWinner() (*models.Winner, error) {
	return self.Store.RecentWinner()
}

func (self *Raffle) notify(name string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		logger.Errorw("cannot marshal event payload", "event", name, "error", err)
		return
	}
	event := models.Event{
		Name:      name,
		Data:      payload,
		CreatedAt: time.Now(),
	}
	if err := self.Store.Save(&event); err != nil {
		logger.Errorw("cannot persist event", "event", name, "error", err)
	}
	if self.Notifier != nil {
		self.Notifier.Notify(event)
	}
}
