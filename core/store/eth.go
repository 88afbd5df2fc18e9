package store

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"RaffleOracle/core/logger"
	"RaffleOracle/core/store/models"
	"RaffleOracle/core/utils"
)

// payoutGasLimit covers a plain value transfer with headroom for
// recipients that are contracts with small receive hooks.
const payoutGasLimit = 50000

// Eth creates, signs, submits and tracks payout transactions.
type Eth struct {
	*EthClient
	KeyStore *KeyStore
	Config   Config
	ORM      *models.ORM
}

// PayWinner moves the pool balance to the winner. The first attempt is
// sent before returning; confirmation tracking and gas bumping happen
// via EnsureTxConfirmed. An underfunded payout account is surfaced in
// the log but the transfer is still attempted, so the usual failure
// path reports it.
func (self *Eth) PayWinner(to common.Address, amount *big.Int) (*models.Tx, error) {
	account := self.KeyStore.GetAccount()
	balance, err := self.GetBalance(account.Address)
	if err != nil {
		return nil, errors.Wrap(err, "fetching payout account balance")
	}
	if balance.Cmp(amount) < 0 {
		logger.Warnw("payout account balance below prize",
			"account", account.Address.Hex(), "balance", balance, "prize", amount)
	}
	return self.CreateTx(to, amount, nil)
}

func (self *Eth) CreateTx(to common.Address, value *big.Int, data []byte) (*models.Tx, error) {
	account := self.KeyStore.GetAccount()
	nonce, err := self.GetNonce(account)
	if err != nil {
		return nil, errors.Wrap(err, "fetching nonce")
	}
	txr, err := self.ORM.CreateTx(
		account.Address,
		nonce,
		to,
		data,
		value,
		payoutGasLimit,
	)
	if err != nil {
		return nil, err
	}
	blkNum, err := self.BlockNumber()
	if err != nil {
		return nil, err
	}
	gasPrice := self.Config.EthGasPriceDefault
	if _, err = self.createAttempt(txr, gasPrice, blkNum); err != nil {
		return txr, err
	}
	return txr, nil
}

func (self *Eth) EnsureTxConfirmed(hash common.Hash) (bool, error) {
	blkNum, err := self.BlockNumber()
	if err != nil {
		return false, err
	}
	attempts, err := self.getAttempts(hash)
	if err != nil {
		return false, err
	}
	if len(attempts) == 0 {
		return false, errors.New("can only ensure transactions with attempts")
	}
	txr := models.Tx{}
	if err := self.ORM.One("ID", attempts[0].TxID, &txr); err != nil {
		return false, err
	}

	for _, txat := range attempts {
		success, err := self.checkAttempt(&txr, txat, blkNum)
		if success {
			return success, err
		}
	}
	return false, nil
}

func (self *Eth) createAttempt(txr *models.Tx, gasPrice *big.Int, blkNum uint64) (*models.TxAttempt, error) {
	signable := txr.EthTx(gasPrice)
	signable, err := self.KeyStore.SignTx(signable, self.Config.ChainID)
	if err != nil {
		return nil, err
	}
	a, err := self.ORM.AddAttempt(txr, signable, blkNum)
	if err != nil {
		return nil, err
	}
	return a, self.sendTransaction(signable)
}

func (self *Eth) sendTransaction(tx *types.Transaction) error {
	hex, err := utils.EncodeTxToHex(tx)
	if err != nil {
		return err
	}
	if _, err = self.SendRawTx(hex); err != nil {
		return errors.Wrap(err, "sending raw transaction")
	}
	return nil
}

func (self *Eth) getAttempts(hash common.Hash) ([]*models.TxAttempt, error) {
	attempt := &models.TxAttempt{}
	if err := self.ORM.One("Hash", hash, attempt); err != nil {
		return []*models.TxAttempt{}, err
	}
	attempts, err := self.ORM.AttemptsFor(attempt.TxID)
	if err != nil {
		return []*models.TxAttempt{}, err
	}
	return attempts, nil
}

func (self *Eth) checkAttempt(
	txr *models.Tx,
	txat *models.TxAttempt,
	blkNum uint64,
) (bool, error) {
	receipt, err := self.GetTxReceipt(txat.Hash)
	if err != nil {
		return false, err
	}
	if receipt.Unconfirmed() {
		return self.handleUnconfirmed(txr, txat, blkNum)
	}
	return self.handleConfirmed(txr, txat, receipt, blkNum)
}

func (self *Eth) handleConfirmed(
	txr *models.Tx,
	txat *models.TxAttempt,
	rcpt *TxReceipt,
	blkNum uint64,
) (bool, error) {
	safeAt := rcpt.BlockNumber + self.Config.EthMinConfirmations
	if blkNum < safeAt {
		return false, nil
	}
	if err := self.ORM.ConfirmTx(txr, txat); err != nil {
		return false, err
	}
	return true, nil
}

func (self *Eth) handleUnconfirmed(
	txr *models.Tx,
	txat *models.TxAttempt,
	blkNum uint64,
) (bool, error) {
	bumpable := txr.Hash == txat.Hash
	pastThreshold := blkNum >= txat.SentAt+self.Config.EthGasBumpThreshold
	if bumpable && pastThreshold {
		return false, self.bumpGas(txat, blkNum)
	}
	return false, nil
}

func (self *Eth) bumpGas(txat *models.TxAttempt, blkNum uint64) error {
	txr := &models.Tx{}
	if err := self.ORM.One("ID", txat.TxID, txr); err != nil {
		return err
	}
	gasPrice := new(big.Int).Add(txat.GasPrice, self.Config.EthGasBumpWei)
	if _, err := self.createAttempt(txr, gasPrice, blkNum); err != nil {
		return err
	}
	return self.ORM.Save(txat)
}
