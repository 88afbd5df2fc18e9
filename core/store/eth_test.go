package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"

	"RaffleOracle/core/store/models"
)

const testRootDir = "./tmp/test"

func newTestConfig() Config {
	return Config{
		RootDir:             path.Join(testRootDir, fmt.Sprintf("%d", time.Now().UnixNano())),
		EthereumURL:         "https://example.com/api",
		ChainID:             3,
		EthMinConfirmations: 6,
		EthGasBumpWei:       big.NewInt(5000000000),
		EthGasBumpThreshold: 3,
		EthGasPriceDefault:  big.NewInt(20000000000),
		EntranceFeeWei:      big.NewInt(1),
		RaffleIntervalSecs:  3600,
	}
}

func newTestStore(t *testing.T) (*Store, func()) {
	config := newTestConfig()
	if err := os.MkdirAll(config.RootDir, os.FileMode(0700)); err != nil {
		t.Fatal(err)
	}
	str := NewStore(config)
	return str, func() {
		str.Close()
		os.RemoveAll(config.RootDir)
	}
}

// fakeCaller stands in for the JSON-RPC transport.
type fakeCaller struct {
	nonce        string
	blockNumber  string
	balance      string
	receiptJSON  string
	sendErr      error
	rawTxs       []string
	balanceReads int
}

func (self *fakeCaller) Call(result interface{}, method string, args ...interface{}) error {
	switch method {
	case "eth_getTransactionCount":
		*result.(*string) = self.nonce
	case "eth_getBalance":
		self.balanceReads++
		balance := self.balance
		if balance == "" {
			balance = "0xde0b6b3a7640000"
		}
		*result.(*string) = balance
	case "eth_blockNumber":
		*result.(*string) = self.blockNumber
	case "eth_sendRawTransaction":
		if self.sendErr != nil {
			return self.sendErr
		}
		self.rawTxs = append(self.rawTxs, args[0].(string))
	case "eth_getTransactionReceipt":
		return json.Unmarshal([]byte(self.receiptJSON), result)
	default:
		return fmt.Errorf("unexpected method %v", method)
	}
	return nil
}

func (self *fakeCaller) EthSubscribe(context.Context, interface{}, ...interface{}) (*rpc.ClientSubscription, error) {
	return nil, fmt.Errorf("not implemented")
}

func newTestEth(t *testing.T, caller *fakeCaller) (*Eth, func()) {
	str, cleanup := newTestStore(t)
	if _, err := str.KeyStore.NewAccount("password"); err != nil {
		t.Fatal(err)
	}
	if err := str.KeyStore.Unlock("password"); err != nil {
		t.Fatal(err)
	}
	eth := &Eth{
		EthClient: &EthClient{caller},
		KeyStore:  str.KeyStore,
		Config:    str.Config,
		ORM:       str.ORM,
	}
	return eth, cleanup
}

func TestEthPayWinner(t *testing.T) {
	caller := &fakeCaller{nonce: "0x0", blockNumber: "0x1"}
	eth, cleanup := newTestEth(t, caller)
	defer cleanup()

	winner := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	tx, err := eth.PayWinner(winner, big.NewInt(3))
	assert.Nil(t, err)
	assert.Equal(t, winner, tx.To)
	assert.Equal(t, big.NewInt(3), tx.Value)
	assert.Len(t, caller.rawTxs, 1)

	attempts, err := eth.ORM.AttemptsFor(tx.ID)
	assert.Nil(t, err)
	assert.Len(t, attempts, 1)
	assert.Equal(t, eth.Config.EthGasPriceDefault, attempts[0].GasPrice)
	assert.Equal(t, 1, caller.balanceReads)
}

func TestEthPayWinnerLowBalanceStillAttempts(t *testing.T) {
	caller := &fakeCaller{nonce: "0x0", blockNumber: "0x1", balance: "0x1"}
	eth, cleanup := newTestEth(t, caller)
	defer cleanup()

	// the transfer is attempted even when the account cannot cover it;
	// the node operator learns from the log and the tx failure path
	winner := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	_, err := eth.PayWinner(winner, big.NewInt(3))
	assert.Nil(t, err)
	assert.Len(t, caller.rawTxs, 1)
}

func TestEthPayWinnerSendFailure(t *testing.T) {
	caller := &fakeCaller{nonce: "0x0", blockNumber: "0x1", sendErr: fmt.Errorf("nonce too low")}
	eth, cleanup := newTestEth(t, caller)
	defer cleanup()

	winner := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	_, err := eth.PayWinner(winner, big.NewInt(3))
	assert.Error(t, err)
}

func TestEnsureTxConfirmedAtDepth(t *testing.T) {
	caller := &fakeCaller{nonce: "0x0", blockNumber: "0x1"}
	eth, cleanup := newTestEth(t, caller)
	defer cleanup()

	winner := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	tx, err := eth.PayWinner(winner, big.NewInt(3))
	assert.Nil(t, err)

	// mined at block 1, polled at block 7: exactly at the confirmation depth
	caller.blockNumber = "0x7"
	caller.receiptJSON = fmt.Sprintf(
		`{"blockNumber":"0x1","transactionHash":"%v"}`, tx.Hash.Hex())

	confirmed, err := eth.EnsureTxConfirmed(tx.Hash)
	assert.Nil(t, err)
	assert.True(t, confirmed)

	saved := models.Tx{}
	assert.Nil(t, eth.ORM.One("ID", tx.ID, &saved))
	assert.True(t, saved.Confirmed)
}

func TestEnsureTxConfirmedTooShallow(t *testing.T) {
	caller := &fakeCaller{nonce: "0x0", blockNumber: "0x1"}
	eth, cleanup := newTestEth(t, caller)
	defer cleanup()

	winner := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	tx, err := eth.PayWinner(winner, big.NewInt(3))
	assert.Nil(t, err)

	caller.blockNumber = "0x3"
	caller.receiptJSON = fmt.Sprintf(
		`{"blockNumber":"0x1","transactionHash":"%v"}`, tx.Hash.Hex())

	confirmed, err := eth.EnsureTxConfirmed(tx.Hash)
	assert.Nil(t, err)
	assert.False(t, confirmed)
}

func TestEnsureTxConfirmedBumpsGas(t *testing.T) {
	caller := &fakeCaller{nonce: "0x0", blockNumber: "0x1"}
	eth, cleanup := newTestEth(t, caller)
	defer cleanup()

	winner := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	tx, err := eth.PayWinner(winner, big.NewInt(3))
	assert.Nil(t, err)

	// unmined and past the bump threshold
	caller.blockNumber = "0x9"
	caller.receiptJSON = `null`

	confirmed, err := eth.EnsureTxConfirmed(tx.Hash)
	assert.Nil(t, err)
	assert.False(t, confirmed)
	assert.Len(t, caller.rawTxs, 2)

	attempts, err := eth.ORM.AttemptsFor(tx.ID)
	assert.Nil(t, err)
	assert.Len(t, attempts, 2)

	bumped := new(big.Int).Add(eth.Config.EthGasPriceDefault, eth.Config.EthGasBumpWei)
	prices := []*big.Int{attempts[0].GasPrice, attempts[1].GasPrice}
	assert.Contains(t, prices, bumped)
}
