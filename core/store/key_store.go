package store

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// KeyStore holds the node's payout account.
type KeyStore struct {
	*keystore.KeyStore
}

func NewKeyStore(keyDir string) *KeyStore {
	ks := keystore.NewKeyStore(keyDir, keystore.StandardScryptN, keystore.StandardScryptP)
	return &KeyStore{ks}
}

func (self *KeyStore) HasAccounts() bool {
	return len(self.Accounts()) > 0
}

func (self *KeyStore) Unlock(phrase string) error {
	for _, account := range self.Accounts() {
		if err := self.KeyStore.Unlock(account, phrase); err != nil {
			return errors.Wrapf(err, "unlocking account %v", account.Address.Hex())
		}
	}
	return nil
}

// GetAccount returns the payout account. Callers must ensure at least
// one account exists (Authenticate guarantees this on boot).
func (self *KeyStore) GetAccount() accounts.Account {
	return self.Accounts()[0]
}

func (self *KeyStore) SignTx(tx *types.Transaction, chainID int64) (*types.Transaction, error) {
	return self.KeyStore.SignTx(self.GetAccount(), tx, big.NewInt(chainID))
}
