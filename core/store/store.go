package store

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/rpc"

	"RaffleOracle/core/logger"
	"RaffleOracle/core/store/models"
)

type Store struct {
	*models.ORM
	Config   Config
	KeyStore *KeyStore
	Eth      *Eth
	sigs     chan os.Signal
	Exiter   func(int)
}

func NewStore(config Config) *Store {
	err := os.MkdirAll(config.RootDir, os.FileMode(0700))
	if err != nil {
		logger.Fatal(err)
	}
	orm := models.NewORM(config.RootDir)
	ethrpc, err := rpc.Dial(config.EthereumURL)
	if err != nil {
		logger.Fatal(err)
	}
	keyStore := NewKeyStore(config.KeysDir())
	return &Store{
		ORM:      orm,
		Config:   config,
		KeyStore: keyStore,
		Exiter:   os.Exit,
		Eth: &Eth{
			EthClient: &EthClient{ethrpc},
			KeyStore:  keyStore,
			Config:    config,
			ORM:       orm,
		},
	}
}

func (self *Store) Start() {
	self.sigs = make(chan os.Signal, 1)
	signal.Notify(self.sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-self.sigs
		self.Close()
		self.Exiter(1)
	}()
}

func (self *Store) Close() error {
	return self.ORM.Close()
}
