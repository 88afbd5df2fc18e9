package store

import (
	"log"
	"math/big"
	"os"
	"path"
	"time"

	"github.com/caarlos0/env"
	"github.com/ethereum/go-ethereum/common"
	homedir "github.com/mitchellh/go-homedir"

	"RaffleOracle/core/utils"
)

type Config struct {
	RootDir           string `env:"ROOT" envDefault:"~/.raffle"`
	Port              string `env:"PORT" envDefault:"6688"`
	BasicAuthUsername string `env:"USERNAME" envDefault:"raffle"`
	BasicAuthPassword string `env:"PASSWORD" envDefault:"p@ssword"`

	EthereumURL         string   `env:"ETHEREUM_URL" envDefault:"http://localhost:8545"`
	ChainID             int64    `env:"ETHEREUM_CHAIN_ID" envDefault:"0"`
	EthMinConfirmations uint64   `env:"ETH_MIN_CONFIRMATIONS" envDefault:"12"`
	EthGasBumpWei       *big.Int `env:"ETH_GAS_BUMP_WEI" envDefault:"5000000000"`
	EthGasPriceDefault  *big.Int `env:"ETH_GAS_PRICE_DEFAULT" envDefault:"20000000000"`
	EthGasBumpThreshold uint64   `env:"ETH_GAS_BUMP_THRESHOLD" envDefault:"12"`

	EntranceFeeWei     *big.Int `env:"ENTRANCE_FEE_WEI" envDefault:"100000000000000000"`
	RaffleIntervalSecs uint64   `env:"RAFFLE_INTERVAL" envDefault:"30"`
	PollingSchedule    string   `env:"POLLING_SCHEDULE" envDefault:"* * * * * *"`

	VRFCoordinatorURL       string `env:"VRF_COORDINATOR_URL" envDefault:"http://localhost:6690"`
	VRFKeyHashHex           string `env:"VRF_KEY_HASH" envDefault:"0x79d3d8832d904592c0bf9818b621522c988bb8b0b05bb9af19aeecc5b9c806ec"`
	VRFSubscriptionID       uint64 `env:"VRF_SUBSCRIPTION_ID" envDefault:"1"`
	// held as uint64: env only parses uint, uint64 and TextUnmarshaler fields
	VRFRequestConfirmations uint64 `env:"VRF_REQUEST_CONFIRMATIONS" envDefault:"3"`
	VRFCallbackGasLimit     uint64 `env:"VRF_CALLBACK_GAS_LIMIT" envDefault:"100000"`
	VRFNativePayment        bool   `env:"VRF_NATIVE_PAYMENT" envDefault:"false"`

	OracleAccessKey string `env:"ORACLE_ACCESS_KEY" envDefault:""`
	OracleSecret    string `env:"ORACLE_SECRET" envDefault:""`
}

func NewConfig() Config {
	config := Config{}
	env.Parse(&config)
	dir, err := homedir.Expand(config.RootDir)
	if err != nil {
		log.Fatal(err)
	}
	if err = os.MkdirAll(dir, os.FileMode(0700)); err != nil {
		log.Fatal(err)
	}
	config.RootDir = dir
	if config.OracleAccessKey == "" {
		config.OracleAccessKey = utils.NewBytes32ID()
		log.Printf("generated oracle access key: %v", config.OracleAccessKey)
	}
	if config.OracleSecret == "" {
		config.OracleSecret = utils.NewSecret(utils.DefaultSecretSize)
		log.Printf("generated oracle secret: %v", config.OracleSecret)
	}
	return config
}

func (self Config) KeysDir() string {
	return path.Join(self.RootDir, "keys")
}

func (self Config) RaffleInterval() time.Duration {
	return time.Duration(self.RaffleIntervalSecs) * time.Second
}

func (self Config) VRFKeyHash() common.Hash {
	return common.HexToHash(self.VRFKeyHashHex)
}
