package store

import (
	"math/big"
	"os"
	"path"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"RaffleOracle/core/utils"
)

func TestConfigDefaults(t *testing.T) {
	config := NewConfig()
	assert.Equal(t, "6688", config.Port)
	assert.Equal(t, big.NewInt(100000000000000000), config.EntranceFeeWei)
	assert.Equal(t, uint64(30), config.RaffleIntervalSecs)
	assert.Equal(t, uint64(3), config.VRFRequestConfirmations)
	assert.Equal(t, uint64(100000), config.VRFCallbackGasLimit)
}

func TestConfigGeneratesOracleCredentials(t *testing.T) {
	os.Unsetenv("ORACLE_ACCESS_KEY")
	os.Unsetenv("ORACLE_SECRET")

	config := NewConfig()
	assert.Len(t, config.OracleAccessKey, 32)
	assert.Len(t, config.OracleSecret, utils.DefaultSecretSize)

	// each boot without explicit credentials mints a fresh pair
	other := NewConfig()
	assert.NotEqual(t, config.OracleSecret, other.OracleSecret)
}

func TestConfigKeysDir(t *testing.T) {
	config := Config{RootDir: "/tmp/raffle"}
	assert.Equal(t, path.Join("/tmp/raffle", "keys"), config.KeysDir())
}

func TestConfigRaffleInterval(t *testing.T) {
	config := Config{RaffleIntervalSecs: 30}
	assert.Equal(t, 30*time.Second, config.RaffleInterval())
}

func TestConfigVRFKeyHash(t *testing.T) {
	hex := "0x79d3d8832d904592c0bf9818b621522c988bb8b0b05bb9af19aeecc5b9c806ec"
	config := Config{VRFKeyHashHex: hex}
	assert.Equal(t, common.HexToHash(hex), config.VRFKeyHash())
}
