package utils

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/crypto/sha3"
)

const DefaultSecretSize = 48

func HexToUint64(hex string) (uint64, error) {
	return strconv.ParseUint(RemoveHexPrefix(hex), 16, 64)
}

func RemoveHexPrefix(hex string) string {
	if len(hex) >= 2 && hex[0:2] == "0x" {
		return hex[2:]
	}
	return hex
}

func StringToHash(s string) (common.Hash, error) {
	stripped := RemoveHexPrefix(s)
	if len(stripped) != common.HashLength*2 {
		return common.Hash{}, fmt.Errorf("%v is not a valid 32 byte hash", s)
	}
	if _, err := hex.DecodeString(stripped); err != nil {
		return common.Hash{}, fmt.Errorf("%v is not a valid 32 byte hash", s)
	}
	return common.HexToHash(stripped), nil
}

func EncodeTxToHex(tx *types.Transaction) (string, error) {
	rlped, err := rlp.EncodeToBytes(tx)
	if err != nil {
		return "", err
	}
	return "0x" + common.Bytes2Hex(rlped), nil
}

// NewBytes32ID returns a dashless uuid, the 32 character ID format
// used for correlation handles throughout the node.
func NewBytes32ID() string {
	return strings.Replace(uuid.NewV4().String(), "-", "", -1)
}

func NewSecret(n int) string {
	return strings.Replace(uuid.NewV4().String()+uuid.NewV4().String(), "-", "", -1)[0:n]
}

func HashedSecret(accessKey, secret string) string {
	hasher := sha3.New256()
	hasher.Write([]byte(fmt.Sprintf("v0-%s-%s", accessKey, secret)))
	return hex.EncodeToString(hasher.Sum(nil))
}
