package services

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"gopkg.in/h2non/gock.v1"
)

func TestHTTPCoordinatorRequestRandomWords(t *testing.T) {
	defer gock.Off()

	requestID := "0x000000000000000000000000000000000000000000000000000000000000002a"
	gock.New("https://coordinator.example.com").
		Post("/v2/requests").
		JSON(map[string]interface{}{
			"keyHash":              "0x79d3d8832d904592c0bf9818b621522c988bb8b0b05bb9af19aeecc5b9c806ec",
			"subId":                7,
			"requestConfirmations": 3,
			"callbackGasLimit":     100000,
			"numWords":             1,
			"nativePayment":        false,
		}).
		Reply(200).
		JSON(map[string]string{"requestId": requestID})

	coordinator := NewHTTPCoordinator("https://coordinator.example.com")
	hash, err := coordinator.RequestRandomWords(RandomnessRequestSpec{
		KeyHash:              common.HexToHash("0x79d3d8832d904592c0bf9818b621522c988bb8b0b05bb9af19aeecc5b9c806ec"),
		SubscriptionID:       7,
		RequestConfirmations: 3,
		CallbackGasLimit:     100000,
		NumWords:             1,
	})
	assert.Nil(t, err)
	assert.Equal(t, common.HexToHash(requestID), hash)
	assert.True(t, gock.IsDone())
}

func TestHTTPCoordinatorRejection(t *testing.T) {
	defer gock.Off()

	gock.New("https://coordinator.example.com").
		Post("/v2/requests").
		Reply(429).
		JSON(map[string]string{"error": "subscription exhausted"})

	coordinator := NewHTTPCoordinator("https://coordinator.example.com")
	_, err := coordinator.RequestRandomWords(RandomnessRequestSpec{NumWords: 1})
	assert.Error(t, err)
}

func TestHTTPCoordinatorMalformedRequestID(t *testing.T) {
	defer gock.Off()

	gock.New("https://coordinator.example.com").
		Post("/v2/requests").
		Reply(200).
		JSON(map[string]string{"requestId": "not-a-hash"})

	coordinator := NewHTTPCoordinator("https://coordinator.example.com")
	_, err := coordinator.RequestRandomWords(RandomnessRequestSpec{NumWords: 1})
	assert.Error(t, err)
}
