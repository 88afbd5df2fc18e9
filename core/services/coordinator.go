package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"RaffleOracle/core/utils"
)

// RandomnessRequestSpec carries everything the coordinator needs to
// produce one batch of random words for this node.
type RandomnessRequestSpec struct {
	KeyHash              common.Hash `json:"keyHash"`
	SubscriptionID       uint64      `json:"subId"`
	RequestConfirmations uint32      `json:"requestConfirmations"`
	CallbackGasLimit     uint64      `json:"callbackGasLimit"`
	NumWords             uint32      `json:"numWords"`
	NativePayment        bool        `json:"nativePayment"`
}

// Coordinator is the outbound half of the randomness exchange. The
// request identifier is returned synchronously; the words arrive later
// on the authenticated callback endpoint.
type Coordinator interface {
	RequestRandomWords(spec RandomnessRequestSpec) (common.Hash, error)
}

type HTTPCoordinator struct {
	URL string
}

func NewHTTPCoordinator(url string) *HTTPCoordinator {
	return &HTTPCoordinator{URL: url}
}

type coordinatorResponse struct {
	RequestID string `json:"requestId"`
}

func (self *HTTPCoordinator) RequestRandomWords(spec RandomnessRequestSpec) (common.Hash, error) {
	body, err := json.Marshal(spec)
	if err != nil {
		return common.Hash{}, err
	}
	response, err := http.Post(self.URL+"/v2/requests", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "posting randomness request")
	}
	defer response.Body.Close()
	respBody, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return common.Hash{}, err
	}
	if response.StatusCode >= 300 {
		return common.Hash{}, fmt.Errorf("coordinator rejected request: %v", string(respBody))
	}
	var parsed coordinatorResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return common.Hash{}, errors.Wrap(err, "decoding coordinator response")
	}
	requestID, err := utils.StringToHash(parsed.RequestID)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "coordinator returned malformed request id")
	}
	return requestID, nil
}
