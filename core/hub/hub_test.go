package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"RaffleOracle/core/store/models"
)

func TestHubBroadcastsToSubscribers(t *testing.T) {
	eventHub := NewHub()
	go eventHub.Run()
	defer eventHub.Stop()

	server := httptest.NewServer(http.HandlerFunc(eventHub.ServeWS))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.Nil(t, err)
	defer conn.Close()

	// registration happens just after the upgrade handshake completes
	time.Sleep(100 * time.Millisecond)
	eventHub.Notify(models.Event{
		Name: models.EventWinnerPicked,
		Data: []byte(`{"winner":"0xaa"}`),
	})

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg wsMessage
	assert.Nil(t, conn.ReadJSON(&msg))
	assert.Equal(t, models.EventWinnerPicked, msg.Event)
	assert.Equal(t, `{"winner":"0xaa"}`, string(msg.Data))
}

func TestHubNotifyNeverBlocks(t *testing.T) {
	eventHub := NewHub()
	// no Run loop draining; fill past capacity and ensure Notify returns
	for i := 0; i < 300; i++ {
		eventHub.Notify(models.Event{Name: models.EventEntrantAdmitted, Data: []byte(`{}`)})
	}
}
