package websocket

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newRunningHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(testLogger())
	go hub.Run()
	return hub
}

func waitForConnections(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.GetConnectionsCount() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, want, hub.GetConnectionsCount())
}

func TestHubSendToUserReachesAllConnections(t *testing.T) {
	hub := newRunningHub(t)
	defer hub.Shutdown()

	phone := &Client{UserID: "u1", Send: make(chan Message, 1)}
	web := &Client{UserID: "u1", Send: make(chan Message, 1)}
	other := &Client{UserID: "u2", Send: make(chan Message, 1)}
	hub.Register(phone)
	hub.Register(web)
	hub.Register(other)
	waitForConnections(t, hub, 3)

	hub.SendToUser("u1", Message{Type: "notification"})

	assert.Len(t, phone.Send, 1)
	assert.Len(t, web.Send, 1)
	assert.Len(t, other.Send, 0)
}

func TestHubUnregisterRemovesConnection(t *testing.T) {
	hub := newRunningHub(t)
	defer hub.Shutdown()

	client := &Client{UserID: "u1", Send: make(chan Message, 1)}
	hub.Register(client)
	waitForConnections(t, hub, 1)

	hub.Unregister(client)
	waitForConnections(t, hub, 0)

	// Канал закрыт, отправка пользователю уже никуда не идёт
	hub.SendToUser("u1", Message{Type: "notification"})
}

// Pump-горутины обрывающихся соединений зовут Unregister и после
// остановки хаба; они не должны виснуть на каналах без читателя.
func TestHubRegisterUnregisterAfterShutdownDoNotBlock(t *testing.T) {
	hub := NewHub(testLogger())
	go hub.Run()
	hub.Shutdown()

	finished := make(chan struct{})
	go func() {
		client := &Client{UserID: "u1", Send: make(chan Message, 1)}
		hub.Register(client)
		hub.Unregister(client)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("register/unregister blocked after hub shutdown")
	}
}
