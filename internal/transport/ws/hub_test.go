package ws

import (
	"encoding/json"
	"testing"
	"time"
)

func waitForMessage(t *testing.T, ch chan []byte) *Message {
	t.Helper()
	select {
	case data := <-ch:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal hub message: %v", err)
		}
		return &msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for hub message")
		return nil
	}
}

func TestBroadcastReachesSessionConnections(t *testing.T) {
	hub := NewHub()

	conn1 := &Connection{SessionID: "s1", Send: make(chan []byte, 4), Hub: hub}
	conn2 := &Connection{SessionID: "s1", Send: make(chan []byte, 4), Hub: hub}
	other := &Connection{SessionID: "s2", Send: make(chan []byte, 4), Hub: hub}
	hub.Register(conn1)
	hub.Register(conn2)
	hub.Register(other)

	hub.BroadcastToSession("s1", string(MsgQuestion), map[string]string{"question": "Do you practice?"})

	for _, conn := range []*Connection{conn1, conn2} {
		msg := waitForMessage(t, conn.Send)
		if msg.Type != MsgQuestion {
			t.Errorf("message type = %q, want %q", msg.Type, MsgQuestion)
		}
		var payload map[string]string
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if payload["question"] != "Do you practice?" {
			t.Errorf("payload = %v", payload)
		}
	}

	select {
	case data := <-other.Send:
		t.Errorf("other session received message: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	hub := NewHub()

	conn := &Connection{SessionID: "s1", Send: make(chan []byte, 4), Hub: hub}
	hub.Register(conn)
	hub.Unregister(conn)

	select {
	case _, open := <-conn.Send:
		if open {
			t.Error("Send delivered a message instead of closing")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Send to close")
	}
}

func TestDisconnectSessionClosesAllConnections(t *testing.T) {
	hub := NewHub()

	conn1 := &Connection{SessionID: "s1", Send: make(chan []byte, 4), Hub: hub}
	conn2 := &Connection{SessionID: "s1", Send: make(chan []byte, 4), Hub: hub}
	hub.Register(conn1)
	hub.Register(conn2)

	// Let the hub goroutine drain both registrations before disconnecting.
	hub.BroadcastToSession("s1", string(MsgQuestion), "sync")
	waitForMessage(t, conn1.Send)
	waitForMessage(t, conn2.Send)

	hub.DisconnectSession("s1")

	for _, conn := range []*Connection{conn1, conn2} {
		select {
		case _, open := <-conn.Send:
			if open {
				t.Error("Send delivered a message instead of closing")
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for Send to close")
		}
	}
}
