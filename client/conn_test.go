package client

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// 假服务端：验证 join 请求并回放初始快照
func TestConnectSendsJoinAndSeedsWorld(t *testing.T) {
	upgrader := websocket.Upgrader{}
	joinReq := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer ws.Close()
		_, msg, err := ws.ReadMessage()
		if err != nil {
			return
		}
		joinReq <- msg
		_ = ws.WriteMessage(websocket.TextMessage, []byte(joinResultJSON))
		// 保持连接打开直到客户端退出
		_, _, _ = ws.ReadMessage()
	}))
	defer srv.Close()

	log := nopLog()
	metrics := &Metrics{}
	world := NewWorld(&fakeLoader{}, log)
	camera := &Camera{}
	canvas := NewCanvas(800, 600)
	renderer := NewRenderer(canvas, image.NewRGBA(image.Rect(0, 0, 2048, 2048)), world, camera, metrics, log)
	conn := NewConn("ws"+strings.TrimPrefix(srv.URL, "http"), "alice", metrics, log)
	sess := NewSession(conn, world, camera, renderer, metrics, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sess.Run(ctx)
		close(done)
	}()

	select {
	case msg := <-joinReq:
		var jm JoinMessage
		if err := json.Unmarshal(msg, &jm); err != nil {
			t.Fatalf("join request not json: %v", err)
		}
		if jm.Action != "join" || jm.Username != "alice" {
			t.Fatalf("join request = %+v", jm)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("join request never arrived")
	}

	// 快照应用后必然触发一次重绘
	waitFor(t, "snapshot render", func() bool {
		return atomic.LoadInt64(&metrics.Renders) > 0
	})

	cancel()
	<-done

	// 事件循环已退出，可以安全检视世界镜像
	if world.LocalID != "p1" {
		t.Fatalf("localID = %q, want p1", world.LocalID)
	}
	p := world.Players["p1"]
	if p == nil || p.X != 1000 || p.Y != 1000 || p.Name != "alice" {
		t.Fatalf("p1 = %+v", p)
	}
	if camera.X != 600 || camera.Y != 700 {
		t.Fatalf("camera = (%v,%v), want (600,700)", camera.X, camera.Y)
	}
	if conn.State() != StateDisconnected {
		t.Fatalf("state = %v, want StateDisconnected after Close", conn.State())
	}
}

func TestSendWhileNotReadyIsSkipped(t *testing.T) {
	metrics := &Metrics{}
	conn := NewConn("ws://127.0.0.1:1/ws", "alice", metrics, nopLog())

	// 未连接：指令被跳过而不是排队或报错
	conn.SendMove(DirNorth)
	conn.SendStop()

	if got := atomic.LoadInt64(&metrics.CommandsSent); got != 0 {
		t.Fatalf("commands sent = %d, want 0", got)
	}
	conn.Close()
}

func TestCloseCancelsPendingRetry(t *testing.T) {
	metrics := &Metrics{}
	conn := NewConn("ws://127.0.0.1:1/ws", "alice", metrics, nopLog())
	conn.SetReconnectDelay(50 * time.Millisecond)

	// 拨号必然失败，进入 Disconnected 并调度一次重试
	conn.Connect()
	if got := atomic.LoadInt64(&metrics.Reconnects); got != 1 {
		t.Fatalf("reconnects = %d, want 1", got)
	}

	conn.Close()
	before := atomic.LoadInt64(&metrics.Reconnects)
	time.Sleep(120 * time.Millisecond)
	if got := atomic.LoadInt64(&metrics.Reconnects); got != before {
		t.Fatal("retry fired after Close")
	}
}

func TestMarkJoinedOnlyFromConnected(t *testing.T) {
	conn := NewConn("ws://127.0.0.1:1/ws", "alice", &Metrics{}, nopLog())
	conn.MarkJoined()
	if conn.State() != StateDisconnected {
		t.Fatalf("state = %v, want StateDisconnected", conn.State())
	}
}
