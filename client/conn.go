package client

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ConnState 连接生命周期状态
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected // 会话已打开并发出 join，尚未收到成功确认
	StateJoined
)

var errNotReady = errors.New("connection not ready")

// Conn 管理到服务器的唯一 WebSocket 会话：拨号、join、守护发送与定时重连。
// 任意原因断开后都会在固定延迟后无条件重试（无退避、无上限），
// 且同一时刻至多存在一个存活的连接尝试与一个待执行的重连任务
type Conn struct {
	url      string
	username string

	mu             sync.Mutex
	ws             *websocket.Conn
	state          ConnState
	retry          *time.Timer
	reconnectDelay time.Duration
	closed         bool

	inbound chan []byte
	metrics *Metrics
	log     *zap.SugaredLogger
}

// NewConn 创建未连接的会话管理器；调用 Connect 才会发起拨号
func NewConn(url, username string, m *Metrics, log *zap.SugaredLogger) *Conn {
	return &Conn{
		url:            url,
		username:       username,
		reconnectDelay: 3000 * time.Millisecond,
		inbound:        make(chan []byte, 256), // 足够缓冲，避免读协程阻塞事件循环
		metrics:        m,
		log:            log,
	}
}

// Inbound 返回入站原始消息通道，由会话事件循环独占消费
func (c *Conn) Inbound() <-chan []byte {
	return c.inbound
}

// State 当前连接状态
func (c *Conn) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect 发起一次连接尝试；已有存活尝试或已关闭时为 no-op。
// 打开成功后立即发送 join 请求并进入 Connected
func (c *Conn) Connect() {
	c.mu.Lock()
	if c.closed || c.state != StateDisconnected {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.mu.Unlock()

	// 每次尝试带独立关联 id，便于在日志中区分交叠的生命周期
	log := c.log.With("attempt", uuid.NewString()[:8])
	ws, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		log.Warnf("dial %s: %v", c.url, err)
		c.scheduleRetry()
		return
	}

	c.mu.Lock()
	c.ws = ws
	c.state = StateConnected
	c.mu.Unlock()
	log.Infof("connected to %s", c.url)

	b, err := encodeJoin(c.username)
	if err == nil {
		err = c.write(b)
	}
	if err != nil {
		// join 发不出去时交给读协程统一走断开路径
		log.Warnf("send join: %v", err)
	}

	go c.readPump(ws, log)
}

// MarkJoined join 确认成功后由会话调用，Connected→Joined
func (c *Conn) MarkJoined() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateConnected {
		c.state = StateJoined
	}
}

// SendMove 发送一次移动指令；连接未就绪时记录日志并跳过（不排队）
func (c *Conn) SendMove(d Direction) {
	b, err := encodeMove(d)
	if err != nil {
		c.log.Warnf("encode move: %v", err)
		return
	}
	if err := c.write(b); err != nil {
		c.log.Debugf("skip move %s: %v", d.Command(), err)
		return
	}
	c.metrics.IncCommand()
}

// SendStop 发送一次停止指令；连接未就绪时记录日志并跳过
func (c *Conn) SendStop() {
	b, err := encodeStop()
	if err != nil {
		c.log.Warnf("encode stop: %v", err)
		return
	}
	if err := c.write(b); err != nil {
		c.log.Debugf("skip stop: %v", err)
		return
	}
	c.metrics.IncCommand()
}

// ReconnectDelay 当前重连延迟
func (c *Conn) ReconnectDelay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconnectDelay
}

// SetReconnectDelay 热更新重连延迟（只影响之后调度的任务）
func (c *Conn) SetReconnectDelay(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.reconnectDelay = d
	c.mu.Unlock()
}

// Close 终止会话并取消待执行的重连任务；之后的 Connect 均为 no-op
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	if c.ws != nil {
		_ = c.ws.Close()
		c.ws = nil
	}
	c.state = StateDisconnected
}

// readPump 持续读取入站消息投递给事件循环；读失败即视为连接断开
func (c *Conn) readPump(ws *websocket.Conn, log *zap.SugaredLogger) {
	defer ws.Close()
	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			log.Infof("connection closed: %v", err)
			c.scheduleRetry()
			return
		}
		select {
		case c.inbound <- payload:
		default:
			// 事件循环拥塞时丢弃，保证读协程不被背压卡住
			c.metrics.IncDropped()
		}
	}
}

// scheduleRetry 断开后的统一入口：复位状态并调度唯一的重连任务。
// 进入 Disconnected 至多调度一个任务，避免交叠的连接尝试
func (c *Conn) scheduleRetry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws != nil {
		_ = c.ws.Close()
		c.ws = nil
	}
	c.state = StateDisconnected
	if c.closed || c.retry != nil {
		return
	}
	delay := c.reconnectDelay
	c.retry = time.AfterFunc(delay, func() {
		c.mu.Lock()
		c.retry = nil
		c.mu.Unlock()
		c.Connect()
	})
	c.metrics.IncReconnect()
	c.log.Infof("disconnected, retrying in %v", delay)
}

// write 串行化底层写入；未就绪时返回 errNotReady
func (c *Conn) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws == nil || c.state < StateConnected {
		return errNotReady
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.ws.WriteMessage(websocket.TextMessage, b)
}
