package client

import (
	"context"
	"image"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Network 会话所需的网络层能力，由 Conn 实现；测试中可替换为假实现
type Network interface {
	Connect()
	Close()
	Inbound() <-chan []byte
	SendMove(Direction)
	SendStop()
	MarkJoined()
}

type uiEventKind int

const (
	evKeyDown uiEventKind = iota
	evKeyUp
	evRecenter
	evDrag
	evClick
)

type uiEvent struct {
	kind   uiEventKind
	dir    Direction
	dx, dy float64
}

type loadedImage struct {
	ref string
	img image.Image
}

// Session 把连接、世界镜像、相机、按键与渲染串成单一事件循环。
// 所有可变状态只在 Run 所在协程中被修改：入站消息先完成合并，
// 再做回中与重绘，顺序天然成立
type Session struct {
	net      Network
	world    *World
	camera   *Camera
	keys     Keys
	renderer *Renderer
	metrics  *Metrics
	log      *zap.SugaredLogger

	uiEvents chan uiEvent
	images   chan loadedImage

	repeat         *time.Ticker // Moving 状态下的指令重复定时器，Idle 为 nil
	repeatInterval int64        // 纳秒，原子读写（调试端点可热更新）
}

// NewSession 组装会话；各组件由调用方构造并按引用传入，不使用包级全局
func NewSession(net Network, w *World, c *Camera, r *Renderer, m *Metrics, log *zap.SugaredLogger) *Session {
	s := &Session{
		net:      net,
		world:    w,
		camera:   c,
		renderer: r,
		metrics:  m,
		log:      log,
		uiEvents: make(chan uiEvent, 64),
		images:   make(chan loadedImage, 64),
	}
	atomic.StoreInt64(&s.repeatInterval, int64(100*time.Millisecond))
	w.OnImage(func(ref string, img image.Image) {
		s.images <- loadedImage{ref: ref, img: img}
	})
	return s
}

// KeyDown 移动键按下事件入口（任意协程可调用，入队到事件循环）
func (s *Session) KeyDown(d Direction) { s.post(uiEvent{kind: evKeyDown, dir: d}) }

// KeyUp 移动键松开事件入口
func (s *Session) KeyUp(d Direction) { s.post(uiEvent{kind: evKeyUp, dir: d}) }

// Recenter 非移动键入口：相机回中到本地玩家并重绘，不影响按键集合
func (s *Session) Recenter() { s.post(uiEvent{kind: evRecenter}) }

// DragBy 指针拖拽平移入口
func (s *Session) DragBy(dx, dy float64) { s.post(uiEvent{kind: evDrag, dx: dx, dy: dy}) }

// ClickAt 指针点击入口：换算为世界坐标记录（调试用途）
func (s *Session) ClickAt(x, y float64) { s.post(uiEvent{kind: evClick, dx: x, dy: y}) }

func (s *Session) post(ev uiEvent) {
	select {
	case s.uiEvents <- ev:
	default:
		// 事件循环拥塞时丢弃输入，避免把 UI 线程卡住
		s.log.Warnf("ui event queue full, dropped kind=%d", ev.kind)
	}
}

// RepeatInterval 当前移动指令重复周期
func (s *Session) RepeatInterval() time.Duration {
	return time.Duration(atomic.LoadInt64(&s.repeatInterval))
}

// SetRepeatInterval 热更新重复周期（只影响下一次 Idle→Moving 启动的定时器）
func (s *Session) SetRepeatInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	atomic.StoreInt64(&s.repeatInterval, int64(d))
}

// Run 驱动事件循环直到 ctx 结束：入站消息、UI 事件、指令重复定时
// 与图像加载完成。重连由 Conn 的定时任务自行驱动
func (s *Session) Run(ctx context.Context) {
	s.net.Connect()
	for {
		select {
		case <-ctx.Done():
			s.stopRepeat()
			s.net.Close()
			return
		case payload := <-s.net.Inbound():
			s.handleMessage(payload)
		case ev := <-s.uiEvents:
			s.handleUI(ev)
		case <-s.repeatTick():
			s.onRepeat()
		case li := <-s.images:
			s.world.SetImage(li.ref, li.img)
			s.metrics.IncImage()
			s.renderer.Draw()
		}
	}
}

// handleMessage 解析并应用一条入站消息。坏消息只丢弃告警，绝不中断会话
func (s *Session) handleMessage(payload []byte) {
	msg, err := DecodeMessage(payload)
	if err != nil {
		s.metrics.IncDropped()
		s.log.Warnf("drop inbound message: %v", err)
		return
	}
	s.metrics.IncDecoded()

	switch m := msg.(type) {
	case *JoinResult:
		if !m.Success {
			// 仅记录，会话保持 Connected，不自动重试 join
			s.log.Errorf("join rejected: %s", m.Error)
			return
		}
		s.world.ApplySnapshot(m.PlayerID, m.Players, m.Avatars)
		s.net.MarkJoined()
		s.log.Infof("joined as %s (%d players)", m.PlayerID, len(s.world.Players))
		s.recenter()
		s.renderer.Draw()
	case *PlayerJoined:
		s.world.ApplyPlayerJoined(m.Player, m.Avatar)
		s.renderer.Draw()
	case *PlayersMoved:
		s.world.ApplyPlayersMoved(m.Players)
		s.recenter()
		s.renderer.Draw()
	case *PlayerLeft:
		s.world.ApplyPlayerLeft(m.PlayerID)
		s.renderer.Draw()
	}
}

func (s *Session) handleUI(ev uiEvent) {
	switch ev.kind {
	case evKeyDown:
		if s.keys.Press(ev.dir) {
			// Idle→Moving：立即发送一次，再启动重复定时器。
			// 后续按键只扩充集合，不重启定时器也不补发
			s.net.SendMove(ev.dir)
			s.startRepeat()
		}
	case evKeyUp:
		if s.keys.Release(ev.dir) {
			// Moving→Idle：停表并发送唯一一条 stop
			s.stopRepeat()
			s.net.SendStop()
		}
	case evRecenter:
		s.recenter()
		s.renderer.Draw()
	case evDrag:
		vw, vh := s.renderer.Viewport()
		ww, wh := s.renderer.WorldSize()
		s.camera.PanBy(ev.dx, ev.dy, ww, wh, vw, vh)
		s.renderer.Draw()
	case evClick:
		wx, wy := s.camera.ScreenToWorld(ev.dx, ev.dy)
		s.log.Debugf("click at world (%.0f,%.0f)", wx, wy)
	}
}

// onRepeat 每个重复周期补发一次当前方向（最早仍按住的键）
func (s *Session) onRepeat() {
	if d := s.keys.Active(); d != DirNone {
		s.net.SendMove(d)
	}
}

// recenter 相机对准本地玩家；尚未 join 时为 no-op
func (s *Session) recenter() {
	p := s.world.Local()
	if p == nil {
		return
	}
	vw, vh := s.renderer.Viewport()
	ww, wh := s.renderer.WorldSize()
	s.camera.CenterOn(p.X, p.Y, ww, wh, vw, vh)
}

func (s *Session) startRepeat() {
	if s.repeat != nil {
		return
	}
	s.repeat = time.NewTicker(s.RepeatInterval())
}

func (s *Session) stopRepeat() {
	if s.repeat == nil {
		return
	}
	s.repeat.Stop()
	s.repeat = nil
}

// repeatTick Moving 状态下返回定时通道，Idle 返回 nil（select 中永不命中）
func (s *Session) repeatTick() <-chan time.Time {
	if s.repeat == nil {
		return nil
	}
	return s.repeat.C
}
