package client

import (
	"sync/atomic"
)

// Metrics 记录客户端运行期的关键指标（用于调试端点输出）
type Metrics struct {
	MessagesDecoded int64 // 成功解析的入站消息数
	MessagesDropped int64 // 因解析失败或拥塞被丢弃的入站消息数
	CommandsSent    int64 // 已发出的 move/stop 指令数
	Reconnects      int64 // 已调度的重连次数
	Renders         int64 // 重绘次数
	ImagesLoaded    int64 // 加载完成的头像帧数
}

func (m *Metrics) IncDecoded()   { atomic.AddInt64(&m.MessagesDecoded, 1) }
func (m *Metrics) IncDropped()   { atomic.AddInt64(&m.MessagesDropped, 1) }
func (m *Metrics) IncCommand()   { atomic.AddInt64(&m.CommandsSent, 1) }
func (m *Metrics) IncReconnect() { atomic.AddInt64(&m.Reconnects, 1) }
func (m *Metrics) IncRender()    { atomic.AddInt64(&m.Renders, 1) }
func (m *Metrics) IncImage()     { atomic.AddInt64(&m.ImagesLoaded, 1) }

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"messages_decoded": atomic.LoadInt64(&m.MessagesDecoded),
		"messages_dropped": atomic.LoadInt64(&m.MessagesDropped),
		"commands_sent":    atomic.LoadInt64(&m.CommandsSent),
		"reconnects":       atomic.LoadInt64(&m.Reconnects),
		"renders":          atomic.LoadInt64(&m.Renders),
		"images_loaded":    atomic.LoadInt64(&m.ImagesLoaded),
	}
}
