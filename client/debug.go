package client

import (
	"encoding/json"
	"net/http"
	"time"
)

// NewDebugMux 构建调试用 HTTP 路由：运行指标、参数热更新与健康检查。
// GET /metrics          返回指标快照
// GET /config           返回当前运行参数
// POST /config          以 JSON 载荷更新部分字段
// GET /healthz          健康检查
func NewDebugMux(s *Session, c *Conn, m *Metrics) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"state":   int(c.State()),
			"metrics": m.Snapshot(),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	})

	mux.HandleFunc("/config", func(w http.ResponseWriter, r *http.Request) {
		type cfg struct {
			ReconnectDelayMs *int `json:"reconnectDelayMs,omitempty"`
			RepeatIntervalMs *int `json:"repeatIntervalMs,omitempty"`
		}
		switch r.Method {
		case http.MethodGet:
			rd := int(c.ReconnectDelay() / time.Millisecond)
			ri := int(s.RepeatInterval() / time.Millisecond)
			cur := cfg{ReconnectDelayMs: &rd, RepeatIntervalMs: &ri}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(cur)
		case http.MethodPost:
			var body cfg
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			if body.ReconnectDelayMs != nil {
				c.SetReconnectDelay(time.Duration(*body.ReconnectDelayMs) * time.Millisecond)
			}
			if body.RepeatIntervalMs != nil {
				s.SetRepeatInterval(time.Duration(*body.RepeatIntervalMs) * time.Millisecond)
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}
