package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// 出站消息动作
const (
	actionJoin = "join"
	actionMove = "move"
	actionStop = "stop"
)

// 入站消息动作
const (
	actionJoinResult   = "join-result"
	actionPlayerJoined = "player-joined"
	actionPlayersMoved = "players-moved"
	actionPlayerLeft   = "player-left"
)

// ErrUnknownAction 入站消息携带无法识别的 action；调用方记录后忽略
var ErrUnknownAction = errors.New("unknown action")

// JoinMessage 出站 join 请求
// 示例：{"action":"join","username":"alice"}
type JoinMessage struct {
	Action   string `json:"action"`
	Username string `json:"username"`
}

// MoveMessage 出站移动指令，direction 取 up/down/left/right
type MoveMessage struct {
	Action    string `json:"action"`
	Direction string `json:"direction"`
}

// StopMessage 出站停止指令
type StopMessage struct {
	Action string `json:"action"`
}

// PlayerState 入站的玩家状态。players-moved 为部分字段合并，
// 用指针区分“字段缺省”与“零值”，缺省字段保持本地原值
type PlayerState struct {
	ID     PlayerID `json:"id,omitempty"`
	Name   string   `json:"username,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Facing *string  `json:"facing,omitempty"`
	Avatar *string  `json:"avatar,omitempty"`
	Frame  *int     `json:"animationFrame,omitempty"`
}

// AvatarPayload 入站的头像定义：三个规范朝向各一段帧引用序列
type AvatarPayload struct {
	Name   string              `json:"name"`
	Frames map[string][]string `json:"frames"`
}

// JoinResult join 请求的确认：成功时携带本地玩家 id 与全量初始快照
type JoinResult struct {
	Action   string                    `json:"action"`
	Success  bool                      `json:"success"`
	PlayerID PlayerID                  `json:"playerId,omitempty"`
	Players  map[PlayerID]PlayerState  `json:"players,omitempty"`
	Avatars  map[string]AvatarPayload  `json:"avatars,omitempty"`
	Error    string                    `json:"error,omitempty"`
}

// PlayerJoined 单个玩家加入：携带该玩家与其头像定义
type PlayerJoined struct {
	Action string        `json:"action"`
	Player PlayerState   `json:"player"`
	Avatar AvatarPayload `json:"avatar"`
}

// PlayersMoved 部分玩家的状态更新（合并语义，见 PlayerState）
type PlayersMoved struct {
	Action  string                   `json:"action"`
	Players map[PlayerID]PlayerState `json:"players"`
}

// PlayerLeft 单个玩家离开
type PlayerLeft struct {
	Action   string   `json:"action"`
	PlayerID PlayerID `json:"playerId"`
}

// envelope 只带判别字段，先解一次再按 action 分发
type envelope struct {
	Action string `json:"action"`
}

// DecodeMessage 解析一条入站文本消息。载荷非法或 action 未知时返回错误，
// 调用方丢弃该消息即可，连接不因单条坏消息中断
func DecodeMessage(data []byte) (any, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	switch env.Action {
	case actionJoinResult:
		var m JoinResult
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Action, err)
		}
		return &m, nil
	case actionPlayerJoined:
		var m PlayerJoined
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Action, err)
		}
		return &m, nil
	case actionPlayersMoved:
		var m PlayersMoved
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Action, err)
		}
		return &m, nil
	case actionPlayerLeft:
		var m PlayerLeft
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Action, err)
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Action)
	}
}

func encodeJoin(username string) ([]byte, error) {
	return json.Marshal(JoinMessage{Action: actionJoin, Username: username})
}

func encodeMove(d Direction) ([]byte, error) {
	if d == DirNone {
		return nil, fmt.Errorf("encode move: no direction")
	}
	return json.Marshal(MoveMessage{Action: actionMove, Direction: d.Command()})
}

func encodeStop() ([]byte, error) {
	return json.Marshal(StopMessage{Action: actionStop})
}
