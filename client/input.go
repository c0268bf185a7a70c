package client

// Keys 当前按下的移动键集合，保持插入顺序。
// 多键同时按下时，重复指令始终取最早仍被按住的键的方向
//（保留“先插入者优先”语义，不引入优先级策略，见 DESIGN.md）
type Keys struct {
	held []Direction
}

// Press 记录按下。返回集合是否由空变为非空（Idle→Moving 转换点）。
// 同一键的重复 key-down 为 no-op
func (k *Keys) Press(d Direction) bool {
	if d == DirNone {
		return false
	}
	for _, h := range k.held {
		if h == d {
			return false
		}
	}
	k.held = append(k.held, d)
	return len(k.held) == 1
}

// Release 记录松开。返回集合是否因此变空（Moving→Idle 转换点）。
// 未按下的键松开为 no-op
func (k *Keys) Release(d Direction) bool {
	for i, h := range k.held {
		if h == d {
			k.held = append(k.held[:i], k.held[i+1:]...)
			return len(k.held) == 0
		}
	}
	return false
}

// Active 返回重复定时器当前应发送的方向：最早插入且仍按住的键；
// 集合为空时返回 DirNone
func (k *Keys) Active() Direction {
	if len(k.held) == 0 {
		return DirNone
	}
	return k.held[0]
}

// Empty 集合是否为空（Idle 状态）
func (k *Keys) Empty() bool {
	return len(k.held) == 0
}
