package client

// PlayerID 表示玩家唯一标识（由服务端在 join 确认中分配）
type PlayerID string

// Direction 朝向/移动方向的规范枚举。
// 协议中同时存在 up/down/left/right 与 north/south/east/west 两套写法，
// 入站时统一归一到本枚举（约定 left≡west、right≡east）
type Direction int

const (
	DirNone Direction = iota
	DirNorth
	DirSouth
	DirEast
	DirWest
)

// ParseDirection 解析协议中的方向词汇；无法识别时返回 DirNone
func ParseDirection(s string) Direction {
	switch s {
	case "up", "north":
		return DirNorth
	case "down", "south":
		return DirSouth
	case "right", "east":
		return DirEast
	case "left", "west":
		return DirWest
	default:
		return DirNone
	}
}

// Command 返回出站 move 指令使用的写法（up/down/left/right）
func (d Direction) Command() string {
	switch d {
	case DirNorth:
		return "up"
	case DirSouth:
		return "down"
	case DirEast:
		return "right"
	case DirWest:
		return "left"
	default:
		return ""
	}
}

// Facing 返回规范朝向写法（north/south/east/west）
func (d Direction) Facing() string {
	switch d {
	case DirNorth:
		return "north"
	case DirSouth:
		return "south"
	case DirEast:
		return "east"
	case DirWest:
		return "west"
	default:
		return ""
	}
}

// Player 本地镜像中的玩家实体。服务端权威：位置与帧序号只随入站消息变化，
// 客户端不做预测或插值
type Player struct {
	ID     PlayerID
	Name   string
	X, Y   float64
	Facing Direction
	Avatar string
	Frame  int
}

// Avatar 具名的方向帧序列集合。只存 north/south/east 三向，
// west 在渲染时由 east 水平镜像得到，从不存储
type Avatar struct {
	Name   string
	Frames map[Direction][]string // 朝向 -> 帧图像引用（data URI 或 URL）
}
