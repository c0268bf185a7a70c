package client

import (
	"image"

	"go.uber.org/zap"
)

// Loader 异步图像加载原语：完成（或失败）时回调，不阻塞调用者
type Loader interface {
	Load(ref string, done func(image.Image, error))
}

// World 本地世界镜像：玩家与头像定义的权威副本，仅由入站协议消息驱动变更。
// 全部变更发生在会话事件循环协程内，无需加锁
type World struct {
	LocalID PlayerID
	Players map[PlayerID]*Player
	Avatars map[string]*Avatar

	images    map[string]image.Image // 帧引用 -> 已就绪的图像
	requested map[string]bool        // 已发起加载的引用（幂等保护，绝不重复加载）

	loader  Loader
	onImage func(ref string, img image.Image)
	log     *zap.SugaredLogger
}

// NewWorld 创建空的世界镜像
func NewWorld(loader Loader, log *zap.SugaredLogger) *World {
	return &World{
		Players:   make(map[PlayerID]*Player),
		Avatars:   make(map[string]*Avatar),
		images:    make(map[string]image.Image),
		requested: make(map[string]bool),
		loader:    loader,
		log:       log,
	}
}

// OnImage 注册帧图像加载完成的回调。加载在独立协程结束，
// 会话用它把完成事件接回事件循环后再调用 SetImage
func (w *World) OnImage(fn func(ref string, img image.Image)) {
	w.onImage = fn
}

// ApplySnapshot 应用 join 成功时的全量初始快照：整体替换玩家与头像映射。
// 帧图像缓存按引用保留，重复引用不会二次加载
func (w *World) ApplySnapshot(localID PlayerID, players map[PlayerID]PlayerState, avatars map[string]AvatarPayload) {
	w.LocalID = localID
	w.Players = make(map[PlayerID]*Player, len(players))
	w.Avatars = make(map[string]*Avatar, len(avatars))
	for id, s := range players {
		w.upsertPlayer(id, s)
	}
	for _, a := range avatars {
		w.storeAvatar(a)
	}
	w.log.Debugf("snapshot applied: %d players, %d avatars", len(w.Players), len(w.Avatars))
}

// ApplyPlayerJoined 插入/覆盖单个玩家及其头像定义
func (w *World) ApplyPlayerJoined(p PlayerState, a AvatarPayload) {
	if p.ID == "" {
		w.log.Warnf("player-joined without id, dropped")
		return
	}
	w.upsertPlayer(p.ID, p)
	w.storeAvatar(a)
	w.log.Debugf("player joined: %s", p.ID)
}

// ApplyPlayersMoved 按字段浅合并部分玩家的更新；
// 未携带的字段保持原值，未提及的玩家不受影响
func (w *World) ApplyPlayersMoved(updates map[PlayerID]PlayerState) {
	for id, s := range updates {
		w.upsertPlayer(id, s)
	}
	w.log.Debugf("players moved: %d updated", len(updates))
}

// ApplyPlayerLeft 移除玩家；id 不存在时为 no-op
func (w *World) ApplyPlayerLeft(id PlayerID) {
	if _, ok := w.Players[id]; !ok {
		return
	}
	delete(w.Players, id)
	w.log.Debugf("player left: %s", id)
}

// Local 返回本地玩家；尚未加入或已被移除时返回 nil
func (w *World) Local() *Player {
	if w.LocalID == "" {
		return nil
	}
	return w.Players[w.LocalID]
}

// SetImage 记录加载完成的帧图像（由会话事件循环调用）
func (w *World) SetImage(ref string, img image.Image) {
	w.images[ref] = img
}

// FrameImage 解析指定头像在给定朝向与帧序号下应绘制的图像。
// west 映射为 east 的帧并要求水平镜像；头像缺失、帧越界或图像未就绪时
// 图像为 nil（调用方跳过该精灵，不视为错误）
func (w *World) FrameImage(name string, facing Direction, frame int) (image.Image, bool) {
	av, ok := w.Avatars[name]
	if !ok {
		return nil, false
	}
	mirror := false
	switch facing {
	case DirWest:
		facing, mirror = DirEast, true
	case DirNone:
		facing = DirSouth
	}
	refs := av.Frames[facing]
	if frame < 0 || frame >= len(refs) {
		return nil, mirror
	}
	return w.images[refs[frame]], mirror
}

func (w *World) upsertPlayer(id PlayerID, s PlayerState) {
	p, ok := w.Players[id]
	if !ok {
		p = &Player{ID: id, Facing: DirSouth}
		w.Players[id] = p
	}
	if s.Name != "" {
		p.Name = s.Name
	}
	if s.X != nil {
		p.X = *s.X
	}
	if s.Y != nil {
		p.Y = *s.Y
	}
	if s.Facing != nil {
		if d := ParseDirection(*s.Facing); d != DirNone {
			p.Facing = d
		}
	}
	if s.Avatar != nil {
		p.Avatar = *s.Avatar
	}
	if s.Frame != nil {
		p.Frame = *s.Frame
	}
}

// storeAvatar 登记头像定义并触发帧图像加载。定义一经载入即不可变：
// 同名定义再次出现时整体跳过（存在性检查保证幂等）
func (w *World) storeAvatar(a AvatarPayload) {
	if a.Name == "" {
		return
	}
	if _, ok := w.Avatars[a.Name]; ok {
		return
	}
	av := &Avatar{Name: a.Name, Frames: make(map[Direction][]string)}
	for dir, refs := range a.Frames {
		d := ParseDirection(dir)
		if d == DirNone || d == DirWest {
			// west 不存储，渲染时镜像 east
			continue
		}
		av.Frames[d] = refs
		for _, ref := range refs {
			w.loadImage(a.Name, ref)
		}
	}
	w.Avatars[a.Name] = av
}

func (w *World) loadImage(avatar, ref string) {
	if w.requested[ref] {
		return
	}
	w.requested[ref] = true
	w.loader.Load(ref, func(img image.Image, err error) {
		if err != nil {
			w.log.Warnf("load frame for avatar %s: %v", avatar, err)
			return
		}
		if w.onImage != nil {
			w.onImage(ref, img)
		}
	})
}
