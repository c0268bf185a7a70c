package main

import (
	"context"
	"flag"
	"image"
	"net/http"
	"os/signal"
	"syscall"

	"miniview/client"
)

// miniview 入口：连接世界服务器，维护本地状态镜像并驱动视口渲染
func main() {
	var (
		server    = flag.String("server", "ws://localhost:8080/ws", "world server websocket endpoint")
		name      = flag.String("name", "guest", "display name sent in the join request")
		worldFile = flag.String("world", "world.png", "world background image path")
		width     = flag.Int("width", 800, "viewport width in pixels")
		height    = flag.Int("height", 600, "viewport height in pixels")
		debugAddr = flag.String("debug-addr", "127.0.0.1:6060", "debug endpoints listen address")
		logFile   = flag.String("log", "client.log", "log file path")
		logLevel  = flag.String("log-level", "info", "log level: debug/info/warn/error")
	)
	flag.Parse()

	// 使用第三方 zap 日志库写入文件（带滚动）；逐帧追踪由级别门控
	log, err := client.InitLogger(*logFile, *logLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	worldImg, err := client.LoadWorldImage(*worldFile)
	if err != nil {
		// 背景图缺失时退化为空白世界，客户端仍可联机观察状态
		log.Warnf("load world image %s: %v, using blank 2048x2048 world", *worldFile, err)
		worldImg = image.NewRGBA(image.Rect(0, 0, 2048, 2048))
	}

	// 显式装配会话对象图，组件间按引用传递，无包级全局
	metrics := &client.Metrics{}
	world := client.NewWorld(client.NewImageLoader(log), log)
	camera := &client.Camera{}
	canvas := client.NewCanvas(*width, *height)
	renderer := client.NewRenderer(canvas, worldImg, world, camera, metrics, log)
	conn := client.NewConn(*server, *name, metrics, log)
	sess := client.NewSession(conn, world, camera, renderer, metrics, log)

	// 管理与监控接口
	mux := client.NewDebugMux(sess, conn, metrics)
	go func() {
		log.Infof("debug endpoints on http://%s/", *debugAddr)
		if err := http.ListenAndServe(*debugAddr, mux); err != nil {
			log.Warnf("debug listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("miniview connecting to %s as %q", *server, *name)
	sess.Run(ctx)
	log.Info("Shutting down...")
}
