package client

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg" // 注册 JPEG 解码器
	_ "image/png"  // 注册 PNG 解码器
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ImageLoader 帧图像加载器：支持 data: URI（内联 base64）与 http(s) URL
// 两类引用。加载在独立协程完成，结束后触发回调（火发即忘）
type ImageLoader struct {
	client *http.Client
	log    *zap.SugaredLogger
}

// NewImageLoader 创建加载器
func NewImageLoader(log *zap.SugaredLogger) *ImageLoader {
	return &ImageLoader{
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// Load 异步加载一个帧引用，完成时回调（img 与 err 互斥）
func (l *ImageLoader) Load(ref string, done func(image.Image, error)) {
	go func() {
		img, err := l.fetch(ref)
		done(img, err)
	}()
}

func (l *ImageLoader) fetch(ref string) (image.Image, error) {
	if strings.HasPrefix(ref, "data:") {
		idx := strings.Index(ref, "base64,")
		if idx < 0 {
			return nil, fmt.Errorf("unsupported data uri")
		}
		raw, err := base64.StdEncoding.DecodeString(ref[idx+len("base64,"):])
		if err != nil {
			return nil, fmt.Errorf("decode data uri: %w", err)
		}
		img, _, err := image.Decode(bytes.NewReader(raw))
		return img, err
	}

	resp, err := l.client.Get(ref)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", ref, resp.StatusCode)
	}
	img, _, err := image.Decode(resp.Body)
	return img, err
}

// LoadWorldImage 从本地文件解码世界背景图
func LoadWorldImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}
