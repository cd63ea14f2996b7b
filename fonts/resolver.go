// Package fonts 将水印文本映射为可用的字体栈，并按需把字体装进渲染后端。
// 安装是尽力而为的：任何一步失败都不会中断渲染，只会退到备选字体栈，
// 失败原因通过 Resolution 与日志暴露给调用方。
package fonts

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/huuhuybn/miconvert-image-watermark/script"
)

// Installer 是渲染后端侧的字体注册能力。
// 同一（family, weight）重复注册必须无害，幂等或覆盖均可。
type Installer interface {
	Install(family string, weight int, data []byte, index int) error
}

// Resolution 是一次字体解析或安装的结果。
type Resolution struct {
	Value          string        `json:"value"`                    // CSS 风格字体族串
	Stack          []string      `json:"stack"`                    // 与 Value 等价的有序列表
	Script         script.Script `json:"script,omitempty"`         // 识别出的书写系统
	Installed      bool          `json:"installed"`                // 首选字体是否安装成功
	FallbackReason string        `json:"fallbackReason,omitempty"` // 未安装时的原因
}

// Config 是解析器的可注入依赖，零值即可用。
type Config struct {
	Store  *Store       // 安装记录，nil 时共享进程级默认记录
	Client *http.Client // 远程字体下载客户端，nil 用 http.DefaultClient
	Logger *slog.Logger // 告警输出，nil 用 slog.Default
}

// Resolver 负责识别文本书写系统并保证相应字体就位。
type Resolver struct {
	installer Installer
	store     *Store
	client    *http.Client
	logger    *slog.Logger
}

var defaultStore = NewStore()

// NewResolver 以默认配置创建解析器。installer 为 nil 时仅做识别不做安装。
func NewResolver(installer Installer) *Resolver {
	return NewResolverWithConfig(installer, Config{})
}

// NewResolverWithConfig 以显式依赖创建解析器。
func NewResolverWithConfig(installer Installer, cfg Config) *Resolver {
	r := &Resolver{
		installer: installer,
		store:     cfg.Store,
		client:    cfg.Client,
		logger:    cfg.Logger,
	}
	if r.store == nil {
		r.store = defaultStore
	}
	if r.client == nil {
		r.client = http.DefaultClient
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Resolve 识别 text 的书写系统，确保其首选字体已安装，返回可绘制的字体栈。
// userFamily 非空且不同于首选字体时置于栈首。安装失败不是错误：
// 返回值总是携带完整字体栈，原因记录在 FallbackReason 并打告警日志。
func (r *Resolver) Resolve(ctx context.Context, text, userFamily string, weight int) Resolution {
	info := script.Classify(text)
	weight = normalizeWeight(weight)
	res := Resolution{Script: info.Script}

	family := info.FontFamily
	switch {
	case r.store.Seen(family, weight):
		res.Installed = true
	case r.installer == nil:
		res.FallbackReason = "未配置字体安装器"
	default:
		if err := r.install(ctx, family, weight, sourcesFor(info.Script, weight)); err != nil {
			res.FallbackReason = err.Error()
			r.logger.Warn("字体安装失败，退用备选字体栈",
				"family", family, "weight", weight, "script", info.Script, "err", err)
		} else {
			r.store.Mark(family, weight)
			res.Installed = true
		}
	}

	stack := make([]string, 0, len(info.Fallback)+2)
	if userFamily != "" && userFamily != family {
		stack = append(stack, userFamily)
	}
	stack = append(stack, family)
	stack = append(stack, info.Fallback...)
	res.Stack = stack
	res.Value = FormatFamilyList(stack)
	return res
}

// InstallFont 安装一款自定义字体并返回结果。与 Resolve 共享安装记录
// 与非致命失败语义；错误仅在参数非法时出现。
func (r *Resolver) InstallFont(ctx context.Context, name string, weight int, src Source) (Resolution, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Resolution{}, fmt.Errorf("字体名不能为空")
	}
	if src.empty() {
		return Resolution{}, fmt.Errorf("字体 %s 缺少来源", name)
	}
	weight = normalizeWeight(weight)

	res := Resolution{Stack: []string{name}, Value: FormatFamilyList([]string{name})}
	switch {
	case r.store.Seen(name, weight):
		res.Installed = true
	case r.installer == nil:
		res.FallbackReason = "未配置字体安装器"
	default:
		if err := r.install(ctx, name, weight, []Source{src}); err != nil {
			res.FallbackReason = err.Error()
			r.logger.Warn("自定义字体安装失败", "family", name, "weight", weight, "err", err)
		} else {
			r.store.Mark(name, weight)
			res.Installed = true
		}
	}
	return res, nil
}

// install 依次尝试各来源，第一个加载且注册成功者生效。
func (r *Resolver) install(ctx context.Context, family string, weight int, sources []Source) error {
	var lastErr error
	for _, src := range sources {
		data, err := src.load(ctx, r.client)
		if err != nil {
			lastErr = err
			continue
		}
		if err := r.installer.Install(family, weight, data, src.Index); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("没有可用的字体来源")
	}
	return lastErr
}

func normalizeWeight(weight int) int {
	if weight <= 0 {
		return 400
	}
	return weight
}
