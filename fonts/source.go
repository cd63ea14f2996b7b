package fonts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// fetchTimeout 是 ctx 未携带截止时间时远程下载的默认限时。
const fetchTimeout = 10 * time.Second

// Source 描述一份字体数据的获取方式，按 Bytes、Path、URL 的顺序
// 取第一个非空项。Index 用于 TTC/OTC 集合文件中的字体下标。
type Source struct {
	Bytes []byte
	Path  string
	URL   string
	Index int
}

func (s Source) empty() bool {
	return len(s.Bytes) == 0 && s.Path == "" && s.URL == ""
}

// load 返回字体字节数据。失败原因由调用方决定如何降级。
func (s Source) load(ctx context.Context, client *http.Client) ([]byte, error) {
	switch {
	case len(s.Bytes) > 0:
		return s.Bytes, nil
	case s.Path != "":
		data, err := os.ReadFile(s.Path)
		if err != nil {
			return nil, fmt.Errorf("读取字体文件失败: %w", err)
		}
		return data, nil
	case s.URL != "":
		return fetch(ctx, client, s.URL)
	default:
		return nil, fmt.Errorf("字体来源为空")
	}
}

func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("构造字体下载请求失败: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("下载字体失败: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("下载字体失败: %s 返回 %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取字体响应失败: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("字体响应为空: %s", url)
	}
	return data, nil
}
