package fonts

import (
	"fmt"
	"sync"
)

// Store 记录本进程已安装的（字体族, 字重）组合，避免重复安装。
// 可被多个解析器共享，并发安全；零值不可用，必须经 NewStore 创建。
type Store struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewStore 创建空的安装记录。
func NewStore() *Store {
	return &Store{seen: make(map[string]struct{})}
}

// Seen 判断组合是否已记录为安装完成。
func (s *Store) Seen(family string, weight int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[storeKey(family, weight)]
	return ok
}

// Mark 记录组合安装完成，重复标记无害。
func (s *Store) Mark(family string, weight int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[storeKey(family, weight)] = struct{}{}
}

// Len 返回已记录的组合数。
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func storeKey(family string, weight int) string {
	return fmt.Sprintf("%s|%d", family, weight)
}
