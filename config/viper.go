package config

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ceyewan/snowgen/xerrors"
)

// loader 实现 Loader 接口
type loader struct {
	v       *viper.Viper
	cfg     *Config
	mu      sync.RWMutex
	watches map[string][]chan Event
}

// newLoader 创建一个新的配置加载器（内部使用）
func newLoader(cfg *Config) (Loader, error) {
	return &loader{
		v:       viper.New(),
		cfg:     cfg,
		watches: make(map[string][]chan Event),
	}, nil
}

// Load 初始化并从所有来源加载配置
func (l *loader) Load(ctx context.Context) error {
	l.v.SetConfigName(l.cfg.Name)
	l.v.SetConfigType(l.cfg.FileType)
	for _, path := range l.cfg.Paths {
		l.v.AddConfigPath(path)
	}

	// 环境变量（最高优先级）
	l.v.SetEnvPrefix(l.cfg.EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	// .env 文件（找不到不算错误）
	l.loadDotEnv()

	// 配置文件（最低优先级），不存在时仅用环境变量
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return xerrors.Wrapf(err, "failed to read config file %s", l.cfg.Name)
		}
	}

	// 文件变化时通知监听者
	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.notifyWatches()
	})
	l.v.WatchConfig()

	return nil
}

// loadDotEnv 尝试从搜索路径加载 .env 文件（内部使用）
func (l *loader) loadDotEnv() {
	_ = godotenv.Load()
	for _, path := range l.cfg.Paths {
		_ = godotenv.Load(filepath.Join(path, ".env"))
	}
}

// Get 获取原始配置值
func (l *loader) Get(key string) any {
	return l.v.Get(key)
}

// Unmarshal 将整个配置反序列化到结构体
func (l *loader) Unmarshal(v any) error {
	if err := l.v.Unmarshal(v); err != nil {
		return xerrors.Wrap(err, "unmarshal config")
	}
	return nil
}

// UnmarshalKey 将指定 Key 的配置反序列化到结构体
func (l *loader) UnmarshalKey(key string, v any) error {
	if err := l.v.UnmarshalKey(key, v); err != nil {
		return xerrors.Wrapf(err, "unmarshal config key %s", key)
	}
	return nil
}

// Watch 监听配置变化
//
// 返回的通道在配置文件变化时收到对应 key 的新值；
// ctx 取消后通道关闭。
func (l *loader) Watch(ctx context.Context, key string) (<-chan Event, error) {
	ch := make(chan Event, 1)

	l.mu.Lock()
	l.watches[key] = append(l.watches[key], ch)
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		chans := l.watches[key]
		for i, c := range chans {
			if c == ch {
				l.watches[key] = append(chans[:i], chans[i+1:]...)
				close(ch)
				break
			}
		}
	}()

	return ch, nil
}

// notifyWatches 向所有监听者推送当前值（内部使用）
func (l *loader) notifyWatches() {
	l.mu.RLock()
	defer l.mu.RUnlock()
	now := time.Now()
	for key, chans := range l.watches {
		event := Event{Key: key, Value: l.v.Get(key), Timestamp: now}
		for _, ch := range chans {
			select {
			case ch <- event:
			default:
				// 监听者未及时消费时丢弃本次通知
			}
		}
	}
}
