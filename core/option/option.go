package option

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	jsonparser "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	stripjsoncomments "github.com/trapcodeio/go-strip-json-comments"
	"gopkg.in/yaml.v3"
)

type sourceKind int

const (
	sourceJSON sourceKind = iota
	sourceYAML
	sourceTOML
)

type source struct {
	kind sourceKind
	path string // 为空时使用 raw
	raw  []byte
}

// Repository 按添加顺序合并多个配置源，后添加的覆盖先添加的
type Repository struct {
	lock    sync.RWMutex
	k       *koanf.Koanf
	sources []source
	bound   []func(k *koanf.Koanf)

	// OnError 接收重载与监听过程中的错误
	OnError func(err error)
}

func NewRepository() *Repository {
	return &Repository{
		k: koanf.New("."),
		OnError: func(err error) {
			log.Printf("option: %v", err)
		},
	}
}

func (ss *Repository) AddJSONFile(filePath string) error {
	return ss.add(source{kind: sourceJSON, path: filePath})
}

func (ss *Repository) AddYAMLFile(filePath string) error {
	return ss.add(source{kind: sourceYAML, path: filePath})
}

func (ss *Repository) AddTOMLFile(filePath string) error {
	return ss.add(source{kind: sourceTOML, path: filePath})
}

// AddFile 按扩展名选择解析方式
func (ss *Repository) AddFile(filePath string) error {
	switch filepath.Ext(filePath) {
	case ".yaml", ".yml":
		return ss.AddYAMLFile(filePath)
	case ".toml":
		return ss.AddTOMLFile(filePath)
	default:
		return ss.AddJSONFile(filePath)
	}
}

func (ss *Repository) AddJSON(raw []byte) error {
	return ss.add(source{kind: sourceJSON, raw: raw})
}

func (ss *Repository) add(src source) error {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	if err := loadSource(ss.k, src); err != nil {
		return err
	}
	ss.sources = append(ss.sources, src)
	return nil
}

// Reload 重新读取所有配置源并通知已绑定的配置
func (ss *Repository) Reload() error {
	ss.lock.Lock()
	k := koanf.New(".")
	for _, src := range ss.sources {
		if err := loadSource(k, src); err != nil {
			ss.lock.Unlock()
			return err
		}
	}
	ss.k = k
	bound := append([]func(k *koanf.Koanf){}, ss.bound...)
	ss.lock.Unlock()

	for _, refresh := range bound {
		refresh(k)
	}
	return nil
}

// GetByKey 通过 key 返回配置
func (ss *Repository) GetByKey(key string, inout any) error {
	ss.lock.RLock()
	k := ss.k
	ss.lock.RUnlock()

	return unmarshal(k, key, inout)
}

func (ss *Repository) Exists(key string) bool {
	ss.lock.RLock()
	defer ss.lock.RUnlock()
	return ss.k.Exists(key)
}

func (ss *Repository) filePaths() []string {
	ss.lock.RLock()
	defer ss.lock.RUnlock()

	var paths []string
	for _, src := range ss.sources {
		if len(src.path) > 0 {
			paths = append(paths, src.path)
		}
	}
	return paths
}

func (ss *Repository) reportError(err error) {
	if ss.OnError != nil {
		ss.OnError(err)
	}
}

func unmarshal(k *koanf.Koanf, key string, inout any) error {
	if err := k.UnmarshalWithConf(key, inout, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("unmarshal option(%s): %w", key, err)
	}
	return nil
}

func loadSource(k *koanf.Koanf, src source) error {
	raw := src.raw
	name := "<memory>"
	if len(src.path) > 0 {
		name = src.path
		var err error
		raw, err = os.ReadFile(src.path)
		if err != nil {
			return fmt.Errorf("failed to read file(%v): %w", src.path, err)
		}
	}

	var err error
	switch src.kind {
	case sourceJSON:
		jsonWithoutComments := stripjsoncomments.Strip(string(raw))
		err = k.Load(rawbytes.Provider([]byte(jsonWithoutComments)), jsonparser.Parser())
	case sourceYAML:
		m := map[string]any{}
		if err = yaml.Unmarshal(raw, &m); err == nil {
			err = k.Load(confmap.Provider(m, ""), nil)
		}
	case sourceTOML:
		m := map[string]any{}
		if _, err = toml.Decode(string(raw), &m); err == nil {
			err = k.Load(confmap.Provider(m, ""), nil)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to parse file(%s): %w", name, err)
	}
	return nil
}
