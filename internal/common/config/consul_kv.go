package config

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/consul/api"
)

// LoadConfigFromConsulKV 从 Consul KV 取一份 JSON 配置。
// value 的结构必须与 Config 一致；动态 watch 不在这里做，
// 需要热更新的部署用 consul-template 之类的外部手段重启进程。
func LoadConfigFromConsulKV(consulHost string, consulPort int, key string) (*Config, error) {
	if key == "" {
		return nil, fmt.Errorf("consul kv key is empty")
	}

	client, err := api.NewClient(&api.Config{
		Address: fmt.Sprintf("%s:%d", consulHost, consulPort),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	pair, _, err := client.KV().Get(key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read consul kv %s: %w", key, err)
	}
	if pair == nil || len(pair.Value) == 0 {
		return nil, fmt.Errorf("consul kv %s is empty or missing", key)
	}

	var cfg Config
	if err := json.Unmarshal(pair.Value, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse consul kv %s as json: %w", key, err)
	}
	return &cfg, nil
}
