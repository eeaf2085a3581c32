package agent

import (
	"fmt"
	"strings"
)

// Registry 是只读的 Agent 目录。
// 启动时构造一次，之后不再修改，因此并发读取无需加锁。
type Registry struct {
	agents []Agent
	index  map[string]int
}

// NewRegistry 按声明顺序创建注册表。ID 为空或重复时返回错误。
func NewRegistry(agents []Agent) (*Registry, error) {
	r := &Registry{
		agents: make([]Agent, 0, len(agents)),
		index:  make(map[string]int, len(agents)),
	}
	for _, a := range agents {
		if strings.TrimSpace(a.ID) == "" {
			return nil, fmt.Errorf("agent %q has an empty id", a.Name)
		}
		if _, dup := r.index[a.ID]; dup {
			return nil, fmt.Errorf("duplicate agent id %q", a.ID)
		}
		r.index[a.ID] = len(r.agents)
		r.agents = append(r.agents, a.clone())
	}
	return r, nil
}

// NewDefaultRegistry 使用内置目录创建注册表。
func NewDefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultCatalog())
	if err != nil {
		// 内置目录是常量，出错说明代码本身有问题。
		panic(err)
	}
	return r
}

// List 按声明顺序返回所有 Agent 的副本。
func (r *Registry) List() []Agent {
	out := make([]Agent, len(r.agents))
	for i, a := range r.agents {
		out[i] = a.clone()
	}
	return out
}

// Get 根据 ID 检索一个 Agent。
func (r *Registry) Get(id string) (Agent, bool) {
	i, ok := r.index[id]
	if !ok {
		return Agent{}, false
	}
	return r.agents[i].clone(), true
}

// Len 返回注册表中的 Agent 数量。
func (r *Registry) Len() int {
	return len(r.agents)
}

// Summaries 返回用于服务描述的简要列表，顺序与 List 一致。
func (r *Registry) Summaries() []Summary {
	out := make([]Summary, len(r.agents))
	for i, a := range r.agents {
		out[i] = Summary{Name: a.Name, Role: a.Role, Status: a.Status}
	}
	return out
}
