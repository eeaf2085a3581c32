package agent

// Status 表示 Agent 的生命周期状态，仅作展示用途。
type Status string

const (
	StatusActive     Status = "active"
	StatusComingSoon Status = "coming_soon"
)

// Agent 描述注册表中的一个 Agent。进程生命周期内不可变。
type Agent struct {
	ID           string   `json:"id"`           // 唯一的小写标识符，用作 URL 路径段
	Name         string   `json:"name"`         // 展示名称 (大写)
	Role         string   `json:"role"`         // 一句话职能描述
	Status       Status   `json:"status"`       // 生命周期状态
	Description  string   `json:"description"`  // 详细描述
	Capabilities []string `json:"capabilities"` // 有序的能力列表
}

// Summary 是根路径描述中使用的简要信息。
type Summary struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status Status `json:"status"`
}

func (a Agent) clone() Agent {
	a.Capabilities = append([]string(nil), a.Capabilities...)
	return a
}
