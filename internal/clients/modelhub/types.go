package modelhub

type ModelResponse struct {
	Code    int       `json:"Code"`
	Success bool      `json:"Success"`
	Message string    `json:"Message"`
	Data    ModelInfo `json:"Data"`
}

type ModelInfo struct {
	Id              int64        `json:"Id"`
	Name            string       `json:"Name"`
	Path            string       `json:"Path"`
	ChineseName     string       `json:"ChineseName,omitempty"`
	Description     string       `json:"Description,omitempty"`
	License         string       `json:"License,omitempty"`
	Downloads       int64        `json:"Downloads"`
	Stars           int64        `json:"Stars"`
	Frameworks      []string     `json:"Frameworks,omitempty"`
	Tasks           []ModelTask  `json:"Tasks"`
	CreatedTime     FlexibleTime `json:"CreatedTime"`
	LastUpdatedTime FlexibleTime `json:"LastUpdatedTime"`
}

type ModelTask struct {
	Name        string `json:"Name"`
	ChineseName string `json:"ChineseName,omitempty"`
}

func (m ModelInfo) ID() string {
	if m.Path == "" {
		return m.Name
	}
	return m.Path + "/" + m.Name
}

func (m ModelInfo) SupportsTask(task string) bool {
	for _, t := range m.Tasks {
		if t.Name == task {
			return true
		}
	}
	return false
}
