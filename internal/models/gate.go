package models

// Gate 出入口（车场元数据，不参与分配）
type Gate struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}
