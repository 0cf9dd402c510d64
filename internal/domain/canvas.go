package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Canvas 表示一个像素画布。
type Canvas struct {
	ID        uint      `gorm:"primaryKey"`                     // 画布唯一标识符 (主键)
	UserID    uint      `gorm:"index;not null"`                 // 所有者 ID (外键关联 User.ID)
	Title     string    `gorm:"type:varchar(191);not null"`     // 画布标题
	Size      int       `gorm:"not null"`                       // 网格边长 N，画布为 N×N
	GridData  string    `gorm:"type:longtext;not null"`         // N×N 嵌套数组的 JSON 字符串，未上色为 null
	IsPublic  bool      `gorm:"index;not null;default:false"`   // 是否公开
	CreatedAt time.Time `gorm:"autoCreateTime"`                 // 创建时间 (GORM 自动填充)
	UpdatedAt time.Time `gorm:"autoUpdateTime;index"`           // 最后更新时间 (GORM 自动填充，列表按此排序)
}

// GridRows 是网格在传输和存储时的形状：行优先的嵌套数组，nil 表示未上色。
type GridRows [][]*string

// ParseGrid 将 GridData 字段 (JSON 字符串) 解析为 GridRows。
func (c *Canvas) ParseGrid() (GridRows, error) {
	if c.GridData == "" || c.GridData == "null" {
		return nil, nil
	}
	var rows GridRows
	if err := json.Unmarshal([]byte(c.GridData), &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal grid data: %w", err)
	}
	return rows, nil
}

// SetGrid 将 GridRows 序列化为 JSON 字符串，并设置到 GridData 字段。
func (c *Canvas) SetGrid(rows GridRows) error {
	bytes, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal grid data: %w", err)
	}
	c.GridData = string(bytes)
	return nil
}

// VisibleTo 报告画布对指定用户是否可见。userID 为 0 表示匿名访问。
func (c *Canvas) VisibleTo(userID uint) bool {
	return c.IsPublic || (userID != 0 && c.UserID == userID)
}

// OwnedBy 报告画布是否属于指定用户
func (c *Canvas) OwnedBy(userID uint) bool {
	return userID != 0 && c.UserID == userID
}
