// Package domain 定义了应用程序中使用的数据结构 (数据库模型)。
package domain

import "time"

// User 表示画布的所有者。
type User struct {
	ID        uint      `gorm:"primaryKey"`                                          // 用户唯一标识符 (主键)
	Username  string    `gorm:"type:varchar(191);uniqueIndex:idx_username;not null"` // 用户名，唯一
	Password  string    `gorm:"type:text;not null"`                                  // 存储的是哈希后的密码，不能为空
	Email     string    `gorm:"type:varchar(191);index:idx_email"`                   // 邮箱，可为空
	CreatedAt time.Time `gorm:"autoCreateTime"`                                      // 创建时间 (GORM 自动填充)
	UpdatedAt time.Time `gorm:"autoUpdateTime"`                                      // 最后更新时间 (GORM 自动填充)
}
