package entity

import "time"

// CHConnection is a registered ClickHouse server whose query_log feeds reports.
type CHConnection struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"type:text;not null" json:"name" validate:"required"`
	Host       string    `gorm:"type:text;not null" json:"host" validate:"required"`
	Port       int       `gorm:"not null" json:"port" validate:"required,gt=0,lte=65535"`
	Protocol   string    `gorm:"type:text" json:"protocol" validate:"omitempty,oneof=native http"`
	Database   string    `gorm:"type:text" json:"database"`
	Username   string    `gorm:"type:text" json:"username"`
	Password   string    `gorm:"type:text" json:"password,omitempty"`
	ServerInfo string    `gorm:"type:text" json:"server_info"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
