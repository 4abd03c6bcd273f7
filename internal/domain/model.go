package domain

import (
	"time"

	"gorm.io/gorm"

	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/database"
)

// MessageModel is the GORM model for the messages table.
// Seq is the auto-increment primary key: a store-assigned monotonic
// sequence that breaks ordering ties between messages inserted within
// the same timestamp granularity. ID is the public identifier.
// Deletion is a hard delete; messages carry no soft-delete column.
type MessageModel struct {
	Seq        int64     `gorm:"primaryKey;autoIncrement"`
	ID         string    `gorm:"type:varchar(36);uniqueIndex;not null"`
	FromUserID string    `gorm:"type:varchar(36);not null;index:idx_messages_pair"`
	ToUserID   string    `gorm:"type:varchar(36);not null;index:idx_messages_pair;index"`
	Content    string    `gorm:"type:text;not null"`
	Read       bool      `gorm:"column:is_read;not null;default:false"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for MessageModel.
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts MessageModel to a domain Message.
func (m *MessageModel) ToDomain() *Message {
	return &Message{
		ID:         m.ID,
		FromUserID: m.FromUserID,
		ToUserID:   m.ToUserID,
		Content:    m.Content,
		Read:       m.Read,
		Seq:        m.Seq,
		CreatedAt:  m.CreatedAt,
	}
}

// MessageToModel converts a domain Message to its GORM model.
func MessageToModel(msg *Message) *MessageModel {
	return &MessageModel{
		ID:         msg.ID,
		FromUserID: msg.FromUserID,
		ToUserID:   msg.ToUserID,
		Content:    msg.Content,
		Read:       msg.Read,
		Seq:        msg.Seq,
		CreatedAt:  msg.CreatedAt,
	}
}

// UserModel is a read-only mapping of the platform users table. The
// table is owned and migrated by the user service; deleted accounts are
// soft-deleted there, so lookups here naturally exclude them.
type UserModel struct {
	ID          string               `gorm:"type:varchar(36);primaryKey"`
	Email       string               `gorm:"type:varchar(255)"`
	Username    string               `gorm:"type:varchar(50)"`
	DisplayName string               `gorm:"type:varchar(100)"`
	AvatarURL   string               `gorm:"type:varchar(500)"`
	Roles       database.StringArray `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to a domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:          m.ID,
		Username:    m.Username,
		DisplayName: m.DisplayName,
		AvatarURL:   m.AvatarURL,
		Roles:       []string(m.Roles),
	}
}
