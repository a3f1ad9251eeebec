package models

import "time"

// DeviceToken is a push delivery endpoint registered by a client.
type DeviceToken struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_device_user_token"`
	Token     string    `json:"-" gorm:"not null;uniqueIndex:idx_device_user_token"`
	Platform  string    `json:"platform" gorm:"size:20;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterDeviceRequest is the body for registering or removing a device token.
type RegisterDeviceRequest struct {
	Token    string `json:"device_token" validate:"required,max=4096"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}

// UnregisterDeviceRequest removes a token; platform is ignored.
type UnregisterDeviceRequest struct {
	Token string `json:"device_token" validate:"required"`
}
