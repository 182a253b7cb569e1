// Package model はドメインモデルを定義する。
package model

import "time"

// User は貸出サービスの利用者を表す。
// PasswordHashはbcryptハッシュでありJSONには含めない。
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FName        string    `json:"fname"`
	LName        string    `json:"lname"`
	Type         string    `json:"type"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicProfile はパスワードを含まないユーザーの公開情報を返す。
// 貸出拒否レスポンスに現在の保持者として添付される。
func (u *User) PublicProfile() *UserProfile {
	return &UserProfile{
		ID:    u.ID,
		Email: u.Email,
		FName: u.FName,
		LName: u.LName,
		Type:  u.Type,
	}
}

// UserProfile はユーザーの公開プロフィールを表す。
type UserProfile struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	FName string `json:"fname"`
	LName string `json:"lname"`
	Type  string `json:"type"`
}

// DeviceTypePrivilege はユーザーに特定機材タイプの貸出権限を与える。
// (user_id, device_type) の組で一意。
type DeviceTypePrivilege struct {
	UserID     int64  `json:"user_id"`
	DeviceType string `json:"device_type"`
}

// Lateness は返却遅延の監査記録を表す。貸出判定には関与しない。
type Lateness struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
