// Package models contains the data models for the ocserv panel API.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Account represents a panel login account for authentication and access control.
type Account struct {
	ID                  int64      `db:"id" json:"id" gorm:"primaryKey"`
	Username            string     `db:"username" json:"username"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	Email               *string    `db:"email" json:"email"`
	Role                string     `db:"role" json:"role"` // admin, staff
	SuspendedAt         *time.Time `db:"suspended_at" json:"suspended_at"`
	LastLoginAt         *time.Time `db:"last_login_at" json:"last_login_at"`
	LoginCount          int        `db:"login_count" json:"login_count"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	PasswordChangedAt   time.Time  `db:"password_changed_at" json:"password_changed_at"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt           *time.Time `db:"deleted_at" json:"-"`
}

// TableName maps the Account model to the accounts table for GORM.
func (Account) TableName() string { return "accounts" }

// OcservUser represents a VPN account managed through ocpasswd.
type OcservUser struct {
	ID             int64      `db:"id" json:"id"`
	Username       string     `db:"username" json:"username"`
	Password       string     `db:"password" json:"-"` // kept for ocpasswd resyncs
	GroupName      string     `db:"group_name" json:"group"`
	Active         bool       `db:"active" json:"active"`
	ExpireDate     *time.Time `db:"expire_date" json:"expire_date"`
	DeactivatedAt  *time.Time `db:"deactivated_at" json:"deactivated_at"`
	TrafficType    string     `db:"traffic_type" json:"traffic_type"` // free, monthly, total
	TrafficGB      int        `db:"traffic_gb" json:"traffic_gb"`
	RxBytes        uint64     `db:"rx_bytes" json:"rx_bytes"`
	TxBytes        uint64     `db:"tx_bytes" json:"tx_bytes"`
	Description    *string    `db:"description" json:"description"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`

	// Online is filled from occtl, not the database
	Online bool `db:"-" json:"online"`
}

// OcservGroup represents a named ocserv group with its configuration overrides.
// The config map mirrors the group file written under the ocserv group directory.
type OcservGroup struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Config    ConfigMap `db:"config" json:"config"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PanelSettings is the single-row panel configuration: group defaults pushed
// to ocserv plus panel-level knobs.
type PanelSettings struct {
	ID               int64     `db:"id" json:"-"`
	DefaultConfigs   ConfigMap `db:"default_configs" json:"default_configs"`
	CaptchaSiteKey   string    `db:"captcha_site_key" json:"captcha_site_key"`
	CaptchaSecretKey string    `db:"captcha_secret_key" json:"captcha_secret_key"`
	DefaultTrafficGB int       `db:"default_traffic_gb" json:"default_traffic"`
	CreatedAt        time.Time `db:"created_at" json:"-"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// TrafficStat is one day of accumulated RX/TX for a VPN user.
type TrafficStat struct {
	ID           int64     `db:"id" json:"id"`
	OcservUserID int64     `db:"ocserv_user_id" json:"ocserv_user_id"`
	Date         time.Time `db:"date" json:"date"`
	RxBytes      uint64    `db:"rx_bytes" json:"rx_bytes"`
	TxBytes      uint64    `db:"tx_bytes" json:"tx_bytes"`

	// Username is filled by joins for reporting endpoints
	Username string `db:"username" json:"username,omitempty"`
}

// ConfigMap is a string-keyed option map stored as a JSON column.
type ConfigMap map[string]string

// Value implements driver.Valuer for JSON column storage.
func (m ConfigMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON column retrieval.
func (m *ConfigMap) Scan(src any) error {
	if src == nil {
		*m = ConfigMap{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ConfigMap", src)
	}
	if len(data) == 0 {
		*m = ConfigMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}
