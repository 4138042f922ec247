package domain

import "time"

// RefreshTokenTTL is the validity window of a newly issued refresh token
const RefreshTokenTTL = 7 * 24 * time.Hour

// RefreshToken is a long-lived, single-use credential. Token holds the SHA-256
// digest of the value handed to the client, never the value itself.
type RefreshToken struct {
	ID         string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID     string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Token      string    `gorm:"type:varchar(128);not null;uniqueIndex" json:"-"`
	ValidUntil time.Time `gorm:"type:timestamp with time zone;not null;index" json:"valid_until"`
	CreatedAt  time.Time `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
	IsRevoked  bool      `gorm:"not null" json:"is_revoked"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func NewRefreshToken(userID, tokenHash string, now time.Time, ttl time.Duration) *RefreshToken {
	if ttl <= 0 {
		ttl = RefreshTokenTTL
	}
	return &RefreshToken{
		UserID:     userID,
		Token:      tokenHash,
		ValidUntil: now.Add(ttl),
		CreatedAt:  now,
	}
}

// IsValid reports whether the token is unrevoked and unexpired at now
func (t *RefreshToken) IsValid(now time.Time) bool {
	return !t.IsRevoked && now.Before(t.ValidUntil)
}

func (t *RefreshToken) Revoke() {
	t.IsRevoked = true
}
