package auth

import "time"

// Issuer binds the secrets and lifetimes of both token kinds.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (i *Issuer) IssueAccessToken(userID int64) (string, error) {
	return GenerateToken(userID, i.accessSecret, i.accessTTL)
}

func (i *Issuer) IssueRefreshToken(userID int64) (string, error) {
	return GenerateToken(userID, i.refreshSecret, i.refreshTTL)
}

func (i *Issuer) VerifyAccessToken(token string) (int64, error) {
	return Verify(token, i.accessSecret)
}

func (i *Issuer) VerifyRefreshToken(token string) (int64, error) {
	return Verify(token, i.refreshSecret)
}
