package models

import "time"

// Account is the persistent record backing a registered user.
//
// RefreshTokenHash holds the one-way hash of the currently valid refresh
// token, or nil when the account has no active session. At most one hash is
// live per account at any time; issuing a new refresh token replaces it.
type Account struct {
	ID               string
	Email            string
	FullName         string
	PasswordHash     string
	RefreshTokenHash *string
	CreatedAt        time.Time
}

// AccountView is the sanitized projection of an Account returned to API
// clients. Secret fields (password hash, refresh-token hash) are omitted.
type AccountView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}

// View returns the sanitized projection of the account.
func (a *Account) View() AccountView {
	return AccountView{
		ID:        a.ID,
		Email:     a.Email,
		FullName:  a.FullName,
		CreatedAt: a.CreatedAt,
	}
}
