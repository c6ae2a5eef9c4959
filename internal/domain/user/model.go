package user

import "time"

type User struct {
	ID        int
	Login     string
	Password  string // bcrypt hash
	CreatedAt time.Time
}

// BaseRequest тело /auth/register и /auth/login
type BaseRequest struct {
	Login    string `json:"login" minLength:"3" maxLength:"64"`
	Password string `json:"password" minLength:"8" maxLength:"72"`
}
