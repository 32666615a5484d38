package models

// APIUser is a service account allowed to call the API. Passwords are
// bcrypt hashes; plaintext never touches the table.
type APIUser struct {
	Username       string `gorm:"column:username;primaryKey" json:"username"`
	Email          string `gorm:"column:email" json:"email"`
	FullName       string `gorm:"column:full_name" json:"full_name"`
	HashedPassword string `gorm:"column:hashed_password" json:"-"`
	Disabled       bool   `gorm:"column:disabled" json:"disabled"`
}

func (APIUser) TableName() string { return "api_users" }

// Token is the login response. The token value is duplicated under two
// keys for older clients.
type Token struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserCredentials is the JSON login body.
type UserCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// BaseResponse is the minimal status/message envelope.
type BaseResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
