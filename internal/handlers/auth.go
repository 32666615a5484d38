package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"aeriesbridge/internal/config"
	"aeriesbridge/internal/db"
	"aeriesbridge/internal/middleware"
	"aeriesbridge/internal/models"
)

// CreateAccessToken signs an HS256 access token with sub=username.
func CreateAccessToken(username string, expiresIn time.Duration) (string, error) {
	settings := config.Load()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ID:        uuid.NewString(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(settings.SecretKey))
}

func authenticateUser(username, password string) (*models.APIUser, error) {
	var user models.APIUser
	if err := db.DB.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, err
	}
	return &user, nil
}

// LoginForAccessToken: POST /token/
// Accepts both a JSON body and OAuth2-style form data.
func LoginForAccessToken(w http.ResponseWriter, r *http.Request) {
	var username, password string

	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	switch {
	case strings.Contains(contentType, "application/json"):
		var creds models.UserCredentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			http.Error(w, "Invalid JSON format", http.StatusBadRequest)
			return
		}
		username, password = creds.Username, creds.Password
		if username == "" || password == "" {
			http.Error(w, "Username and password are required", http.StatusUnprocessableEntity)
			return
		}
	case strings.Contains(contentType, "application/x-www-form-urlencoded"),
		strings.Contains(contentType, "multipart/form-data"):
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data", http.StatusBadRequest)
			return
		}
		username = r.FormValue("username")
		password = r.FormValue("password")
		if username == "" || password == "" {
			http.Error(w, "Username and password are required in form data", http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "Content-Type must be 'application/json' or 'application/x-www-form-urlencoded'", http.StatusBadRequest)
		return
	}

	user, err := authenticateUser(username, password)
	if err != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		http.Error(w, "Incorrect username or password", http.StatusUnauthorized)
		return
	}

	settings := config.Load()
	expiresIn := time.Duration(settings.AccessTokenExpireMinutes) * time.Minute
	signed, err := CreateAccessToken(user.Username, expiresIn)
	if err != nil {
		http.Error(w, "failed to sign access token", http.StatusInternalServerError)
		return
	}

	writeJSONResp(w, http.StatusOK, models.Token{
		Token:       signed,
		AccessToken: signed,
		TokenType:   "bearer",
	})
}

// ReadUsersMe: GET /users/me/ (protected)
func ReadUsersMe(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok || username == "" {
		http.Error(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}

	var user models.APIUser
	err := db.DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	} else if err != nil {
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	if user.Disabled {
		http.Error(w, "Inactive user", http.StatusBadRequest)
		return
	}
	writeJSONResp(w, http.StatusOK, user)
}
