package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"aeriesbridge/internal/config"
)

type shareClaims struct {
	StudentID int `json:"stu_id"`
	DocSQ     int `json:"doc_sq"`
	jwt.RegisteredClaims
}

type generateShareLinkReq struct {
	StudentID      int `json:"stu_id"`
	DocSQ          int `json:"doc_sq"`
	ExpiresInHours int `json:"expires_in_hours"`
}

type generateShareLinkResp struct {
	ShareableURL string `json:"shareable_url"`
	ExpiresAt    string `json:"expires_at"`
}

// GenerateDocumentShareLink: POST /docs/generate-share-link/ (protected)
// Issues a signed link a parent or outside agency can open without an
// API account.
func GenerateDocumentShareLink(w http.ResponseWriter, r *http.Request) {
	var req generateShareLinkReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "invalid JSON body")
		return
	}
	url, err := buildShareURL(req.StudentID, req.DocSQ, req.ExpiresInHours)
	if err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", err.Error())
		return
	}
	exp := time.Now().Add(time.Duration(req.ExpiresInHours) * time.Hour)
	writeJSONResp(w, http.StatusOK, generateShareLinkResp{
		ShareableURL: url,
		ExpiresAt:    exp.Format(time.RFC3339),
	})
}

// buildShareURL validates the request, signs a share token and returns
// the frontend link that embeds it.
func buildShareURL(studentID, docSQ, expiresInHours int) (string, error) {
	if studentID == 0 || docSQ == 0 {
		return "", errors.New("stu_id and doc_sq are required")
	}
	// Cap link lifetime at one week.
	if expiresInHours < 1 || expiresInHours > 168 {
		return "", errors.New("expires_in_hours must be between 1 and 168")
	}
	if _, err := fetchDocument(studentID, docSQ); err != nil {
		return "", err
	}

	settings := config.Load()
	exp := time.Now().Add(time.Duration(expiresInHours) * time.Hour)
	claims := shareClaims{
		StudentID: studentID,
		DocSQ:     docSQ,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(settings.SecretKey))
	if err != nil {
		return "", errors.New("failed to sign share token")
	}

	return fmt.Sprintf("%s/shared/%d/%d?token=%s",
		strings.TrimRight(settings.FrontendBaseURL, "/"), studentID, docSQ, signed), nil
}

// GetSharedDocument: GET /docs/shared/{id}/{sq}/?token=...
// No auth header; the token in the query is the credential.
func GetSharedDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "invalid student id")
		return
	}
	sq, err := strconv.Atoi(chi.URLParam(r, "sq"))
	if err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "invalid document sequence")
		return
	}

	claims, err := parseShareToken(r.URL.Query().Get("token"))
	if err != nil {
		writeStatusMessage(w, http.StatusUnauthorized, "ERROR",
			"This share link is invalid or has expired.")
		return
	}
	if claims.StudentID != id || claims.DocSQ != sq {
		writeStatusMessage(w, http.StatusForbidden, "ERROR", "share token does not match document")
		return
	}

	doc, err := fetchDocument(id, sq)
	if err != nil {
		writeStatusMessage(w, http.StatusNotFound, "ERROR", err.Error())
		return
	}
	serveDocument(w, doc)
}

func parseShareToken(tokenStr string) (*shareClaims, error) {
	if tokenStr == "" {
		return nil, errors.New("missing token")
	}
	settings := config.Load()
	parsed, err := jwt.ParseWithClaims(tokenStr, &shareClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(settings.SecretKey), nil
	})
	if err != nil || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := parsed.Claims.(*shareClaims)
	if !ok || claims.StudentID == 0 || claims.ExpiresAt == nil || time.Now().After(claims.ExpiresAt.Time) {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}
