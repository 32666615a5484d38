package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/skip2/go-qrcode"
)

type shareQRCodeReq struct {
	StudentID      int `json:"stu_id"`
	DocSQ          int `json:"doc_sq"`
	ExpiresInHours int `json:"expires_in_hours"`
}

// DocumentShareQRCode: POST /docs/share/qrcode/ (protected)
// Same semantics as the share-link endpoint, rendered as a PNG QR code
// for front-office staff to print.
func DocumentShareQRCode(w http.ResponseWriter, r *http.Request) {
	var req shareQRCodeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "invalid JSON body")
		return
	}

	// Reuse the share-link handler to build the signed URL.
	url, err := buildShareURL(req.StudentID, req.DocSQ, req.ExpiresInHours)
	if err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", err.Error())
		return
	}

	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR", "failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
