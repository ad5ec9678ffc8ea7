package httputil

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/drivebackup/auth-server-go/internal/errors"
)

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// FailureResponse is the wire shape for every unsuccessful broker result.
// Legacy DriveBackup clients parse the body's success flag, not the HTTP
// status, so business failures go out as 200 with success:false.
type FailureResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

// WriteError writes an error in the legacy body format. Internal failures are
// the only class reported with a non-200 status. Exchange failures carry the
// upstream error payload as msg so the operator can diagnose from the client
// side.
func WriteError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	msg := string(code)
	if appErr, ok := apperrors.AsAppError(err); ok && code == apperrors.ErrCodeExchangeFailed {
		msg = appErr.Message
	}
	WriteJSON(w, statusFromCode(code), FailureResponse{
		Success: false,
		Msg:     msg,
	})
}

func statusFromCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInternal, apperrors.ErrCodeDatabase:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}
