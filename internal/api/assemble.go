package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/chartflow/backend/internal/ingest"
	"github.com/chartflow/backend/internal/models"
)

// MIMEApplicationMsgpack selects the msgpack encoding when sent in Accept.
const MIMEApplicationMsgpack = "application/msgpack"

// CSVResponse is the body of a successful analysis.
type CSVResponse struct {
	Type    string               `json:"type" msgpack:"type"`
	Message string               `json:"message" msgpack:"message"`
	Data    []string             `json:"data" msgpack:"data"`
	Table   *models.TableProfile `json:"table,omitempty" msgpack:"table,omitempty"`
}

// PassthroughResponse points at the stored file itself.
type PassthroughResponse struct {
	Type string `json:"type" msgpack:"type"`
	URL  string `json:"url" msgpack:"url"`
}

// Assemble maps a pipeline outcome to an HTTP status and body. Fatal
// failures are server errors; everything else the client caused.
func Assemble(out ingest.Outcome) (int, any) {
	switch out.Kind {
	case ingest.OutcomeCSV:
		return http.StatusOK, &CSVResponse{
			Type:    "csv",
			Message: out.Message(),
			Data:    out.ChartURLs(),
			Table:   out.Profile,
		}
	case ingest.OutcomeImagePassthrough:
		return http.StatusOK, &PassthroughResponse{Type: "image", URL: out.URL}
	case ingest.OutcomeAudioPassthrough:
		return http.StatusOK, &PassthroughResponse{Type: "audio", URL: out.URL}
	}

	status := http.StatusBadRequest
	if out.IsFatal {
		status = http.StatusInternalServerError
	}
	return status, &APIError{
		Status:  status,
		Code:    codeFor(out.Err),
		Message: out.Reason,
	}
}

// respond writes body as msgpack when the client asks for it, JSON otherwise.
func respond(c echo.Context, status int, body any) error {
	if wantsMsgpack(c.Request()) {
		data, err := msgpack.Marshal(body)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, &APIError{
				Code:    CodeInternalError,
				Message: "failed to encode msgpack",
			})
		}
		return c.Blob(status, MIMEApplicationMsgpack, data)
	}
	return c.JSON(status, body)
}

func wantsMsgpack(r *http.Request) bool {
	return strings.Contains(r.Header.Get(echo.HeaderAccept), MIMEApplicationMsgpack)
}
