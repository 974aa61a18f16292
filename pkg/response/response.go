package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is embedded by every response body so payload fields sit at the
// top level next to success and message.
type Envelope struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// Enveloped is implemented by response bodies embedding Envelope
type Enveloped interface {
	envelope() *Envelope
}

func (e *Envelope) envelope() *Envelope { return e }

// OK builds a successful envelope
func OK(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

// Success writes body with success=true and the request id filled in
func Success[T Enveloped](ctx *gin.Context, status int, body T) {
	if status == 0 {
		status = http.StatusOK
	}
	env := body.envelope()
	env.Success = true
	env.RequestID = ctx.GetString("request_id")
	ctx.JSON(status, body)
}

// Message writes a payload-less successful response
func Message(ctx *gin.Context, status int, message string) {
	env := OK(message)
	Success(ctx, status, &env)
}

// Error writes a failed envelope
func Error(ctx *gin.Context, status int, message string, errs map[string]string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.JSON(status, Envelope{
		Success:   false,
		Message:   message,
		RequestID: ctx.GetString("request_id"),
		Errors:    errs,
	})
}

// Abort writes a failed envelope and stops the handler chain
func Abort(ctx *gin.Context, status int, message string) {
	Error(ctx, status, message, nil)
	ctx.Abort()
}
