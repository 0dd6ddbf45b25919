package httpx

import (
	"net/http"
)

// Fail writes the handler-level error envelope. Every fault the admin cannot
// fix by rephrasing is reported as 500 so portal clients treat them uniformly.
func Fail(w http.ResponseWriter, err error) {
	msg := http.StatusText(http.StatusInternalServerError)
	if err != nil {
		msg = err.Error()
	}
	JSON(w, http.StatusInternalServerError, ErrorBody{Error: msg})
}
