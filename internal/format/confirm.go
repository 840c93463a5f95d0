package format

import (
	"net/http"
	"strings"

	"github.com/fruitexport/portal/internal/platform/httpx"
)

// ConfirmHeader affirms a delete prompt on API-style requests.
const ConfirmHeader = "X-Confirm"

// RequireConfirm blocks delete requests that were not affirmed by the
// user. DELETE requests and POSTs to ".../delete" must carry
// "X-Confirm: yes" or a "confirm=yes" form value.
func RequireConfirm(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDelete(r) && !confirmed(r) {
			httpx.RespondEnvelope(w, http.StatusConflict, false, DeletePrompt)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isDelete(r *http.Request) bool {
	if r.Method == http.MethodDelete {
		return true
	}
	return r.Method == http.MethodPost && strings.HasSuffix(strings.TrimRight(r.URL.Path, "/"), "/delete")
}

func confirmed(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get(ConfirmHeader), "yes") {
		return true
	}
	return strings.EqualFold(r.FormValue("confirm"), "yes")
}
