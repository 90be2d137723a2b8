package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag writes payload with a weak validator derived from the
// encoded body, answering 304 when the client already holds it.
func RespondJSONWithETag(ctx *gin.Context, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	etag := bodyETag(body)
	ctx.Header("ETag", etag)
	ctx.Header("Cache-Control", "private, no-cache")

	if status == http.StatusOK && etagMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(status, "application/json; charset=utf-8", body)
}

func bodyETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `W/"` + hex.EncodeToString(sum[:16]) + `"`
}

// etagMatches applies the weak comparison of If-None-Match.
func etagMatches(header, current string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}

	want := opaqueTag(current)
	for _, candidate := range strings.Split(header, ",") {
		if opaqueTag(candidate) == want {
			return true
		}
	}
	return false
}

func opaqueTag(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), "W/")
}
