package v1

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie  = "profile_flash"
	flashMaxAge  = 300 // seconds
	flashMaxSize = 3000
)

// setFlash keeps notices across a redirect for the next HTML page this
// service renders. Notices that would not fit in a cookie are dropped.
func setFlash(c *gin.Context, notices []Notice) {
	if len(notices) == 0 {
		return
	}
	data, err := json.Marshal(notices)
	if err != nil {
		return
	}
	value := base64.RawURLEncoding.EncodeToString(data)
	if len(value) > flashMaxSize {
		return
	}
	c.SetCookie(flashCookie, value, flashMaxAge, "/", "", false, true)
}

// takeFlash returns and clears the notices left by setFlash.
func takeFlash(c *gin.Context) []Notice {
	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var notices []Notice
	if err := json.Unmarshal(data, &notices); err != nil {
		return nil
	}
	return notices
}
