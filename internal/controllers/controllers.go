package controllers

import (
	"nregastats/internal/logging"
	"strconv"

	"github.com/gin-gonic/gin"
)

const errSomethingWentWrong = "Something went wrong"

func getIntWithDefault(c *gin.Context, key string, defaultValue, max int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		logging.Debug().Str("param", key).Str("value", raw).Int("default", defaultValue).Msg("invalid query parameter, using default")
		return defaultValue
	}
	if v > max {
		return max
	}
	return v
}
