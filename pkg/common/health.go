package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthStatus is the /healthz payload. Checks maps a dependency name
// (postgres, redis, nats) to "ok" or the ping error.
type HealthStatus struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthCheck reports liveness only, for services without their own
// datastores.
func HealthCheck(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthStatus{
			Status:  "ok",
			Service: serviceName,
			Version: version,
		})
	}
}

// HealthCheckWithDeps pings each dependency and returns 503 when any
// ping fails, so the load balancer drains the instance.
func HealthCheckWithDeps(serviceName, version string, checks map[string]func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthStatus{
			Status:  "ok",
			Service: serviceName,
			Version: version,
			Checks:  make(map[string]string, len(checks)),
		}

		code := http.StatusOK
		for name, ping := range checks {
			if err := ping(); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "unavailable"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		c.JSON(code, resp)
	}
}
