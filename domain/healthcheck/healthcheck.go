package healthcheck

import (
	"github.com/x-xyz/dealexchange/base/ctx"
)

// Report is what GET /health answers with
type Report struct {
	Healthy bool `json:"healthy"`
	// Backends maps a backend name to "ok" or its ping error
	Backends   map[string]string `json:"backends"`
	Exchange   string            `json:"exchange"`
	Controller string            `json:"controller"`
}

// HealthCheckUsecase represents the healthCheck's usecases
type HealthCheckUsecase interface {
	Check(context ctx.Ctx) *Report
}

// HealthCheckRepo is repository layer of healthCheck
type HealthCheckRepo interface {
	// PingDB probes every configured backend, nil errors mean reachable
	PingDB(context ctx.Ctx) map[string]error
}
