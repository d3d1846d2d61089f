package usecase

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/deal"
	hcdomain "github.com/x-xyz/dealexchange/domain/healthcheck"
)

// Engine is the part of deal.UseCase the report reads
type Engine interface {
	Address() common.Address
	Controller() deal.Controller
}

type impl struct {
	repo   hcdomain.HealthCheckRepo
	engine Engine
}

// New reports backend reachability together with the engine and the
// controller it currently consults
func New(repo hcdomain.HealthCheckRepo, engine Engine) hcdomain.HealthCheckUsecase {
	return &impl{
		repo:   repo,
		engine: engine,
	}
}

func (im *impl) Check(context ctx.Ctx) *hcdomain.Report {
	r := &hcdomain.Report{
		Healthy:  true,
		Backends: make(map[string]string),
	}
	for name, err := range im.repo.PingDB(context) {
		if err != nil {
			r.Healthy = false
			r.Backends[name] = err.Error()
		} else {
			r.Backends[name] = "ok"
		}
	}
	if im.engine != nil {
		r.Exchange = domain.FromCommon(im.engine.Address()).ToLowerStr()
		if ctrl := im.engine.Controller(); ctrl != nil {
			r.Controller = domain.FromCommon(ctrl.Address()).ToLowerStr()
		}
	}
	return r
}
