package common

import (
	ownersdomain "pet-diary/internal/domain/owners"
	"pet-diary/pkg/logger"
)

type Handlers struct {
	Owners *ownersdomain.Service
	log    logger.Logger
}

func New(owners *ownersdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Owners: owners,
		log:    log,
	}
}
