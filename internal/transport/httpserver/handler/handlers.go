package handler

import (
	"pet-diary/internal/transport/httpserver/handler/animals"
	"pet-diary/internal/transport/httpserver/handler/common"
	"pet-diary/internal/transport/httpserver/handler/records"
	"pet-diary/internal/transport/httpserver/handler/reminders"
	"pet-diary/internal/transport/httpserver/handler/today"
)

type Handlers struct {
	Common    *common.Handlers
	Animals   *animals.Handlers
	Records   *records.Handlers
	Reminders *reminders.Handlers
	Today     *today.Handlers
}
