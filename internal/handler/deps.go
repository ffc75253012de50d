package handler

import (
	"chatrelay/internal/app/relay"
	"chatrelay/internal/configs"
)

// AppDeps bundles the wired application dependencies handed to the router.
type AppDeps struct {
	Config    *configs.AppConfig
	Lifecycle *relay.Handler
	Gateway   *ConnGateway
}
