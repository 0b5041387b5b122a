package app

import (
	"github.com/vk/distgridgo/internal/registry"
	"github.com/vk/distgridgo/modules/archive"
	"github.com/vk/distgridgo/modules/nfpm"
)

// coreModules lists the packaging capability modules compiled into the
// default binary. Tests inject their own set through NewApp.
var coreModules = []registry.Module{
	nfpm.Module{},
	archive.Module{},
}
