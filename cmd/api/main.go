package main

import (
	"go.uber.org/fx"

	"github.com/hotelprocure/procure/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
