package main

import (
	"go.uber.org/fx"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/app"
)

func main() {
	fx.New(app.HTTP).Run()
}
