package main

import (
	"github.com/labstack/gommon/color"
	"github.com/rolevate/roomgo/internal/app/reconcile"
)

func main() {
	printBanner()
	reconcile.Execute()
}

var version string

func printBanner() {
	banner := `
 ____   ___   ___  __  __
|  _ \ / _ \ / _ \|  \/  |
| |_) | | | | | | | |\/| |
|  _ <| |_| | |_| | |  | |
|_| \_\\___/ \___/|_|  |_|
 ____  _____ ____ ___  _   _  ____ ___ _     _____
|  _ \| ____/ ___/ _ \| \ | |/ ___|_ _| |   | ____|
| |_) |  _|| |  | | | |  \| | |    | || |   |  _|
|  _ <| |__| |__| |_| | |\  | |___ | || |___| |___
|_| \_\_____\____\___/|_| \_|\____|___|_____|_____| v: %s

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("github.com/rolevate/roomgo"))
}
