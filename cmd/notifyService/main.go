package main

import (
	"github.com/labstack/gommon/color"
	"github.com/rolevate/roomgo/internal/app/notify"
)

func main() {
	printBanner()
	notify.Execute()
}

var version string

func printBanner() {
	banner := `
 ____   ___   ___  __  __
|  _ \ / _ \ / _ \|  \/  |
| |_) | | | | | | | |\/| |
|  _ <| |_| | |_| | |  | |
|_| \_\\___/ \___/|_|  |_|
 _   _  ___ _____ ___ _______   __
| \ | |/ _ \_   _|_ _|  ___\ \ / /
|  \| | | | || |  | || |_   \ V /
| |\  | |_| || |  | ||  _|   | |
|_| \_|\___/ |_| |___|_|     |_|   v: %s

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("github.com/rolevate/roomgo"))
}
